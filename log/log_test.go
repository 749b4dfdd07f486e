package log

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdLoggersWriteAtTheirLevel(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	Trace.Printf("trace %d", 1)
	Warning.Println("careful")
	Error.Print("broken")

	entries := observed.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "trace 1", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	}
}

func TestInitWithFile(t *testing.T) {
	Init(Config{Trace: true, File: t.TempDir() + "/inkcalc.log"})
	defer SetLogger(zap.NewNop())

	Info.Println("hello")
	assert.NotNil(t, Logger())
}

func TestSetLoggerKeepsPackageLoggers(t *testing.T) {
	before := Info
	core, observed := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	assert.Same(t, before, Info)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Info.Println("tick")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		SetLogger(zap.New(core))
	}
	wg.Wait()

	assert.Equal(t, 200, observed.FilterMessage("tick").Len())
}
