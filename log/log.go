package log

import (
	stdlog "log"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Trace   *stdlog.Logger
	Info    *stdlog.Logger
	Warning *stdlog.Logger
	Error   *stdlog.Logger

	mu      sync.Mutex
	logger  *zap.Logger
	current atomic.Value
)

// Config selects the level and optional rotated log file.
type Config struct {
	Trace bool
	File  string
}

func init() {
	SetLogger(zap.NewNop())

	stable := zap.New(&swapCore{})
	Trace = mustStdLog(stable, zapcore.DebugLevel)
	Info = mustStdLog(stable, zapcore.InfoLevel)
	Warning = mustStdLog(stable, zapcore.WarnLevel)
	Error = mustStdLog(stable, zapcore.ErrorLevel)
}

// InitLog configures the package loggers from the environment.
// INKCALC_TRACE=1 enables trace output.
func InitLog() {
	Init(Config{Trace: os.Getenv("INKCALC_TRACE") == "1"})
}

// Init builds a console core and, when cfg.File is set, a JSON core
// writing to a lumberjack-rotated file.
func Init(cfg Config) {
	level := zap.InfoLevel
	if cfg.Trace {
		level = zap.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "timestamp"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
	}

	SetLogger(zap.New(zapcore.NewTee(cores...)))
}

// SetLogger replaces the backing zap logger. Tests use it with an observer
// core. The package loggers stay the same values, so it is safe to call
// while other goroutines are logging.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()

	logger = l
	current.Store(coreHolder{l.Core()})
}

type coreHolder struct{ zapcore.Core }

// swapCore forwards to whichever core SetLogger installed last.
type swapCore struct {
	fields []zapcore.Field
}

func (c *swapCore) core() zapcore.Core {
	return current.Load().(coreHolder).Core
}

func (c *swapCore) Enabled(l zapcore.Level) bool {
	return c.core().Enabled(l)
}

func (c *swapCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	return &swapCore{fields: append(merged, fields...)}
}

func (c *swapCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *swapCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	core := c.core()
	if len(c.fields) > 0 {
		core = core.With(c.fields)
	}
	return core.Write(e, fields)
}

func (c *swapCore) Sync() error {
	return c.core().Sync()
}

// Logger returns the backing zap logger for structured fields.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}

func mustStdLog(l *zap.Logger, level zapcore.Level) *stdlog.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		// only fails for levels zap does not know
		return zap.NewStdLog(l)
	}
	return std
}
