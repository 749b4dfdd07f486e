package recognize

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledTaskReschedule(t *testing.T) {
	var fired int32
	task := NewScheduledTask(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	for i := 0; i < 5; i++ {
		task.Reschedule()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, task.Pending())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fired))
	assert.False(t, task.Pending())
}

func TestScheduledTaskCancel(t *testing.T) {
	var fired int32
	task := NewScheduledTask(10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	task.Reschedule()
	task.Stop()
	task.Reschedule()
	task.Cancel()
	task.Reschedule()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fired))
	assert.False(t, task.Pending())
}
