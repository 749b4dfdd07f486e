package recognize

import (
	"sync"
	"time"
)

// ScheduledTask runs fn once after a quiet period. Rescheduling restarts
// the period; Cancel stops it. The zero value is not usable.
type ScheduledTask struct {
	mu     sync.Mutex
	delay  time.Duration
	fn     func()
	timer  *time.Timer
	gen    uint64
	closed bool
}

func NewScheduledTask(delay time.Duration, fn func()) *ScheduledTask {
	return &ScheduledTask{delay: delay, fn: fn}
}

// Reschedule (re)starts the timer. It is a no-op after Cancel.
func (t *ScheduledTask) Reschedule() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
}

// fire drops callbacks from timers that were stopped too late.
func (t *ScheduledTask) fire(gen uint64) {
	t.mu.Lock()
	if t.closed || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

// Pending reports whether the task is waiting to fire.
func (t *ScheduledTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop cancels a pending run but keeps the task usable.
func (t *ScheduledTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Cancel stops the task for good.
func (t *ScheduledTask) Cancel() {
	t.Stop()
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}
