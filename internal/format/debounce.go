package format

import (
	"sync"
	"time"
)

// Debouncer delays fn until no call has been made for the wait period.
// Each new call restarts the timer, so a burst of calls runs fn once.
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	fn    func()
	timer *time.Timer
}

// Debounce returns a Debouncer wrapping fn.
func Debounce(fn func(), wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait, fn: fn}
}

// Call schedules fn, cancelling any call still pending.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fn)
}

// Cancel drops a pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
