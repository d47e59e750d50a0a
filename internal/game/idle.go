package game

import (
	"sync"
	"time"
)

// IdleWatch calls onIdle once no Touch has happened for timeout.
// It fires at most once per quiet period; the next Touch re-arms it.
type IdleWatch struct {
	mu      sync.Mutex
	sched   Scheduler
	timeout time.Duration
	onIdle  func()
	timer   Timer
	gen     uint64
	idle    bool
	stopped bool
}

// NewIdleWatch returns an armed watch.
func NewIdleWatch(sched Scheduler, timeout time.Duration, onIdle func()) *IdleWatch {
	w := &IdleWatch{sched: sched, timeout: timeout, onIdle: onIdle}
	w.Touch()
	return w
}

// Touch records activity and restarts the quiet period.
func (w *IdleWatch) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.gen++
	w.idle = false
	gen := w.gen
	w.timer = w.sched.AfterFunc(w.timeout, func() { w.fire(gen) })
}

// Idle reports whether the watch has fired since the last Touch.
func (w *IdleWatch) Idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.idle
}

// Stop disarms the watch for good.
func (w *IdleWatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *IdleWatch) fire(gen uint64) {
	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.idle = true
	w.timer = nil
	fn := w.onIdle
	w.mu.Unlock()
	// onIdle may take other locks, so it runs unlocked
	if fn != nil {
		fn()
	}
}
