package game

import (
	"sort"
	"time"
)

// manualScheduler fires timers only when the test advances it.
type manualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance runs every timer due within d, in due order, including timers
// scheduled by the callbacks themselves.
func (m *manualScheduler) Advance(d time.Duration) {
	end := m.now + d
	for {
		due := m.due(end)
		if due == nil {
			break
		}
		m.now = due.at
		due.fired = true
		due.fn()
	}
	m.now = end
}

func (m *manualScheduler) due(end time.Duration) *manualTimer {
	var live []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.at <= end {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	return live[0]
}

// Active counts timers that are neither stopped nor fired.
func (m *manualScheduler) Active() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
