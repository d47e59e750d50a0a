package game

import "time"

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The session owns every Timer it gets back
// and stops it on restart or close.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
