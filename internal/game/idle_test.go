package game

import (
	"testing"
	"time"
)

func TestIdleWatchFiresAfterQuietPeriod(t *testing.T) {
	sc := &manualScheduler{}
	fired := 0
	w := NewIdleWatch(sc, 10*time.Second, func() { fired++ })

	sc.Advance(9 * time.Second)
	w.Touch()
	sc.Advance(9 * time.Second)
	if fired != 0 || w.Idle() {
		t.Fatalf("fired early: %d", fired)
	}
	sc.Advance(time.Second)
	if fired != 1 || !w.Idle() {
		t.Fatalf("fired = %d, want 1", fired)
	}
	sc.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("fired again without activity: %d", fired)
	}

	w.Touch()
	if w.Idle() {
		t.Fatal("touch should clear idle")
	}
	w.Stop()
	sc.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("stopped watch fired: %d", fired)
	}
	w.Touch()
	if sc.Active() != 0 {
		t.Fatalf("stopped watch re-armed")
	}
}
