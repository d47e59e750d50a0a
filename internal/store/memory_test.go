package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/puzzle"
)

type stopped struct{}

func (stopped) Stop() bool { return true }

// frozen never fires, so sessions stay in Preview.
type frozen struct{}

func (frozen) AfterFunc(time.Duration, func()) game.Timer { return stopped{} }

func newSession(t *testing.T, id string, at time.Time) *game.Session {
	t.Helper()
	s, err := game.New(id, game.Settings{
		Puzzle:  puzzle.Options{Layout: puzzle.Layout{Cols: 2, Board: puzzle.Size{Width: 100, Height: 100}}},
		Timeout: 5,
	}, game.WithScheduler(frozen{}), game.WithLogger(zerolog.Nop()), game.WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession(t, "a", time.Now())

	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Save: %v", err)
	}
	if err := st.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get(ctx, "a")
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if st.Len() != 1 {
		t.Fatalf("Len = %d", st.Len())
	}
	if _, err := st.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore()
	old := newSession(t, "old", now.Add(-time.Hour))
	fresh := newSession(t, "fresh", now.Add(-time.Minute))
	_ = st.Save(ctx, old)
	_ = st.Save(ctx, fresh)

	if n := Sweep(ctx, st, now, 30*time.Minute); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatal("old session still stored")
	}
	if _, err := st.Get(ctx, "fresh"); err != nil {
		t.Fatal("fresh session evicted")
	}
	if err := old.Restart(); !errors.Is(err, game.ErrClosed) {
		t.Fatalf("evicted session not closed: %v", err)
	}
}
