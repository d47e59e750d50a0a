package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/metrics"
)

// Sweep closes and forgets sessions idle for longer than maxIdle.
// It returns how many were evicted.
func Sweep(ctx context.Context, st Store, now time.Time, maxIdle time.Duration) int {
	stale, err := st.Idle(ctx, now.Add(-maxIdle))
	if err != nil {
		log.Warn().Err(err).Msg("sweep sessions")
		return 0
	}
	for _, s := range stale {
		s.Close()
	}
	metrics.SessionsLive.Set(float64(st.Len()))
	if len(stale) > 0 {
		log.Info().Int("evicted", len(stale)).Int("live", st.Len()).Msg("swept idle sessions")
	}
	return len(stale)
}

// RunSweeper sweeps every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, st Store, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			Sweep(ctx, st, now, maxIdle)
		}
	}
}
