package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/puzzle"
)

func TestObserve(t *testing.T) {
	conflicts := value(Drops.WithLabelValues("conflict"))
	clamped := value(DragClamped)
	failed := value(GamesFinished.WithLabelValues("failed"))

	Observe(game.Event{Kind: game.EventDrop, Outcome: puzzle.OutcomeConflict})
	Observe(game.Event{Kind: game.EventDragMove, Clamped: true})
	Observe(game.Event{Kind: game.EventDragMove})
	Observe(game.Event{Kind: game.EventPhase, Phase: game.PhaseFailed})
	Observe(game.Event{Kind: game.EventPhase, Phase: game.PhasePlaying})

	if got := value(Drops.WithLabelValues("conflict")); got != conflicts+1 {
		t.Fatalf("conflict drops = %v", got)
	}
	if got := value(DragClamped); got != clamped+1 {
		t.Fatalf("clamped = %v", got)
	}
	if got := value(GamesFinished.WithLabelValues("failed")); got != failed+1 {
		t.Fatalf("failed games = %v", got)
	}
}

func value(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		panic(err)
	}
	return m.GetCounter().GetValue()
}
