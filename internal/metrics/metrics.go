package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robalobadob/jigsaw/internal/game"
)

var (
	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jigsaw_sessions_created_total",
			Help: "Sessions created, by mode",
		},
		[]string{"mode"},
	)
	SessionsLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jigsaw_sessions_live",
			Help: "Sessions currently held in memory",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jigsaw_games_finished_total",
			Help: "Playthroughs that reached a terminal phase",
		},
		[]string{"phase"},
	)
	Drops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jigsaw_drops_total",
			Help: "Piece drops, by placement outcome",
		},
		[]string{"outcome"},
	)
	DragClamped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jigsaw_drag_clamped_total",
			Help: "Drag moves whose pointer was outside the viewport",
		},
	)
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(SessionsCreated, SessionsLive, GamesFinished, Drops, DragClamped, RLRequests, RLBlocked)
}

// Observe updates counters from a session event. Subscribe it to every session.
func Observe(ev game.Event) {
	switch ev.Kind {
	case game.EventDrop:
		Drops.WithLabelValues(string(ev.Outcome)).Inc()
	case game.EventDragMove:
		if ev.Clamped {
			DragClamped.Inc()
		}
	case game.EventPhase:
		if ev.Phase.Finished() {
			GamesFinished.WithLabelValues(string(ev.Phase)).Inc()
		}
	}
}
