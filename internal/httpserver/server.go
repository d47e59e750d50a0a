// internal/httpserver/server.go
//
// HTTP server wiring for the jigsaw backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics", "/config".
//   - POST /game/new creates a session and returns its play token.
//   - Token-protected game endpoints under /game/{id}: state, drag input,
//     restart, idle, viewport, journal and teardown.
//   - Websocket stream at /ws/{id} (see ws.go).
//
// Notes:
//   - The browser renders pieces and forwards pointer events; the session
//     state machine lives here, one per game id.
//   - Input endpoints are rate limited when Redis is configured.
//   - The websocket route sits outside the timeout group so long-lived
//     connections are not cut after ten seconds.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/jigsaw/internal/config"
	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/journal"
	"github.com/robalobadob/jigsaw/internal/puzzle"
	"github.com/robalobadob/jigsaw/internal/ratelimit"
	"github.com/robalobadob/jigsaw/internal/store"
)

// Options carries the server's collaborators. Journal and Limiter are optional.
type Options struct {
	Game         config.Game
	Tokens       *Tokens
	Journal      *journal.Journal
	Limiter      *ratelimit.Limiter
	DailySalt    string
	ClientOrigin string
	Scheduler    game.Scheduler   // nil: wall clock
	Now          func() time.Time // nil: time.Now
}

// Server bundles router, session store and collaborators.
type Server struct {
	r        *chi.Mux
	store    store.Store
	cfg      config.Game
	settings game.Settings
	tokens   *Tokens
	journal  *journal.Journal
	limiter  *ratelimit.Limiter
	salt     string
	origin   string
	sched    game.Scheduler
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		cfg:      opts.Game,
		settings: opts.Game.Settings(),
		tokens:   opts.Tokens,
		journal:  opts.Journal,
		limiter:  opts.Limiter,
		salt:     opts.DailySalt,
		origin:   opts.ClientOrigin,
		sched:    opts.Scheduler,
		now:      opts.Now,
	}
	if s.tokens == nil {
		s.tokens = NewTokens("", 0)
	}
	if s.sched == nil {
		s.sched = game.RealScheduler{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // single-origin CORS

	// websocket: no handler timeout
	s.r.With(s.requireToken).Get("/ws/{id}", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"jigsaw-go","endpoints":["/health","/config","/metrics","POST /game/new","/game/{id}/*","/ws/{id}"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(s.cfg.Public())
		})

		r.With(s.limiter.Middleware).Post("/game/new", s.handleNewGame)
		r.Route("/game/{id}", func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/", s.handleState)
			r.Delete("/", s.handleDelete)
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(s.limiter.Middleware)
				r.Post("/drag/start", s.handleDragStart)
				r.Post("/drag/move", s.handleDragMove)
				r.Post("/drag/end", s.handleDragEnd)
				r.Post("/restart", s.handleRestart)
				r.Post("/idle", s.handleIdle)
				r.Post("/viewport", s.handleViewport)
			})
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured UI origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ errors -------------------------------------

// errorCode maps session errors to an HTTP status and a stable error string.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return http.StatusConflict, "wrong_phase"
	case errors.Is(err, game.ErrNotDragging):
		return http.StatusConflict, "not_dragging"
	case errors.Is(err, game.ErrUnknownPiece):
		return http.StatusNotFound, "unknown_piece"
	case errors.Is(err, game.ErrClosed):
		return http.StatusGone, "closed"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	var ce *puzzle.ConfigurationError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError, "configuration"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := errorCode(err)
	http.Error(w, `{"error":"`+msg+`"}`, code)
}
