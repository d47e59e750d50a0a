// internal/httpserver/routes_game.go
//
// HTTP routes for a jigsaw session.
//   - POST /game/new              → create a session (random, seeded or daily)
//   - GET  /game/{id}             → current snapshot
//   - POST /game/{id}/drag/start  → pointer down on a piece
//   - POST /game/{id}/drag/move   → pointer move
//   - POST /game/{id}/drag/end    → pointer up; returns the placement verdict
//   - POST /game/{id}/restart     → back to preview
//   - POST /game/{id}/idle        → idle signal from the UI
//   - POST /game/{id}/viewport    → viewport resized
//   - GET  /game/{id}/events      → journaled events (when the journal is on)
//   - DELETE /game/{id}           → close and forget the session
//
// Daily games seed their layout from the UTC date and DAILY_SALT, so every
// player gets the same puzzle that day.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/daily"
	"github.com/robalobadob/jigsaw/internal/game"
	"github.com/robalobadob/jigsaw/internal/metrics"
	"github.com/robalobadob/jigsaw/internal/puzzle"
)

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Daily    bool         `json:"daily"`    // same layout for everyone today
	Seed     *int64       `json:"seed"`     // optional fixed seed (testing, replays)
	Viewport *puzzle.Size `json:"viewport"` // client viewport; defaults to the board
}
type newGameRes struct {
	GameID string        `json:"gameId"`
	Token  string        `json:"token"`
	Date   string        `json:"date,omitempty"`
	Seed   int64         `json:"seed"`
	State  game.Snapshot `json:"state"`
}

// handleNewGame creates a session, registers its observers and stores it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	now := s.now()
	mode, seed, date := "random", now.UnixNano(), ""
	switch {
	case req.Daily:
		mode, seed, date = "daily", daily.Seed(now, s.salt), daily.DateKey(now)
	case req.Seed != nil:
		mode, seed = "seeded", *req.Seed
	}
	var vp puzzle.Size
	if req.Viewport != nil {
		vp = *req.Viewport
	}

	id := uuid.NewString()
	sess, err := game.New(id, s.settings,
		game.WithRand(rand.New(rand.NewSource(seed))),
		game.WithScheduler(s.sched),
		game.WithViewport(vp),
		game.WithLogger(log.Logger),
		game.WithClock(s.now),
	)
	if err != nil {
		log.Error().Err(err).Msg("create session")
		writeError(w, err)
		return
	}
	// kiosk behaviour: an idle player gets a fresh puzzle
	sess.OnIdle(func() { _ = sess.Restart() })
	sess.Subscribe(metrics.Observe)
	if s.journal != nil {
		sess.Subscribe(s.journal.Observe)
	}

	token, _, err := s.tokens.Sign(id)
	if err != nil {
		sess.Close()
		log.Error().Err(err).Msg("sign token")
		http.Error(w, `{"error":"token_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	metrics.SessionsCreated.WithLabelValues(mode).Inc()
	metrics.SessionsLive.Set(float64(s.store.Len()))
	log.Info().Str("gameId", id).Str("mode", mode).Int64("seed", seed).Msg("game created")

	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID: id,
		Token:  token,
		Date:   date,
		Seed:   seed,
		State:  sess.Snapshot(),
	})
}

func session(r *http.Request) *game.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*game.Session)
	return sess
}

func writeState(w http.ResponseWriter, sess *game.Session) {
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeState(w, session(r))
}

// pointerReq is the payload of the drag endpoints; x/y are viewport pixels.
type pointerReq struct {
	PieceID *int    `json:"pieceId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func decodePointer(w http.ResponseWriter, r *http.Request) (pointerReq, bool) {
	var req pointerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return req, false
	}
	if req.PieceID == nil {
		http.Error(w, `{"error":"pieceId_required"}`, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePointer(w, r)
	if !ok {
		return
	}
	sess := session(r)
	if err := sess.DragStart(*req.PieceID, puzzle.Point{X: req.X, Y: req.Y}); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePointer(w, r)
	if !ok {
		return
	}
	sess := session(r)
	if err := sess.DragMove(*req.PieceID, puzzle.Point{X: req.X, Y: req.Y}); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

// dragEndRes carries the verdict next to the state. A conflict is a normal
// outcome here, not an HTTP error.
type dragEndRes struct {
	Verdict puzzle.Verdict `json:"verdict"`
	State   game.Snapshot  `json:"state"`
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePointer(w, r)
	if !ok {
		return
	}
	sess := session(r)
	v, err := sess.DragEnd(*req.PieceID)
	if err != nil && !errors.Is(err, puzzle.ErrPlacementConflict) {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(dragEndRes{Verdict: v, State: sess.Snapshot()})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	sess.Touch() // a player-initiated restart counts as activity
	if err := sess.Restart(); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

func (s *Server) handleIdle(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	if err := sess.Idle(); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp puzzle.Size
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess := session(r)
	if err := sess.Resize(vp); err != nil {
		writeError(w, err)
		return
	}
	writeState(w, sess)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, `{"error":"journal_disabled"}`, http.StatusNotFound)
		return
	}
	entries, err := s.journal.Events(r.Context(), session(r).ID())
	if err != nil {
		log.Error().Err(err).Msg("read journal")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(entries)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Delete(r.Context(), session(r).ID())
	if err != nil {
		writeError(w, err)
		return
	}
	sess.Close()
	metrics.SessionsLive.Set(float64(s.store.Len()))
	_, _ = w.Write([]byte(`{"ok":true}`))
}
