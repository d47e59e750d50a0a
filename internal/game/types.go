// internal/game/types.go
//
// Type definitions for a jigsaw game session.
// Defines:
//   - Phase: the session's top-level state.
//   - Settings: timing and puzzle configuration of a session.
//   - Event: notification emitted after every state change.
//   - Snapshot / PieceView: read-only state handed to the presentation layer.

package game

import (
	"errors"
	"time"

	"github.com/robalobadob/jigsaw/internal/puzzle"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhasePreview   Phase = "preview"   // solved image shown, no pieces yet
	PhasePlaying   Phase = "playing"   // pieces on screen, clock may be running
	PhaseCompleted Phase = "completed" // every board piece solved in time
	PhaseFailed    Phase = "failed"    // clock reached zero
)

// Finished reports whether the phase is terminal.
func (p Phase) Finished() bool { return p == PhaseCompleted || p == PhaseFailed }

// Errors returned by session operations. None of them changes session state.
var (
	ErrWrongPhase   = errors.New("game: operation not allowed in this phase")
	ErrUnknownPiece = errors.New("game: unknown piece")
	ErrNotDragging  = errors.New("game: piece is not being dragged")
	ErrClosed       = errors.New("game: session closed")
)

// Default timings.
const (
	DefaultPreviewDelay = time.Second
	DefaultScatterDelay = 500 * time.Millisecond
	DefaultTick         = time.Second
	DefaultErrorFlash   = time.Second
	DefaultInstantSnap  = 50 * time.Millisecond
)

// Settings configures a session.
type Settings struct {
	Puzzle  puzzle.Options
	Timeout int // countdown length in ticks (seconds)

	PreviewDelay time.Duration // Preview → Playing
	ScatterDelay time.Duration // Playing entered → pieces scattered
	Tick         time.Duration // countdown step
	ErrorFlash   time.Duration // how long a conflicting drop stays flagged
	InstantSnap  time.Duration // how long a dropped piece skips the ease transition
	IdleTimeout  time.Duration // 0 disables the idle watch
}

// WithDefaults fills zero durations and puzzle options.
func (s Settings) WithDefaults() Settings {
	s.Puzzle = s.Puzzle.WithDefaults()
	if s.PreviewDelay == 0 {
		s.PreviewDelay = DefaultPreviewDelay
	}
	if s.ScatterDelay == 0 {
		s.ScatterDelay = DefaultScatterDelay
	}
	if s.Tick == 0 {
		s.Tick = DefaultTick
	}
	if s.ErrorFlash == 0 {
		s.ErrorFlash = DefaultErrorFlash
	}
	if s.InstantSnap == 0 {
		s.InstantSnap = DefaultInstantSnap
	}
	return s
}

// Validate checks settings after defaults are applied.
func (s Settings) Validate() error {
	if s.Timeout <= 0 {
		return &puzzle.ConfigurationError{Field: "timeout", Reason: "must be positive"}
	}
	if s.PreviewDelay < 0 || s.ScatterDelay < 0 || s.Tick <= 0 || s.IdleTimeout < 0 {
		return &puzzle.ConfigurationError{Field: "delays", Reason: "must not be negative"}
	}
	return s.Puzzle.Validate()
}

// EventKind names what changed.
type EventKind string

const (
	EventPhase     EventKind = "phase"
	EventScatter   EventKind = "scatter"
	EventDragStart EventKind = "drag_start"
	EventDragMove  EventKind = "drag_move"
	EventDrop      EventKind = "drop"
	EventTick      EventKind = "tick"
	EventFlags     EventKind = "flags"
	EventResize    EventKind = "resize"
	EventRestart   EventKind = "restart"
	EventIdle      EventKind = "idle"
	EventClosed    EventKind = "closed"
)

// Event is emitted after a state change, once the session lock is released.
type Event struct {
	GameID    string         `json:"gameId"`
	Version   uint64         `json:"version"`
	Kind      EventKind      `json:"kind"`
	Phase     Phase          `json:"phase"`
	Remaining int            `json:"remainingSeconds"`
	PieceID   int            `json:"pieceId"` // -1 when not about a piece
	Position  puzzle.Point   `json:"position"`
	Outcome   puzzle.Outcome `json:"outcome,omitempty"`
	Clamped   bool           `json:"clamped,omitempty"` // drag input was outside the viewport
	At        time.Time      `json:"at"`
}

// PieceView is a piece plus its presentation-only flags.
type PieceView struct {
	puzzle.Piece
	Dragging    bool `json:"dragging"`
	Error       bool `json:"error"`
	InstantSnap bool `json:"instantSnap"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID               string       `json:"gameId"`
	Version          uint64       `json:"version"`
	Phase            Phase        `json:"phase"`
	RemainingSeconds int          `json:"remainingSeconds"`
	Timeout          int          `json:"timeout"`
	HasMoved         bool         `json:"hasMoved"`
	Idle             bool         `json:"idle"` // no input since the idle timeout elapsed
	Cols             int          `json:"cols"`
	Board            puzzle.Size  `json:"board"`
	Viewport         puzzle.Size  `json:"viewport"`
	Offset           puzzle.Point `json:"offset"` // board origin in viewport coordinates
	Pieces           []PieceView  `json:"pieces"`
}
