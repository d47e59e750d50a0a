// internal/game/engine.go
//
// Core engine for a single jigsaw session.
// Responsibilities:
//   - Drive the phase machine: Preview → Playing → Completed | Failed.
//   - Generate and scatter pieces through the puzzle package.
//   - Apply pointer drags (start/move/end) and snap evaluation.
//   - Run the countdown and the short-lived error / instant-snap flags.
//   - Publish an Event after every change, outside the session lock.
//
// Notes:
//   - Every delayed callback is tagged with the epoch it was scheduled in.
//     Restart and Close bump the epoch, so a late callback is a no-op.
//   - Pointer coordinates are viewport coordinates; piece positions are
//     relative to the board origin. Layout.Offset converts between them.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/puzzle"
)

// Session is one playthrough of a puzzle. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	settings Settings
	log      zerolog.Logger
	sched    Scheduler
	rng      puzzle.Rand
	now      func() time.Time
	factory  *puzzle.Factory
	planner  *puzzle.Planner
	eval     *puzzle.Evaluator
	idle     *IdleWatch

	viewport   puzzle.Size
	phase      Phase
	pieces     []*puzzle.Piece
	flags      map[int]*pieceFlags
	remaining  int
	hasMoved   bool
	version    uint64
	lastActive time.Time
	closed     bool

	epoch        uint64
	countdown    Timer
	countdownGen uint64
	timerSeq     uint64
	pending      map[uint64]Timer

	outbox  []Event
	subs    map[int]func(Event)
	nextSub int
	onIdle  func()
}

type pieceFlags struct {
	err         bool
	errSeq      uint64
	instantSnap bool
	snapSeq     uint64
}

// Option customises a Session at construction.
type Option func(*Session)

// WithRand sets the randomness source shared by generation and scatter.
func WithRand(r puzzle.Rand) Option { return func(s *Session) { s.rng = r } }

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(sc Scheduler) Option { return func(s *Session) { s.sched = sc } }

// WithLogger sets the parent logger; the session adds its game id.
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithViewport sets the initial viewport size.
func WithViewport(vp puzzle.Size) Option { return func(s *Session) { s.viewport = vp } }

// WithClock sets the clock used for activity timestamps.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New validates settings and returns a session in the Preview phase.
// The preview timer is already running when New returns.
func New(id string, settings Settings, opts ...Option) (*Session, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:       id,
		settings: settings,
		log:      log.Logger,
		sched:    RealScheduler{},
		now:      time.Now,
		pending:  map[uint64]Timer{},
		subs:     map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var err error
	if s.factory, err = puzzle.NewFactory(settings.Puzzle, s.rng); err != nil {
		return nil, err
	}
	s.planner = puzzle.NewPlanner(settings.Puzzle, s.rng)
	s.eval = puzzle.NewEvaluator(settings.Puzzle.Layout, settings.Puzzle.SnapTolerance)
	s.log = s.log.With().Str("game", id).Logger()
	s.viewport = s.normalise(s.viewport)

	s.mu.Lock()
	s.lastActive = s.now()
	s.remaining = settings.Timeout
	s.enterPreview()
	s.outbox = nil // nobody is subscribed yet
	s.mu.Unlock()

	if settings.IdleTimeout > 0 {
		s.idle = NewIdleWatch(s.sched, settings.IdleTimeout, func() { _ = s.Idle() })
	}
	s.log.Debug().Int("cols", settings.Puzzle.Layout.Cols).Int("timeout", settings.Timeout).Msg("session created")
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Settings returns the effective settings.
func (s *Session) Settings() Settings { return s.settings }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// LastActivity is the time of the most recent input event.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch records player activity that is not a drag, such as a restart
// button. It re-arms the idle watch.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.touch()
	}
}

// Subscribe registers fn for every future Event and returns a cancel func.
// Listeners run on the goroutine that caused the change, in order.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnIdle registers the hook run when the session is reported idle.
func (s *Session) OnIdle(fn func()) {
	s.mu.Lock()
	s.onIdle = fn
	s.mu.Unlock()
}

// ---------- input ----------

// DragStart grabs a piece at the given pointer position.
// The first grab of a playthrough starts the countdown.
func (s *Session) DragStart(id int, pointer puzzle.Point) error {
	return s.do(func() error {
		p, err := s.playingPiece(id)
		if err != nil {
			return err
		}
		s.touch()
		if !s.hasMoved {
			s.hasMoved = true
			s.startCountdown()
		}
		anchor := pointer.Sub(s.offset().Add(p.Current))
		p.Anchor = &anchor
		p.Placed = false
		s.emitPiece(EventDragStart, p, false)
		return nil
	})
}

// DragMove follows the pointer, keeping the piece inside the viewport.
func (s *Session) DragMove(id int, pointer puzzle.Point) error {
	return s.do(func() error {
		p, err := s.playingPiece(id)
		if err != nil {
			return err
		}
		if !p.Dragging() {
			return ErrNotDragging
		}
		s.touch()
		want := pointer.Sub(*p.Anchor).Sub(s.offset())
		screen := s.settings.Puzzle.Layout.Screen(s.viewport)
		p.Current = screen.ClampInto(want, p.Size)
		s.emitPiece(EventDragMove, p, !screen.Contains(want, p.Size))
		return nil
	})
}

// DragEnd releases a piece and evaluates the drop. A conflicting drop
// leaves the piece where it was released and flags it for ErrorFlash.
func (s *Session) DragEnd(id int) (puzzle.Verdict, error) {
	var v puzzle.Verdict
	err := s.do(func() error {
		p, err := s.playingPiece(id)
		if err != nil {
			return err
		}
		if !p.Dragging() {
			return ErrNotDragging
		}
		s.touch()
		p.Anchor = nil
		v = s.eval.Evaluate(p, s.pieces)
		v.Apply(p)

		fl := s.flag(p.ID)
		s.timerSeq++
		seq := s.timerSeq
		fl.instantSnap, fl.snapSeq = true, seq
		s.after(s.settings.InstantSnap, func() {
			if f := s.flags[id]; f != nil && f.snapSeq == seq {
				f.instantSnap = false
				s.emit(Event{Kind: EventFlags, PieceID: id})
			}
		})
		if v.Outcome == puzzle.OutcomeConflict {
			fl.err, fl.errSeq = true, seq
			s.after(s.settings.ErrorFlash, func() {
				if f := s.flags[id]; f != nil && f.errSeq == seq {
					f.err = false
					s.emit(Event{Kind: EventFlags, PieceID: id})
				}
			})
		}

		ev := s.pieceEvent(EventDrop, p, false)
		ev.Outcome = v.Outcome
		s.emit(ev)
		s.log.Debug().Int("piece", id).Str("outcome", string(v.Outcome)).
			Float64("dx", v.Distance.X).Float64("dy", v.Distance.Y).Msg("drop")
		s.checkWin()
		return v.Err()
	})
	return v, err
}

// Restart abandons the current playthrough and returns to Preview.
// Allowed in every phase. Restart is not player activity: an idle hook that
// restarts the game leaves the session idle. Callers acting for the player
// call Touch first.
func (s *Session) Restart() error {
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		s.cancelTimers()
		s.remaining = s.settings.Timeout
		s.hasMoved = false
		s.emit(Event{Kind: EventRestart, PieceID: -1})
		s.enterPreview()
		s.log.Info().Msg("restarted")
		return nil
	})
}

// Idle reports that the player went away. The hook registered with OnIdle
// runs after the event is published.
func (s *Session) Idle() error {
	var hook func()
	err := s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		hook = s.onIdle
		s.emit(Event{Kind: EventIdle, PieceID: -1})
		return nil
	})
	if err == nil && hook != nil {
		hook()
	}
	return err
}

// Resize updates the viewport. Pieces keep their board-relative positions.
func (s *Session) Resize(vp puzzle.Size) error {
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		s.viewport = s.normalise(vp)
		s.emit(Event{Kind: EventResize, PieceID: -1})
		return nil
	})
}

// Close stops every timer. All later operations fail with ErrClosed.
func (s *Session) Close() {
	_ = s.do(func() error {
		if s.closed {
			return nil
		}
		s.cancelTimers()
		s.closed = true
		s.emit(Event{Kind: EventClosed, PieceID: -1})
		return nil
	})
	if s.idle != nil {
		s.idle.Stop()
	}
	s.log.Debug().Msg("session closed")
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.settings.Puzzle.Layout
	snap := Snapshot{
		ID:               s.id,
		Version:          s.version,
		Phase:            s.phase,
		RemainingSeconds: s.remaining,
		Timeout:          s.settings.Timeout,
		HasMoved:         s.hasMoved,
		Idle:             s.idle != nil && s.idle.Idle(),
		Cols:             l.Cols,
		Board:            l.Board,
		Viewport:         s.viewport,
		Offset:           l.Offset(s.viewport),
		Pieces:           make([]PieceView, 0, len(s.pieces)),
	}
	for _, p := range s.pieces {
		v := PieceView{Piece: *p, Dragging: p.Dragging()}
		v.Anchor = nil
		if f := s.flags[p.ID]; f != nil {
			v.Error, v.InstantSnap = f.err, f.instantSnap
		}
		snap.Pieces = append(snap.Pieces, v)
	}
	return snap
}

// ---------- transitions (caller holds s.mu) ----------

func (s *Session) enterPreview() {
	s.pieces = nil
	s.flags = map[int]*pieceFlags{}
	s.setPhase(PhasePreview)
	s.after(s.settings.PreviewDelay, s.startPlaying)
}

func (s *Session) startPlaying() {
	s.pieces = s.factory.Generate(s.viewport)
	s.flags = map[int]*pieceFlags{}
	s.setPhase(PhasePlaying)
	s.after(s.settings.ScatterDelay, s.scatter)
}

func (s *Session) scatter() {
	if s.phase != PhasePlaying {
		return
	}
	s.planner.Scatter(s.pieces, s.viewport)
	s.emit(Event{Kind: EventScatter, PieceID: -1})
	s.checkWin()
}

// checkWin completes the game once every board piece sits placed on its own
// target. Decoys are ignored.
func (s *Session) checkWin() {
	if s.phase != PhasePlaying {
		return
	}
	board := 0
	for _, p := range s.pieces {
		if p.IsDecoy {
			continue
		}
		if !p.Solved() {
			return
		}
		board++
	}
	if board == 0 {
		return
	}
	s.finish(PhaseCompleted)
}

func (s *Session) finish(ph Phase) {
	s.stopCountdown()
	for _, p := range s.pieces {
		p.Anchor = nil
	}
	s.setPhase(ph)
	s.log.Info().Str("phase", string(ph)).Int("remaining", s.remaining).Msg("game over")
}

func (s *Session) setPhase(ph Phase) {
	s.phase = ph
	s.emit(Event{Kind: EventPhase, PieceID: -1})
}

// ---------- countdown ----------

func (s *Session) startCountdown() {
	s.stopCountdown()
	s.countdownGen++
	s.countdown = s.sched.AfterFunc(s.settings.Tick, s.tickFunc(s.epoch, s.countdownGen))
}

func (s *Session) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	s.countdownGen++
}

func (s *Session) tickFunc(epoch, gen uint64) func() {
	return func() {
		s.mu.Lock()
		if s.closed || s.epoch != epoch || s.countdownGen != gen || s.phase != PhasePlaying {
			s.mu.Unlock()
			return
		}
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.countdown = nil
			s.emit(Event{Kind: EventTick, PieceID: -1})
			s.finish(PhaseFailed)
		} else {
			s.emit(Event{Kind: EventTick, PieceID: -1})
			s.countdown = s.sched.AfterFunc(s.settings.Tick, s.tickFunc(epoch, gen))
		}
		evs := s.drain()
		s.mu.Unlock()
		s.dispatch(evs)
	}
}

// ---------- timers ----------

// after schedules fn under the session lock, bound to the current epoch.
func (s *Session) after(d time.Duration, fn func()) {
	s.timerSeq++
	key, epoch := s.timerSeq, s.epoch
	s.pending[key] = s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.pending, key)
		if s.closed || s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		fn()
		evs := s.drain()
		s.mu.Unlock()
		s.dispatch(evs)
	})
}

func (s *Session) cancelTimers() {
	s.epoch++
	s.stopCountdown()
	for k, t := range s.pending {
		t.Stop()
		delete(s.pending, k)
	}
}

// ---------- helpers ----------

// do runs fn under the lock and publishes whatever it emitted afterwards.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	err := fn()
	evs := s.drain()
	s.mu.Unlock()
	s.dispatch(evs)
	return err
}

func (s *Session) playingPiece(id int) (*puzzle.Piece, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	if id < 0 || id >= len(s.pieces) || s.pieces[id].ID != id {
		return nil, ErrUnknownPiece
	}
	return s.pieces[id], nil
}

func (s *Session) flag(id int) *pieceFlags {
	f := s.flags[id]
	if f == nil {
		f = &pieceFlags{}
		s.flags[id] = f
	}
	return f
}

func (s *Session) touch() {
	s.lastActive = s.now()
	if s.idle != nil {
		s.idle.Touch()
	}
}

func (s *Session) offset() puzzle.Point {
	return s.settings.Puzzle.Layout.Offset(s.viewport)
}

// normalise treats a missing or undersized viewport as the board itself.
func (s *Session) normalise(vp puzzle.Size) puzzle.Size {
	b := s.settings.Puzzle.Layout.Board
	vp.Width = max(vp.Width, b.Width)
	vp.Height = max(vp.Height, b.Height)
	return vp
}

func (s *Session) pieceEvent(kind EventKind, p *puzzle.Piece, clamped bool) Event {
	return Event{Kind: kind, PieceID: p.ID, Position: p.Current, Clamped: clamped}
}

func (s *Session) emitPiece(kind EventKind, p *puzzle.Piece, clamped bool) {
	s.emit(s.pieceEvent(kind, p, clamped))
}

func (s *Session) emit(ev Event) {
	s.version++
	ev.GameID = s.id
	ev.Version = s.version
	ev.Phase = s.phase
	ev.Remaining = s.remaining
	ev.At = s.now()
	s.outbox = append(s.outbox, ev)
}

// drain returns queued events with the listeners to call.
func (s *Session) drain() []delivery {
	if len(s.outbox) == 0 {
		return nil
	}
	ls := make([]func(Event), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			ls = append(ls, fn)
		}
	}
	out := make([]delivery, 0, len(s.outbox))
	for _, ev := range s.outbox {
		out = append(out, delivery{ev: ev, to: ls})
	}
	s.outbox = nil
	return out
}

type delivery struct {
	ev Event
	to []func(Event)
}

func (s *Session) dispatch(ds []delivery) {
	for _, d := range ds {
		for _, fn := range d.to {
			fn(d.ev)
		}
	}
}
