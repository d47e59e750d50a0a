// internal/journal/journal.go
//
// Append-only audit trail of session events in SQLite.
// Responsibilities:
//   - Receive game.Event values from session subscribers without blocking play.
//   - Persist them to the game_events table on a single writer goroutine.
//   - Read a game's trail back for diagnostics (GET /game/{id}/events).
//
// Notes:
//   - Nothing is ever restored from the journal; sessions live in memory only.
//   - When the buffer is full events are dropped and logged, play continues.
package journal

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/game"
)

// Entry is one journaled event.
type Entry struct {
	Version   uint64  `json:"version"`
	Kind      string  `json:"kind"`
	Phase     string  `json:"phase"`
	PieceID   *int    `json:"pieceId,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Outcome   string  `json:"outcome,omitempty"`
	Remaining int     `json:"remainingSeconds"`
	CreatedAt string  `json:"createdAt"`
}

// Journal writes events asynchronously.
type Journal struct {
	db *sql.DB

	mu     sync.Mutex // guards closed and sends on ch
	closed bool
	ch     chan game.Event
	done   chan struct{}
}

// New starts the writer goroutine. db must already be migrated.
func New(db *sql.DB, buffer int) *Journal {
	j := &Journal{db: db, ch: make(chan game.Event, buffer), done: make(chan struct{})}
	go j.run()
	return j
}

// Observe queues ev for writing. Safe to use as a session subscriber.
func (j *Journal) Observe(ev game.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.ch <- ev:
	default:
		log.Warn().Str("gameId", ev.GameID).Uint64("version", ev.Version).Msg("journal full; event dropped")
	}
}

// Record writes ev synchronously.
func (j *Journal) Record(ctx context.Context, ev game.Event) error {
	var piece any
	if ev.PieceID >= 0 {
		piece = ev.PieceID
	}
	var outcome any
	if ev.Outcome != "" {
		outcome = string(ev.Outcome)
	}
	_, err := j.db.ExecContext(ctx, `
        INSERT INTO game_events
            (game_id, version, kind, phase, piece_id, x, y, outcome, remaining, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.GameID, ev.Version, string(ev.Kind), string(ev.Phase), piece,
		ev.Position.X, ev.Position.Y, outcome, ev.Remaining,
		ev.At.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Events returns a game's journal in version order.
func (j *Journal) Events(ctx context.Context, gameID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT version, kind, phase, piece_id, x, y, outcome, remaining, created_at
        FROM game_events
        WHERE game_id=?
        ORDER BY version ASC`, gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			piece   sql.NullInt64
			outcome sql.NullString
		)
		if err := rows.Scan(&e.Version, &e.Kind, &e.Phase, &piece, &e.X, &e.Y, &outcome, &e.Remaining, &e.CreatedAt); err != nil {
			return nil, err
		}
		if piece.Valid {
			id := int(piece.Int64)
			e.PieceID = &id
		}
		e.Outcome = outcome.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close flushes queued events and stops the writer.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.ch)
	j.mu.Unlock()
	<-j.done
}

func (j *Journal) run() {
	defer close(j.done)
	for ev := range j.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := j.Record(ctx, ev); err != nil {
			log.Warn().Err(err).Str("gameId", ev.GameID).Msg("journal write")
		}
		cancel()
	}
}
