// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live game sessions for the lifetime of the process.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing game IDs on Get() and Delete().

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/jigsaw/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete removes a session and returns it so the caller can close it.
	Delete(ctx context.Context, id string) (*game.Session, error)

	// Idle removes and returns every session whose last activity is before cutoff.
	Idle(ctx context.Context, cutoff time.Time) ([]*game.Session, error)

	// Len counts live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions map
	sessions map[string]*game.Session // keyed by Session.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, id)
	return s, nil
}

func (m *memory) Idle(ctx context.Context, cutoff time.Time) ([]*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*game.Session
	for id, s := range m.sessions {
		if s.LastActivity().Before(cutoff) {
			out = append(out, s)
			delete(m.sessions, id)
		}
	}
	return out, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
