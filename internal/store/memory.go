// apps/go-server/internal/store/memory.go
//
// In-memory registry of live rounds.
// Each entry pairs a game.Controller with the player that owns it.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; finished rounds are persisted
//     elsewhere (profile, daily).
//   - Sweep closes and drops controllers nobody has touched for a while.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordsearch/apps/go-server/internal/game"
)

var ErrNotFound = errors.New("game not found")

// Entry is one live round and its owner.
type Entry struct {
	Owner string
	Game  *game.Controller
}

// Store defines the registry interface used by the HTTP layer.
type Store interface {
	// Save adds or replaces an entry keyed by its controller ID.
	Save(ctx context.Context, e Entry) error

	// Get retrieves an entry by game ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Entry, error)

	// Delete closes and removes a game. Missing IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes games idle for longer than maxIdle and
	// returns their IDs.
	Sweep(now time.Time, maxIdle time.Duration) []string

	// Reassign transfers every game owned by from to to, returning the count.
	Reassign(from, to string) int

	Len() int
}

type memory struct {
	mu    sync.RWMutex
	games map[string]Entry
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]Entry)}
}

func (m *memory) Save(ctx context.Context, e Entry) error {
	if e.Game == nil {
		return errors.New("nil game")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.games[e.Game.ID]; ok && old.Game != e.Game {
		old.Game.Close()
	}
	m.games[e.Game.ID] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e, nil
	}
	return Entry{}, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if ok {
		e.Game.Close()
	}
	return nil
}

func (m *memory) Sweep(now time.Time, maxIdle time.Duration) []string {
	m.mu.Lock()
	var stale []Entry
	for id, e := range m.games {
		if e.Game.Idle(now) > maxIdle {
			stale = append(stale, e)
			delete(m.games, id)
		}
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, e := range stale {
		e.Game.Close()
		ids = append(ids, e.Game.ID)
	}
	return ids
}

func (m *memory) Reassign(from, to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.games {
		if e.Owner == from {
			e.Owner = to
			m.games[id] = e
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
