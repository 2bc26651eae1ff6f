package board

import (
	"slices"
	"sync"
	"time"

	"github.com/deevus/transit-sign/feed"
)

// ViewState is the last committed board.
type ViewState struct {
	EntriesA    []feed.RouteSnapshot
	EntriesB    []feed.RouteSnapshot
	LastUpdated time.Time
	Density     Density
}

// Updated reports whether any cycle has committed yet.
func (v ViewState) Updated() bool {
	return !v.LastUpdated.IsZero()
}

// Store owns the ViewState. Commit is the only mutation; readers get copies.
type Store struct {
	mu      sync.RWMutex
	state   ViewState
	commits uint64
}

// NewStore creates an empty store with spacious density and no update time.
func NewStore() *Store {
	return &Store{state: ViewState{Density: Spacious}}
}

// Commit replaces the whole view with b stamped at. The update time never
// moves backwards: an earlier stamp keeps the current one.
func (s *Store) Commit(b Board, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at.Before(s.state.LastUpdated) {
		at = s.state.LastUpdated
	}
	s.state = ViewState{
		EntriesA:    cloneRoutes(b.EntriesA),
		EntriesB:    cloneRoutes(b.EntriesB),
		LastUpdated: at,
		Density:     b.Density,
	}
	s.commits++
}

// Snapshot returns a deep copy of the current view.
func (s *Store) Snapshot() ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.state
	v.EntriesA = cloneRoutes(v.EntriesA)
	v.EntriesB = cloneRoutes(v.EntriesB)
	return v
}

// cloneRoutes copies routes and their arrival slices. Nil stays nil.
func cloneRoutes(routes []feed.RouteSnapshot) []feed.RouteSnapshot {
	out := slices.Clone(routes)
	for i := range out {
		out[i].Arrivals = slices.Clone(out[i].Arrivals)
	}
	return out
}

// Commits returns how many cycles have been committed.
func (s *Store) Commits() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}
