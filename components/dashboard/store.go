package dashboard

import (
	"context"
	"sync"
)

// Store is the in-memory DashboardStore. It holds the current snapshot and
// replaces it atomically, one intent at a time.
type Store struct {
	mu    sync.RWMutex
	state DashboardState
}

var _ WidgetStore = (*Store)(nil)

// NewStore creates a store seeded with initial.
func NewStore(initial DashboardState) *Store {
	return &Store{state: initial}
}

// NewDefaultStore creates a store seeded with DefaultState.
func NewDefaultStore() *Store {
	return NewStore(DefaultState())
}

// Snapshot returns the current state.
func (s *Store) Snapshot(context.Context) DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to the current state and publishes its result. When fn
// fails the current state is kept and returned alongside the error.
func (s *Store) Update(_ context.Context, fn func(DashboardState) (DashboardState, error)) (DashboardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

// Reset replaces the state wholesale (seeding).
func (s *Store) Reset(_ context.Context, state DashboardState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// AddWidget inserts or overwrites a widget in the current state.
func (s *Store) AddWidget(category CategoryKey, name string, payload WidgetEntry) (DashboardState, error) {
	return s.Update(context.Background(), func(state DashboardState) (DashboardState, error) {
		return state.AddWidget(category, name, payload)
	})
}

// RemoveWidget deletes a widget from the current state.
func (s *Store) RemoveWidget(category CategoryKey, name string) (DashboardState, error) {
	return s.Update(context.Background(), func(state DashboardState) (DashboardState, error) {
		return state.RemoveWidget(category, name)
	})
}

// FilteredWidgets queries the current state.
func (s *Store) FilteredWidgets(category CategoryKey, term string) ([]WidgetItem, error) {
	return s.Snapshot(context.Background()).FilteredWidgets(category, term)
}
