// Package session tracks who is logged in. The persisted current-user pointer
// is the source of truth; State mirrors it in memory for the running process.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sharejoy/internal/common"
)

// PointerStore persists the current-user pointer. *credstore.Store satisfies it.
type PointerStore interface {
	SetCurrentUser(ctx context.Context, username string) error
	GetCurrentUser(ctx context.Context) (string, bool, error)
	RemoveCurrentUser(ctx context.Context) error
}

// State is the in-process view of the session.
type State struct {
	mu       sync.RWMutex
	username string
	loggedIn bool
}

// CurrentUsername reports the logged-in username, if any.
func (s *State) CurrentUsername() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.loggedIn
}

func (s *State) set(username string) {
	s.mu.Lock()
	s.username, s.loggedIn = username, true
	s.mu.Unlock()
}

func (s *State) clear() {
	s.mu.Lock()
	s.username, s.loggedIn = "", false
	s.mu.Unlock()
}

// Manager keeps State and the persisted pointer in step.
type Manager struct {
	store PointerStore
	state State
}

func NewManager(store PointerStore) *Manager {
	return &Manager{store: store}
}

// GetInitialUser returns the persisted current username so a shell can pick
// its first screen. "Nobody logged in" is ("", false, nil). It needs nothing
// but the pointer store and may be called first.
func (m *Manager) GetInitialUser(ctx context.Context) (string, bool, error) {
	username, found, err := m.store.GetCurrentUser(ctx)
	if err != nil {
		return "", false, err
	}
	if !found || username == "" {
		m.state.clear()
		return "", false, nil
	}
	m.state.set(username)
	return username, true, nil
}

// Begin persists username as the current user.
func (m *Manager) Begin(ctx context.Context, username string) error {
	if err := m.store.SetCurrentUser(ctx, username); err != nil {
		return err
	}
	m.state.set(username)
	return nil
}

// End clears the session. Ending an absent session is not an error.
func (m *Manager) End(ctx context.Context) error {
	if err := m.store.RemoveCurrentUser(ctx); err != nil {
		return err
	}
	m.state.clear()
	return nil
}

// Current returns the logged-in username or common.ErrNotLoggedIn.
func (m *Manager) Current() (string, error) {
	username, ok := m.state.CurrentUsername()
	if !ok {
		return "", common.ErrNotLoggedIn
	}
	return username, nil
}

// Refresh re-reads the pointer, e.g. after a delete that may have cleared it.
func (m *Manager) Refresh(ctx context.Context) error {
	_, _, err := m.GetInitialUser(ctx)
	return err
}
