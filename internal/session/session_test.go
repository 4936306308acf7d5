package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/credstore"
	"github.com/dmitrijs2005/sharejoy/internal/cryptox"
	"github.com/dmitrijs2005/sharejoy/internal/kv"
	"github.com/dmitrijs2005/sharejoy/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *credstore.Store) {
	t.Helper()
	store := credstore.New(kv.NewMemoryStorage(), cryptox.NewPBKDF2Hasher(), logging.NewDiscard())
	return NewManager(store), store
}

type failingPointer struct{ err error }

func (f failingPointer) SetCurrentUser(context.Context, string) error { return f.err }
func (f failingPointer) GetCurrentUser(context.Context) (string, bool, error) {
	return "", false, f.err
}
func (f failingPointer) RemoveCurrentUser(context.Context) error { return f.err }

func TestGetInitialUser_NoneIsNotAnError(t *testing.T) {
	m, _ := newManager(t)

	username, found, err := m.GetInitialUser(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, username)

	_, err = m.Current()
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestGetInitialUser_ReturnsPersistedPointer(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()
	require.NoError(t, store.SetCurrentUser(ctx, "bob"))

	username, found, err := m.GetInitialUser(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bob", username)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, "bob", current)
}

func TestBeginEnd(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Begin(ctx, "alice"))
	name, err := m.Current()
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	persisted, found, err := store.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", persisted)

	require.NoError(t, m.End(ctx))
	require.NoError(t, m.End(ctx))
	_, err = m.Current()
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)

	_, found, err = store.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRefresh_PicksUpClearedPointer(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Begin(ctx, "dave"))
	require.NoError(t, store.DeleteUser(ctx, "dave"))
	require.NoError(t, m.Refresh(ctx))

	_, err := m.Current()
	assert.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(failingPointer{err: boom})
	ctx := context.Background()

	_, _, err := m.GetInitialUser(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.Begin(ctx, "x"), boom)
	assert.ErrorIs(t, m.End(ctx), boom)

	_, err = m.Current()
	assert.ErrorIs(t, err, common.ErrNotLoggedIn, "failed Begin must not log anyone in")
}
