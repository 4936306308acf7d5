// Package credstore is the local credential store: user records keyed by
// username, persisted as one JSON blob, plus the current-user pointer.
//
// Persisted layout in the kv backend:
//
//	users       {"<username>": {"username","salt","hash","role"}, ...}
//	users.rev   opaque revision token, rewritten with every users write
//	currentUser plain username, or absent
//
// Every read-modify-write of the users blob is serialized inside the store
// and, on backends that support it, runs in one transaction. The write itself
// is a compare-and-set against the exact blob that was read, so a writer in
// another process (or another Store on the same backend) that got in between
// makes it fail with common.ErrVersionConflict and nothing is written.
// users.rev is rewritten after each successful swap as a change marker. The
// users blob and currentUser are separate keys; login and registration write
// them one after the other.
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/cryptox"
	"github.com/dmitrijs2005/sharejoy/internal/kv"
	"github.com/dmitrijs2005/sharejoy/internal/logging"
	"github.com/google/uuid"
)

const (
	UsersKey       = "users"
	RevisionKey    = "users.rev"
	CurrentUserKey = "currentUser"
)

type Store struct {
	storage kv.Storage
	hasher  cryptox.Hasher
	logger  logging.Logger

	// mu serializes writers inside this process.
	mu          sync.Mutex
	newRevision func() string
}

func New(storage kv.Storage, hasher cryptox.Hasher, logger logging.Logger) *Store {
	return &Store{
		storage:     storage,
		hasher:      hasher,
		logger:      logger.With("component", "credstore"),
		newRevision: uuid.NewString,
	}
}

// GetUsers returns every record. An absent or unparsable users blob yields
// an empty map; the parse failure is logged, not returned.
func (s *Store) GetUsers(ctx context.Context) (map[string]UserRecord, error) {
	users, _, err := s.load(ctx, s.storage)
	return users, err
}

// SaveUsers replaces the whole mapping unconditionally.
func (s *Store) SaveUsers(ctx context.Context, users map[string]UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return kv.Atomically(ctx, s.storage, func(ctx context.Context, st kv.Storage) error {
		return s.write(ctx, st, users)
	})
}

// AddUser inserts or silently overwrites the record for u.Username.
// Use CreateUser when the username must be new.
func (s *Store) AddUser(ctx context.Context, u UserRecord) error {
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	return s.mutate(ctx, func(users map[string]UserRecord) (bool, error) {
		users[u.Username] = u
		return true, nil
	})
}

// UpdateUser is AddUser under the name generic field updates use.
func (s *Store) UpdateUser(ctx context.Context, u UserRecord) error {
	return s.AddUser(ctx, u)
}

// CreateUser inserts u and fails with common.ErrorAlreadyExists when the
// username is taken. The check and the write form one locked unit.
func (s *Store) CreateUser(ctx context.Context, u UserRecord) error {
	if err := u.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, func(users map[string]UserRecord) (bool, error) {
		if _, ok := users[u.Username]; ok {
			return false, fmt.Errorf("user %q: %w", u.Username, common.ErrorAlreadyExists)
		}
		users[u.Username] = u
		return true, nil
	})
}

// GetUser returns the record for username, or nil when there is none.
func (s *Store) GetUser(ctx context.Context, username string) (*UserRecord, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ChangeUserPassword verifies currentPassword and replaces salt and hash
// together. A wrong current password returns common.ErrorUnauthorized and
// leaves the record untouched.
func (s *Store) ChangeUserPassword(ctx context.Context, username, currentPassword, newPassword string) error {
	err := s.mutate(ctx, func(users map[string]UserRecord) (bool, error) {
		u, ok := users[username]
		if !ok {
			return false, fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
		}

		ok, err := s.hasher.VerifyPassword(currentPassword, u.Salt, u.Hash)
		if err != nil {
			return false, fmt.Errorf("verify current password: %w", err)
		}
		if !ok {
			return false, fmt.Errorf("current password incorrect: %w", common.ErrorUnauthorized)
		}

		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return false, err
		}
		hash, err := s.hasher.HashPassword(newPassword, salt)
		if err != nil {
			return false, err
		}

		u.Salt, u.Hash = salt, hash
		users[username] = u
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "username", username)
	return nil
}

// DeleteUser removes username if present and clears the current-user pointer
// when it names username. Deleting an absent user is not an error.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return kv.Atomically(ctx, s.storage, func(ctx context.Context, st kv.Storage) error {
		users, raw, err := s.load(ctx, st)
		if err != nil {
			return err
		}

		if _, ok := users[username]; ok {
			delete(users, username)
			if err := s.swap(ctx, st, raw, users); err != nil {
				return err
			}
			s.logger.Info(ctx, "user deleted", "username", username)
		}

		current, found, err := st.Get(ctx, CurrentUserKey)
		if err != nil {
			return err
		}
		if found && current == username {
			return st.Delete(ctx, CurrentUserKey)
		}
		return nil
	})
}

// SetCurrentUser points the session at username. The user is not required to
// exist.
func (s *Store) SetCurrentUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Set(ctx, CurrentUserKey, username)
}

// GetCurrentUser returns the current username; found is false when unset.
func (s *Store) GetCurrentUser(ctx context.Context) (string, bool, error) {
	return s.storage.Get(ctx, CurrentUserKey)
}

func (s *Store) RemoveCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Delete(ctx, CurrentUserKey)
}

// mutate runs one read-modify-write cycle of the users blob. fn reports
// whether it changed the map; unchanged maps are not written back.
func (s *Store) mutate(ctx context.Context, fn func(users map[string]UserRecord) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return kv.Atomically(ctx, s.storage, func(ctx context.Context, st kv.Storage) error {
		users, raw, err := s.load(ctx, st)
		if err != nil {
			return err
		}

		changed, err := fn(users)
		if err != nil || !changed {
			return err
		}
		return s.swap(ctx, st, raw, users)
	})
}

// load returns the parsed users together with the raw blob they came from;
// the raw blob is the expected value for a later swap.
func (s *Store) load(ctx context.Context, st kv.Storage) (map[string]UserRecord, string, error) {
	raw, found, err := st.Get(ctx, UsersKey)
	if err != nil {
		return nil, "", err
	}

	users := make(map[string]UserRecord)
	if !found || raw == "" {
		return users, "", nil
	}

	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.logger.Warn(ctx, "users blob unreadable, treating as empty",
			"key", UsersKey, "err", fmt.Errorf("%w: %v", common.ErrCorruptState, err))
		return make(map[string]UserRecord), raw, nil
	}
	if users == nil {
		users = make(map[string]UserRecord)
	}
	return users, raw, nil
}

func encodeUsers(users map[string]UserRecord) (string, error) {
	if users == nil {
		users = make(map[string]UserRecord)
	}
	blob, err := json.Marshal(users)
	if err != nil {
		return "", fmt.Errorf("encode users: %w", err)
	}
	return string(blob), nil
}

// swap replaces the users blob only if it still equals old.
func (s *Store) swap(ctx context.Context, st kv.Storage, old string, users map[string]UserRecord) error {
	blob, err := encodeUsers(users)
	if err != nil {
		return err
	}

	ok, err := st.CompareAndSet(ctx, UsersKey, old, blob)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn(ctx, "users blob changed concurrently", "key", UsersKey)
		return common.ErrVersionConflict
	}
	return st.Set(ctx, RevisionKey, s.newRevision())
}

// write replaces the users blob unconditionally.
func (s *Store) write(ctx context.Context, st kv.Storage, users map[string]UserRecord) error {
	blob, err := encodeUsers(users)
	if err != nil {
		return err
	}
	if err := st.Set(ctx, UsersKey, blob); err != nil {
		return err
	}
	return st.Set(ctx, RevisionKey, s.newRevision())
}
