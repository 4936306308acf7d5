// Package services contains the application services behind the CLI.
// This file defines the authentication service: register, login, logout,
// password change, account deletion and the approver-only user listing.
package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/credstore"
	"github.com/dmitrijs2005/sharejoy/internal/cryptox"
	"github.com/dmitrijs2005/sharejoy/internal/logging"
	"github.com/dmitrijs2005/sharejoy/internal/session"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new account and log it in.
//   - Login: verify credentials and begin a session; nothing is written on failure.
//   - Logout: end the session.
//   - ChangePassword / DeleteAccount: act on the logged-in user after
//     re-checking the password.
//   - CurrentUser: the logged-in record, or nil.
//   - ListUsers: every account, approvers only.
//   - SeedFromFile: create accounts listed in a YAML file.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username, password string, role credstore.Role) error
	Login(ctx context.Context, username, password string) (*credstore.UserRecord, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, current, next, confirm string) error
	DeleteAccount(ctx context.Context, password string) error
	CurrentUser(ctx context.Context) (*credstore.UserRecord, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
	SeedFromFile(ctx context.Context, path string) (int, error)
}

// UserSummary is what ListUsers exposes; salts and hashes stay inside.
type UserSummary struct {
	Username string
	Role     credstore.Role
}

type authService struct {
	store   *credstore.Store
	hasher  cryptox.Hasher
	session *session.Manager
	logger  logging.Logger
}

// NewAuthService constructs an AuthService over the credential store and the
// session manager.
func NewAuthService(store *credstore.Store, hasher cryptox.Hasher, sm *session.Manager, logger logging.Logger) AuthService {
	return &authService{
		store:   store,
		hasher:  hasher,
		session: sm,
		logger:  logger.With("component", "auth"),
	}
}

func (a *authService) Register(ctx context.Context, username, password string, role credstore.Role) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: please fill in all fields", common.ErrorValidation)
	}
	if role == "" {
		role = credstore.RoleUser
	}

	if err := a.createUser(ctx, username, password, role); err != nil {
		return err
	}
	a.logger.Info(ctx, "user registered", "username", username, "role", role)

	return a.session.Begin(ctx, username)
}

func (a *authService) createUser(ctx context.Context, username, password string, role credstore.Role) error {
	salt, err := a.hasher.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := a.hasher.HashPassword(password, salt)
	if err != nil {
		return err
	}
	return a.store.CreateUser(ctx, credstore.UserRecord{
		Username: username,
		Salt:     salt,
		Hash:     hash,
		Role:     role,
	})
}

// Login returns common.ErrorNotFound for an unknown username and
// common.ErrorUnauthorized for a wrong password.
func (a *authService) Login(ctx context.Context, username, password string) (*credstore.UserRecord, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: please fill in all fields", common.ErrorValidation)
	}

	u, err := a.verify(ctx, username, password)
	if err != nil {
		a.logger.Warn(ctx, "login failed", "username", username, "err", err)
		return nil, err
	}

	if err := a.session.Begin(ctx, username); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "user logged in", "username", username)
	return u, nil
}

func (a *authService) verify(ctx context.Context, username, password string) (*credstore.UserRecord, error) {
	u, err := a.store.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
	}

	ok, err := a.hasher.VerifyPassword(password, u.Salt, u.Hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.End(ctx)
}

func (a *authService) ChangePassword(ctx context.Context, current, next, confirm string) error {
	username, err := a.session.Current()
	if err != nil {
		return err
	}
	if current == "" || next == "" {
		return fmt.Errorf("%w: please fill in all fields", common.ErrorValidation)
	}
	if next != confirm {
		return fmt.Errorf("%w: new passwords do not match", common.ErrorValidation)
	}
	return a.store.ChangeUserPassword(ctx, username, current, next)
}

// DeleteAccount removes the logged-in user after checking password. The
// store clears the current-user pointer; the session is re-read afterwards.
func (a *authService) DeleteAccount(ctx context.Context, password string) error {
	username, err := a.session.Current()
	if err != nil {
		return err
	}
	if _, err := a.verify(ctx, username, password); err != nil {
		return err
	}

	if err := a.store.DeleteUser(ctx, username); err != nil {
		return err
	}
	a.logger.Info(ctx, "account deleted", "username", username)

	return a.session.Refresh(ctx)
}

func (a *authService) CurrentUser(ctx context.Context) (*credstore.UserRecord, error) {
	username, err := a.session.Current()
	if err != nil {
		return nil, nil
	}
	return a.store.GetUser(ctx, username)
}

// ListUsers returns accounts sorted by username. Only approvers may call it.
func (a *authService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	me, err := a.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, common.ErrNotLoggedIn
	}
	if !me.IsApprover() {
		return nil, common.ErrorForbidden
	}

	users, err := a.store.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(users))
	for name, u := range users {
		out = append(out, UserSummary{Username: name, Role: u.Role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
