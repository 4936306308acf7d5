package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/common"
)

// WhoAmI prints the logged-in user and role.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		// the account may have been removed by another process
		if err := a.sessions.Refresh(ctx); err != nil {
			return err
		}
		return common.ErrNotLoggedIn
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Username, u.Role)
	return nil
}

// ChangePassword asks for the current password and the new one twice.
func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotLoggedIn
	}

	current, err := a.readPasswordString("Current password")
	if err != nil {
		return err
	}
	next, err := a.readPasswordString("New password")
	if err != nil {
		return err
	}
	confirm, err := a.readPasswordString("Confirm new password")
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.authService.ChangePassword(ctx, current, next, confirm); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password updated.")
	return nil
}

// DeleteAccount removes the logged-in account after a typed confirmation
// and the password.
func (a *App) DeleteAccount(ctx context.Context) error {
	userName, ok := a.currentUser()
	if !ok {
		return common.ErrNotLoggedIn
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Type %q to delete your account", userName), a.out)
	if err != nil {
		return err
	}
	if answer != userName {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	password, err := a.readPasswordString("Enter password")
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.authService.DeleteAccount(ctx, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

// ListUsers prints every account; approvers only.
func (a *App) ListUsers(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	users, err := a.authService.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%-24s %s\n", u.Username, u.Role)
	}
	return nil
}
