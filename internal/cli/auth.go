package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/credstore"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readPasswordString reads one password and wipes the byte copy.
func (a *App) readPasswordString(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for username, password (twice) and role, creates the
// account and logs it in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPasswordString("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.readPasswordString("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	roleText, err := getSimpleText(a.reader, "Role (user/approver) [user]", a.out)
	if err != nil {
		return err
	}
	role, err := credstore.ParseRole(roleText)
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.authService.Register(ctx, userName, password, role); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and begins a session on success. On failure
// the previous session, if any, is kept.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPasswordString("Enter password")
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(ctx)
	defer cancel()
	u, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Username)
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
