package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for a name, email, password and its confirmation,
// validates the form and creates the account. On success the new user is
// signed in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form := registrationForm{Name: name, Email: email, Password: string(password), Confirm: string(confirm)}
	if err := validateForm(a.validate, &form); err != nil {
		return err
	}

	id, err := a.authService.Register(ctx, form.Name, form.Email, password)
	if err != nil {
		return err
	}

	a.printf("Welcome, %s! Your account has been created.\n", id.Name)
	return nil
}

// Login prompts for credentials and signs the user in. Saved jobs and
// applications of the user become visible immediately.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errors.New("already logged in, use 'logout' first")
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.printf("Welcome back, %s!\n", id.Name)
	return nil
}

// Logout ends the session. The in-memory session is cleared even if the
// stored one could not be removed.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the signed-in identity.
func (a *App) WhoAmI(ctx context.Context) error {
	id := a.authService.CurrentIdentity()
	if id == nil {
		return common.ErrNotAuthenticated
	}
	a.printf("%s <%s>\n", id.Name, id.Email)
	return nil
}
