package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, display name and password and creates an
// account. The new session is persisted.
func (a *App) Register(ctx context.Context) error {
	w := a.output()

	email, err := getSimpleText(a.reader, "Enter email", w)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name (optional)", w)
	if err != nil {
		return err
	}

	password, err := getPassword(w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.Register(ctx, email, string(password), displayName); err != nil {
		return err
	}

	a.userName = email
	fmt.Fprintln(w, "Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	w := a.output()

	email, err := getSimpleText(a.reader, "Enter email", w)
	if err != nil {
		return err
	}

	password, err := getPassword(w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}

	a.userName = email
	fmt.Fprintln(w, "Login successful")
	return nil
}

// GoogleLogin exchanges a Google ID token obtained elsewhere for a session.
func (a *App) GoogleLogin(ctx context.Context, idToken string) error {
	if _, err := a.session.LoginWithGoogle(ctx, idToken); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.output(), "Login successful")
	return nil
}

// Logout ends the session locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.output(), "Logged out")
	return nil
}
