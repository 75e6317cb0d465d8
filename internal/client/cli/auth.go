package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/common"
)

// getSimpleText, getOptional and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getOptional   = GetOptional
	getPassword   = GetPassword
)

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for email, username and password (twice) and creates the
// account. A successful registration also logs the user in.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in. Logout first.")
		return nil
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}

	user, err := a.authService.Register(ctx, email, username, password)
	if err != nil {
		return err
	}
	printlnFn(config.MsgRegistered)
	printlnFn("Logged in as", user.DisplayName())
	return nil
}

// Login prompts for credentials and opens a session. Wrong credentials are
// reported without the session-expired wording a 401 normally gets.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in as", a.authService.CurrentUser().DisplayName()+". Logout first.")
		return nil
	}
	login, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, login, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			printlnFn(config.MsgLoginFailed)
			return nil
		}
		return err
	}
	printlnFn(config.MsgLoggedIn)
	printlnFn("Logged in as", user.DisplayName())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	printlnFn(config.MsgLoggedOut)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.authService.CurrentUser()
	if u == nil {
		printlnFn(config.MsgLoginFirst)
		return nil
	}
	printlnFn("ID:      ", u.ID.String())
	printlnFn("Email:   ", u.Email)
	printlnFn("Username:", u.Username)
	if u.CreatedAt != "" {
		printlnFn("Since:   ", u.CreatedAt)
	}
	return nil
}

// Profile edits username and email. Only changed fields are sent.
func (a *App) Profile(ctx context.Context) error {
	u := a.authService.CurrentUser()
	if u == nil {
		printlnFn(config.MsgLoginFirst)
		return nil
	}

	patch := map[string]any{}
	username, changed, err := getOptional(a.reader, "Username", u.Username, a.out)
	if err != nil {
		return err
	}
	if changed {
		patch["username"] = username
	}
	email, changed, err := getOptional(a.reader, "Email", u.Email, a.out)
	if err != nil {
		return err
	}
	if changed {
		patch["email"] = email
	}

	if len(patch) == 0 {
		printlnFn("Nothing to update.")
		return nil
	}
	if _, err := a.authService.UpdateProfile(ctx, patch); err != nil {
		return err
	}
	printlnFn(config.MsgProfileUpdated)
	return nil
}
