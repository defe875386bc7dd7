package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/client"
	"github.com/dmitrijs2005/testimonykeeper/internal/common"
	"github.com/hako/durafmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var ErrNotLoggedIn = errors.New("not logged in")

// Register prompts for a name, email and password and creates an account.
// The new session is active immediately. The password is wiped before
// returning.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Signup(ctx, fullName, email, password)
	if err != nil {
		return a.authFailed(err)
	}
	a.setUser(u)
	fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(u.FullName, u.Email))
	return nil
}

// Login prompts for credentials and authenticates. An unreachable server
// switches the app to offline mode.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.authFailed(err)
	}
	a.setUser(u)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// LoginWithGoogle completes the OAuth flow with a code the user copies from
// the browser after visiting the API's Google login page.
func (a *App) LoginWithGoogle(ctx context.Context) error {
	fmt.Fprintf(a.out, "Open %s/auth/google in a browser and sign in.\n", a.config.APIBaseURL)
	code, err := getSimpleText(a.reader, "Paste the code from the callback page", a.out)
	if err != nil {
		return err
	}

	u, err := a.authService.LoginWithGoogle(ctx, code)
	if err != nil {
		return a.authFailed(err)
	}
	a.setUser(u)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) authFailed(err error) error {
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		return fmt.Errorf("server unavailable, try again later: %w", err)
	}
	return err
}

// Logout ends the session locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	a.setUser(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current account and how long the session stays valid.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	a.setUser(u)

	fmt.Fprintf(a.out, "%s <%s>", displayName(u.FullName, u.Email), u.Email)
	if u.Role != "" {
		fmt.Fprintf(a.out, " [%s]", u.Role)
	}
	fmt.Fprintln(a.out)
	if last := a.session.LastLogin(); !last.IsZero() {
		fmt.Fprintf(a.out, "Logged in at %s\n", last.Local().Format(time.DateTime))
	}
	fmt.Fprintf(a.out, "Session expires in %s\n", formatRemaining(a.session.ExpiresIn()))
	return nil
}

// RequireAuth runs next when a session is active. Otherwise it asks the
// user to log in first and continues with next after a successful login.
func (a *App) RequireAuth(ctx context.Context, next func(ctx context.Context) error) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in to continue")
		if err := a.Login(ctx); err != nil {
			return err
		}
		if !a.isLoggedIn() {
			return ErrNotLoggedIn
		}
	}
	return next(ctx)
}

func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0 seconds"
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

func displayName(fullName, email string) string {
	if fullName != "" {
		return fullName
	}
	return email
}
