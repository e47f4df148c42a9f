package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/smforson1/book-bite-sub000/internal/common"
)

// Login authenticates against the backend. When the backend is unreachable
// but a stored session is still usable, the app keeps working offline on the
// local data.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	token, user, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			if a.sess.Active(ctx) {
				fmt.Fprintln(a.out, "Server unavailable, continuing with the stored session")
				return nil
			}
			fmt.Fprintln(a.out, "Server unavailable and no stored session")
			return err
		}
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	user.Synced = true
	if !a.sess.Begin(ctx, token, user) {
		return fmt.Errorf("failed to persist session")
	}

	if err := a.api.MarkLogin(ctx, user.ID); err != nil {
		a.log.Debug(ctx, "failed to mark login", "error", err)
	}

	// Pull the user's existing bookings and orders, so a fresh install does
	// not start from an empty history.
	if err := a.engine.Hydrate(ctx); err != nil {
		a.log.Warn(ctx, "failed to hydrate from backend", "error", err)
	}

	a.engine.SetOnline(true)
	if err := a.push.Connect(ctx); err != nil {
		a.log.Warn(ctx, "live updates unavailable", "error", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", user.Name)
	return nil
}

// Logout wipes the session. Local data stays; pending items sync on the
// next login.
func (a *App) Logout(ctx context.Context) error {
	_ = a.push.Close()
	a.sess.End(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
