package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errCancelled = errors.New("cancelled")

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, ok := a.auth.CurrentSession(ctx)
	return ok
}

// report prints err unless the request pipeline already showed it as a toast.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	if client.IsNoResult(err) {
		return err
	}
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "You are not logged in.")
	case errors.Is(err, errCancelled):
		fmt.Fprintln(a.out, "Cancelled.")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

// askText returns args joined or, when empty, prompts for a line.
func (a *App) askText(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// withPassword reads a password, hands it to fn and wipes the buffer.
func (a *App) withPassword(prompt string, fn func(password string) error) error {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	return fn(string(pw))
}

// Register prompts for email, password and an optional display name, creates
// the account and signs in.
func (a *App) Register(ctx context.Context, args []string) error {
	a.nav.Navigate(common.RegisterPath)

	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return a.report(err)
		}
	}

	var displayName *string
	name, err := a.askText(args[min(1, len(args)):], "Display name (optional)")
	if err != nil {
		return a.report(err)
	}
	if name != "" {
		displayName = &name
	}

	err = a.withPassword("Enter password", func(password string) error {
		s, err := a.auth.Register(ctx, email, password, displayName)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Welcome, %s!\n", s.Identity.Name())
		return nil
	})
	if err != nil {
		return a.report(err)
	}

	a.nav.Navigate(common.HomePath)
	return nil
}

// Login prompts for credentials and stores the new session.
func (a *App) Login(ctx context.Context, args []string) error {
	a.nav.Navigate(common.LoginPath)

	email, err := a.askText(args, "Enter email")
	if err != nil {
		return a.report(err)
	}

	err = a.withPassword("Enter password", func(password string) error {
		s, err := a.auth.Login(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s\n", s.Identity.Name())
		return nil
	})
	if err != nil {
		return a.report(err)
	}

	a.nav.Navigate(common.HomePath)
	return nil
}

// Logout drops the local session. The navigator follows on its own.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the cached identity without contacting the server.
func (a *App) WhoAmI(ctx context.Context) error {
	s, ok := a.auth.CurrentSession(ctx)
	if !ok {
		return a.report(services.ErrNotLoggedIn)
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s, session expires %s\n",
		s.Identity.Name(), s.Identity.Email, s.Identity.ID, s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// Profile fetches and prints the account from the server.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.auth.Profile(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "ID:       %s\nEmail:    %s\nName:     %s\nCreated:  %s\nUpdated:  %s\n",
		p.ID, p.Email, p.Name(), p.CreatedAt, p.UpdatedAt)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	name, err := a.askText(args, "New display name")
	if err != nil {
		return a.report(err)
	}
	p, err := a.auth.Rename(ctx, name)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Display name is now %s\n", p.Name())
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	err := a.withPassword("New password", func(password string) error {
		return a.withPassword("Repeat new password", func(repeat string) error {
			if password != repeat {
				return errors.New("passwords do not match")
			}
			_, err := a.auth.ChangePassword(ctx, password)
			return err
		})
	})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

// Deactivate asks for confirmation, disables the account and signs out.
func (a *App) Deactivate(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type 'yes' to deactivate your account", a.out)
	if err != nil {
		return a.report(err)
	}
	if answer != "yes" {
		return a.report(errCancelled)
	}
	return a.report(a.auth.Deactivate(ctx))
}

// Open navigates to path; the route guard may send the user elsewhere.
func (a *App) Open(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	a.nav.Navigate(path)
	return nil
}
