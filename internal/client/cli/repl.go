package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Rename(ctx context.Context, args []string) error
	ChangePassword(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Open(ctx context.Context, path string) error
}

// runREPL starts a read–eval–print loop for the GophAuth CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, context cancellation, or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                        show available commands
//	  - register [email] [name]     create an account and sign in
//	  - login [email]               authenticate
//	  - exit | quit                 leave the program
//
//	Logged in:
//	  - whoami                      show the cached identity
//	  - profile                     fetch the profile from the server
//	  - rename [name]               change the display name
//	  - passwd                      change the password
//	  - deactivate                  deactivate the account
//	  - home | open <path>          navigate
//	  - logout                      log out
//	  - exit | quit                 leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(w, promptFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Fprintln(w, "Available commands: whoami, profile, rename, passwd, deactivate, home, open <path>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx, args)

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "rename":
			_ = a.Rename(ctx, args)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "deactivate":
			_ = a.Deactivate(ctx)

		case "home":
			_ = a.Open(ctx, common.HomePath)

		case "open":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
