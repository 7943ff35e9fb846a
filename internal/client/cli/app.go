package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/notify"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/routeguard"
)

// healthServiceName is the service the server reports on its gRPC health endpoint.
const healthServiceName = "gophauth.Auth"

type App struct {
	config   *config.Config
	logger   logging.Logger
	auth     *services.AuthService
	sessions *session.Manager
	bus      *notify.Bus
	nav      *Navigator
	watcher  *onlineWatcher
	reader   *bufio.Reader
	out      io.Writer

	closers []io.Closer
	once    sync.Once
}

// NewApp opens the session database and the health connection and wires the
// client together.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	if _, err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	health, err := client.NewHealthClient(c.ServerGRPCAddr, healthServiceName)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := assemble(c, logger, session.NewSQLiteStore(db), health, os.Stdin, os.Stdout)
	app.closers = append(app.closers, health, dbCloser{db})
	return app, nil
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

// assemble builds the object graph around an already opened store and
// health checker.
func assemble(c *config.Config, logger logging.Logger, store session.Store, health services.HealthChecker, in io.Reader, out io.Writer) *App {
	sessions := session.NewManager(store)
	bus := notify.New()

	nav := NewNavigator(routeguard.DefaultPolicy(), func() bool {
		_, ok := sessions.Token(context.Background())
		return ok
	})

	api := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, sessions, bus, nav, logger)
	auth := services.NewAuthService(api, sessions, health)

	app := &App{
		config:   c,
		logger:   logger,
		auth:     auth,
		sessions: sessions,
		bus:      bus,
		nav:      nav,
		watcher:  &onlineWatcher{pinger: auth, notes: bus},
		reader:   bufio.NewReader(in),
		out:      out,
	}

	// a session change re-checks the current page
	sessions.Subscribe(nav.Refresh)
	nav.Navigate(common.LandingPath)

	return app
}

// Run prints toasts, starts the connectivity watcher and blocks in the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := NewToastPrinter(a.bus, a.out).Attach()
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.watcher.Run(ctx, a.config.OnlineCheckInterval)
	}()

	fmt.Fprintln(a.out, "Welcome to GophAuth CLI (type 'help' for commands)")
	if s, ok := a.auth.CurrentSession(ctx); ok {
		fmt.Fprintf(a.out, "Signed in as %s\n", s.Identity.Name())
	}

	runREPL(ctx, a, a.prompt, bufio.NewScanner(a.reader), a.out)

	cancel()
	wg.Wait()
}

// Close releases the bus timers, the gRPC connection and the database.
func (a *App) Close() error {
	var errs []error
	a.once.Do(func() {
		a.bus.Close()
		for _, c := range a.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func (a *App) prompt() string {
	who := "guest"
	if s, ok := a.auth.CurrentSession(context.Background()); ok {
		who = s.Identity.Name()
	}
	status := who
	if m := a.watcher.Mode(); m != ModeUnknown {
		status += " " + string(m)
	}
	return fmt.Sprintf("gophauth %s (%s)> ", a.nav.Path(), status)
}
