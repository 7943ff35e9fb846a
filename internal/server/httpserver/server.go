// Package httpserver exposes the authentication API over HTTP: registration,
// login, the caller's own profile, health and metrics. Protected routes sit
// behind the Authorizer middleware.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/routeguard"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// AuthService is the business surface the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.UserSummary, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ResolveIdentity(ctx context.Context, id string) (*models.UserSummary, error)
	UpdateProfile(ctx context.Context, id string, in services.ProfileInput) (*models.UserSummary, error)
	Deactivate(ctx context.Context, id string) error
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	address  string
	logger   logging.Logger
	auth     AuthService
	tokens   TokenVerifier
	metrics  *metrics.Metrics
	validate *validator.Validate
	webDir   string
}

func NewServer(a string, l logging.Logger, as AuthService, tv TokenVerifier, m *metrics.Metrics, webDir string) *Server {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		auth:     as,
		tokens:   tv,
		metrics:  m,
		validate: newValidator(),
		webDir:   webDir,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.Authorizer)
		r.Get("/me", s.handleGetMe)
		r.Patch("/me", s.handleUpdateMe)
		r.Delete("/me", s.handleDeleteMe)
	})

	if s.webDir != "" {
		pages := routeguard.DefaultPolicy().Middleware(http.FileServer(http.Dir(s.webDir)))
		r.Handle("/*", pages)
	}

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
