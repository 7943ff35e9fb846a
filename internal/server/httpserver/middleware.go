package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the identity resolved by the authorizer.
func IdentityFromContext(ctx context.Context) (*models.UserSummary, bool) {
	u, ok := ctx.Value(identityKey).(*models.UserSummary)
	return u, ok && u != nil
}

// Authorizer gates protected routes: it extracts the bearer token, verifies
// it, resolves the subject to a live identity and stores that identity in
// the request context. Every failure answers 401 "Unauthorized"; the reason
// goes to the log and the authorize counter.
func (s *Server) Authorizer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, ok := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if !ok {
			s.reject(ctx, w, metrics.ResultMissingToken, nil)
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.reject(ctx, w, tokenFailure(err), err)
			return
		}

		user, err := s.auth.ResolveIdentity(ctx, claims.Subject)
		if err != nil {
			if !errors.Is(err, common.ErrUnauthorized) {
				s.metrics.RecordAuthorize(metrics.ResultError)
				s.writeError(ctx, w, err)
				return
			}
			s.reject(ctx, w, metrics.ResultUnknownIdentity, err)
			return
		}

		s.metrics.RecordAuthorize(metrics.ResultSuccess)
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, identityKey, user)))
	})
}

func (s *Server) reject(ctx context.Context, w http.ResponseWriter, reason string, err error) {
	s.metrics.RecordAuthorize(reason)
	if err != nil {
		s.logger.Info(ctx, "request unauthorized", "reason", reason, "error", err)
	} else {
		s.logger.Info(ctx, "request unauthorized", "reason", reason)
	}
	s.writeMessage(ctx, w, http.StatusUnauthorized, "Unauthorized")
}

func tokenFailure(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return metrics.ResultExpired
	case errors.Is(err, common.ErrTokenSignature):
		return metrics.ResultSignature
	default:
		return metrics.ResultMalformed
	}
}

// accessLog logs one line per request and records its latency.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		s.metrics.RecordRequest(r.Method, route, status, elapsed)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
