package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type registerRequest struct {
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=100"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.metrics.RecordRegister(metrics.ResultInvalid)
		s.writeError(ctx, w, err)
		return
	}

	user, err := s.auth.Register(ctx, services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.metrics.RecordRegister(metrics.ResultConflict)
		} else {
			s.metrics.RecordRegister(metrics.ResultError)
		}
		s.writeError(ctx, w, err)
		return
	}

	s.metrics.RecordRegister(metrics.ResultSuccess)
	s.writeJSON(ctx, w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.metrics.RecordLogin(metrics.ResultInvalid)
		s.writeError(ctx, w, err)
		return
	}

	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.metrics.RecordLogin(metrics.ResultInvalidCredentials)
		} else {
			s.metrics.RecordLogin(metrics.ResultError)
		}
		s.writeError(ctx, w, err)
		return
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	s.writeJSON(ctx, w, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := IdentityFromContext(r.Context())
	if !ok {
		s.writeError(r.Context(), w, common.ErrUnauthorized)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := IdentityFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrUnauthorized)
		return
	}

	var req profileRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	updated, err := s.auth.UpdateProfile(ctx, user.ID, services.ProfileInput{
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := IdentityFromContext(ctx)
	if !ok {
		s.writeError(ctx, w, common.ErrUnauthorized)
		return
	}

	if err := s.auth.Deactivate(ctx, user.ID); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, messageBody{Message: "Account deactivated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeMessage(r.Context(), w, http.StatusNotFound, "Not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeMessage(r.Context(), w, http.StatusMethodNotAllowed, "Method not allowed")
}
