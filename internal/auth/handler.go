package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/showcase/service/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Password string `json:"password" example:"correct horse battery staple"`
}

// Login godoc
//
//	@Summary		Operator login
//	@Description	Exchanges the operator password for a bearer token valid for seven days. Five wrong passwords in a row lock logins for 15 minutes.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Operator password"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		429		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Password == "" {
		response.BadRequest(w, "password is required")
		return
	}

	session, err := h.svc.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "invalid password")
		return
	case errors.Is(err, ErrLocked):
		response.Error(w, http.StatusTooManyRequests, "too many failed logins, try again later")
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		response.InternalError(w)
		return
	}

	response.OK(w, session)
}
