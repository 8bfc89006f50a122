package handler

import (
	"context"
	"net/http"

	"github.com/bcnelson/sentinelguard/internal/auth"
	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/rs/zerolog"
)

// OIDCProvider is the part of auth.OIDCProvider used by the login flow.
type OIDCProvider interface {
	AuthCodeURL(state, nonce string) string
	Exchange(ctx context.Context, code, nonce string) (*auth.OIDCClaims, error)
	ValidateClaims(claims *auth.OIDCClaims) error
}

// AuthHandler handles the OIDC login flow.
type AuthHandler struct {
	provider OIDCProvider
	sessions *auth.SessionManager
	states   *auth.StateStore
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider OIDCProvider, sessions *auth.SessionManager, states *auth.StateStore, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, sessions: sessions, states: states, logger: logger}
}

// Login redirects to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	stateData, err := h.states.Generate(w)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate OIDC state")
		respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "failed to initiate login")
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(stateData.State, stateData.Nonce), http.StatusSeeOther)
}

// Callback completes the login and sets the session cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		errDesc := query.Get("error_description")
		if errDesc == "" {
			errDesc = errParam
		}
		h.logger.Warn().Str("error", errParam).Str("description", errDesc).Msg("OIDC provider returned error")
		respondError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, errDesc)
		return
	}

	code := query.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "no authorization code received")
		return
	}

	stateData, err := h.states.Validate(r, query.Get("state"))
	if err != nil {
		h.logger.Warn().Err(err).Msg("OIDC state validation failed")
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid state parameter")
		return
	}
	h.states.Clear(w)

	claims, err := h.provider.Exchange(r.Context(), code, stateData.Nonce)
	if err != nil {
		h.logger.Error().Err(err).Msg("OIDC token exchange failed")
		respondError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "failed to complete authentication")
		return
	}

	if err := h.provider.ValidateClaims(claims); err != nil {
		h.logger.Warn().Err(err).Str("email", claims.Email).Msg("OIDC claims rejected")
		respondError(w, http.StatusForbidden, domain.ErrCodeUnauthorized, err.Error())
		return
	}

	session := &auth.OIDCSession{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}
	if err := h.sessions.Create(w, session); err != nil {
		h.logger.Error().Err(err).Msg("failed to create OIDC session")
		respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "failed to create session")
		return
	}

	h.logger.Info().Str("email", session.Email).Msg("operator signed in")
	respondJSON(w, http.StatusOK, session)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
