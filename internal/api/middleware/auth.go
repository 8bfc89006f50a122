package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bcnelson/sentinelguard/internal/auth"
	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	APIKeyContextKey  contextKey = "api_key"
	SessionContextKey contextKey = "oidc_session"
)

// KeyAuthenticator resolves a presented bearer key.
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, presented string) (*domain.APIKey, error)
}

// Auth accepts either a bearer API key or, when sessions is non-nil, a valid
// OIDC session cookie.
func Auth(keys KeyAuthenticator, sessions *auth.SessionManager, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if sessions != nil {
					if session, err := sessions.Get(r); err == nil {
						ctx = context.WithValue(ctx, SessionContextKey, session)
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
				unauthorized(w, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			apiKey := strings.TrimPrefix(authHeader, "Bearer ")
			if apiKey == "" {
				unauthorized(w, "empty API key")
				return
			}

			key, err := keys.Authenticate(ctx, apiKey)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidAPIKey),
					errors.Is(err, domain.ErrNoAPIKeys),
					errors.Is(err, domain.ErrBootstrapDisabled):
					unauthorized(w, err.Error())
				default:
					logger.Error().Err(err).Msg("API key lookup failed")
					writeError(w, http.StatusInternalServerError, domain.ErrCodeStorageError, err.Error())
				}
				return
			}

			ctx = context.WithValue(ctx, APIKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.StandardErrorResponse{
		Error: domain.StandardError{Code: code, Message: message},
	})
}

// GetAPIKeyFromContext retrieves the API key from the request context.
func GetAPIKeyFromContext(ctx context.Context) *domain.APIKey {
	key, _ := ctx.Value(APIKeyContextKey).(*domain.APIKey)
	return key
}

// GetSessionFromContext retrieves the OIDC session from the request context.
func GetSessionFromContext(ctx context.Context) *auth.OIDCSession {
	session, _ := ctx.Value(SessionContextKey).(*auth.OIDCSession)
	return session
}

// Actor names the caller for logs: the API key name or the session email.
func Actor(ctx context.Context) string {
	if key := GetAPIKeyFromContext(ctx); key != nil {
		return "key:" + key.Name
	}
	if session := GetSessionFromContext(ctx); session != nil {
		return "oidc:" + session.Email
	}
	return "anonymous"
}
