package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"
)

const (
	// OIDCSessionCookieName is the name of the OIDC session cookie.
	OIDCSessionCookieName = "sg_oidc_session"
)

// SessionManager handles encrypted session cookies.
type SessionManager struct {
	sealer   *sealer
	duration time.Duration
	now      func() time.Time
}

// OIDCSession is the operator identity stored in the encrypted cookie.
type OIDCSession struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionManager creates a new session manager with the given encryption key.
// The key must be exactly 32 bytes for AES-256.
func NewSessionManager(key []byte, duration time.Duration, secure bool) (*SessionManager, error) {
	s, err := newSealer(key, secure)
	if err != nil {
		return nil, err
	}
	return &SessionManager{sealer: s, duration: duration, now: time.Now}, nil
}

// Create sets an encrypted session cookie.
func (sm *SessionManager) Create(w http.ResponseWriter, session *OIDCSession) error {
	session.CreatedAt = sm.now()
	session.ExpiresAt = session.CreatedAt.Add(sm.duration)

	value, err := sm.sealer.seal(session)
	if err != nil {
		return err
	}

	sm.sealer.setCookie(w, OIDCSessionCookieName, value, int(sm.duration.Seconds()))
	return nil
}

// Get retrieves and validates the session from the cookie.
func (sm *SessionManager) Get(r *http.Request) (*OIDCSession, error) {
	cookie, err := r.Cookie(OIDCSessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("session cookie not found: %w", err)
	}

	var session OIDCSession
	if err := sm.sealer.open(cookie.Value, &session); err != nil {
		return nil, err
	}

	if sm.now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// Clear clears the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	sm.sealer.setCookie(w, OIDCSessionCookieName, "", -1)
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
