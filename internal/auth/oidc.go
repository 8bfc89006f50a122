package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/bcnelson/sentinelguard/internal/config"
	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCClaims identifies an operator signing in to the console.
type OIDCClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// OperatorPolicy decides which identity provider accounts may operate the
// console.
type OperatorPolicy struct {
	AllowedDomains       []string
	RequireVerifiedEmail bool
}

// Check rejects claims the policy does not admit. Errors wrap
// domain.ErrUnauthorized.
func (p OperatorPolicy) Check(claims *OIDCClaims) error {
	if claims.Email == "" {
		return fmt.Errorf("%w: email claim is required", domain.ErrUnauthorized)
	}
	if p.RequireVerifiedEmail && !claims.EmailVerified {
		return fmt.Errorf("%w: email %s is not verified", domain.ErrUnauthorized, claims.Email)
	}
	if len(p.AllowedDomains) == 0 {
		return nil
	}

	at := strings.LastIndexByte(claims.Email, '@')
	if at <= 0 || at == len(claims.Email)-1 {
		return fmt.Errorf("%w: invalid email %q", domain.ErrUnauthorized, claims.Email)
	}
	emailDomain := claims.Email[at+1:]
	if !slices.ContainsFunc(p.AllowedDomains, func(d string) bool { return strings.EqualFold(d, emailDomain) }) {
		return fmt.Errorf("%w: email domain %s is not allowed", domain.ErrUnauthorized, strings.ToLower(emailDomain))
	}
	return nil
}

// OIDCProvider signs operators in through an OpenID Connect issuer.
type OIDCProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	policy       OperatorPolicy
}

// NewOIDCProvider discovers the issuer configured in cfg.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering OIDC issuer %s: %w", cfg.IssuerURL, err)
	}

	return &OIDCProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.GetScopes(),
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		policy: OperatorPolicy{
			AllowedDomains:       cfg.GetAllowedDomains(),
			RequireVerifiedEmail: cfg.RequireVerifiedEmail,
		},
	}, nil
}

// AuthCodeURL returns the issuer login URL bound to state and nonce.
func (p *OIDCProvider) AuthCodeURL(state, nonce string) string {
	return p.oauth2Config.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades an authorization code for verified operator claims.
func (p *OIDCProvider) Exchange(ctx context.Context, code, nonce string) (*OIDCClaims, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("token response has no id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verifying id_token: %w", err)
	}
	if !ConstantTimeCompare(idToken.Nonce, nonce) {
		return nil, fmt.Errorf("id_token nonce mismatch")
	}

	var claims OIDCClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decoding id_token claims: %w", err)
	}
	return &claims, nil
}

// ValidateClaims applies the operator policy.
func (p *OIDCProvider) ValidateClaims(claims *OIDCClaims) error {
	return p.policy.Check(claims)
}

// GenerateSecureString returns length random bytes, base64url encoded.
func GenerateSecureString(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
