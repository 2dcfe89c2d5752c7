// Package oauth is the OIDC relying-party flow behind spec.md §1's
// "OAuth2 social-login glue" — out of the core's scope as a feature,
// but specified at its interface (two signed cookies, SPEC_FULL.md
// §5), so it is wired here as a real flow against a generic OIDC
// provider using the teacher's go-oidc/oauth2 dependency pair rather
// than left as a described-only boundary.
package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/signedcookie"
)

// UserCookieName and OAuthUIDCookieName are the two signed cookies
// internal/oauth.Callback writes and internal/middleware.BrowserAuth
// reads back — the only contract the core depends on (SPEC_FULL.md §5).
const (
	UserCookieName     = "user_id"
	OAuthUIDCookieName = "user_oauth_uid"
)

// cookieTTL does not follow the websocket token's short lifetime;
// browser sessions are long-lived, so the cookie is valid for 30 days.
const cookieTTL = 30 * 24 * time.Hour

// UserResolver looks up (or provisions) the local user behind a
// verified OIDC subject claim.
type UserResolver interface {
	ResolveOAuthUID(ctx context.Context, oauthUID, email string) (userID string, err error)
}

// Provider wraps an OIDC relying-party configuration: discovery
// document, verifier, and the oauth2.Config used for the authorization
// code exchange.
type Provider struct {
	oauth2   *oauth2.Config
	verifier *oidc.IDTokenVerifier
	signer   signedcookie.Signer
	resolver UserResolver
	logger   zerolog.Logger
}

// NewProvider discovers the OIDC provider at cfg.IssuerURL and builds
// the relying-party configuration. Call once at process start.
func NewProvider(ctx context.Context, cfg config.OAuthConfig, secret string, resolver UserResolver, logger zerolog.Logger) (*Provider, error) {
	p, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oauth: discover issuer %s: %w", cfg.IssuerURL, err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     p.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	return &Provider{
		oauth2:   oauthCfg,
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		signer:   signedcookie.New(secret),
		resolver: resolver,
		logger:   logger,
	}, nil
}

// AuthCodeURL starts the flow, redirecting the browser to the
// provider's authorization endpoint with the given anti-CSRF state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// Callback completes the authorization-code exchange, verifies the
// returned ID token, resolves the local user, and writes exactly the
// two signed cookies the core's browser-auth middleware reads.
func (p *Provider) Callback(w http.ResponseWriter, r *http.Request) error {
	code := r.URL.Query().Get("code")
	if code == "" {
		return fmt.Errorf("oauth: missing code parameter")
	}

	token, err := p.oauth2.Exchange(r.Context(), code)
	if err != nil {
		return fmt.Errorf("oauth: exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return fmt.Errorf("oauth: token response missing id_token")
	}

	idToken, err := p.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		return fmt.Errorf("oauth: verify id token: %w", err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return fmt.Errorf("oauth: decode claims: %w", err)
	}

	userID, err := p.resolver.ResolveOAuthUID(r.Context(), idToken.Subject, claims.Email)
	if err != nil {
		return fmt.Errorf("oauth: resolve user: %w", err)
	}

	p.signer.SetCookie(w, UserCookieName, userID, cookieTTL)
	p.signer.SetCookie(w, OAuthUIDCookieName, idToken.Subject, cookieTTL)

	p.logger.Info().Str("user_id", userID).Msg("oauth login completed")
	return nil
}

// Logout clears both signed cookies (SPEC_FULL.md §6 item 2).
func Logout(w http.ResponseWriter) {
	signedcookie.ClearCookie(w, UserCookieName)
	signedcookie.ClearCookie(w, OAuthUIDCookieName)
}
