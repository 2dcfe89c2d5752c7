// Package httpapi is the handler-process router sitting at the core's
// HTTP boundary: request-scoped middleware, health checks, the
// websocket-auth-token issuance endpoint, and the browser-session
// profile/logout pair (SPEC_FULL.md §6 item 2).
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/audit"
	"github.com/akz4ol/baselayer/internal/fanout"
	"github.com/akz4ol/baselayer/internal/middleware"
	"github.com/akz4ol/baselayer/internal/oauth"
	"github.com/akz4ol/baselayer/internal/signedcookie"
)

// Dependencies bundles everything the router needs to wire its
// routes, mirroring the teacher's router.Dependencies shape.
type Dependencies struct {
	Logger      zerolog.Logger
	Tokens      middleware.TokenLoader
	Users       middleware.UserLoader
	Signer      signedcookie.Signer
	TokenIssuer fanout.TokenIssuer
	Audit       audit.Reader
	OAuth       *oauth.Provider
}

// New builds the chi router: request id, real-IP, recovery, logging,
// tracing, CORS, then the public and authenticated route groups.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Trace("baselayer/httpapi"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BrowserAuth(deps.Signer, deps.Users, deps.Logger))
		r.Use(middleware.Auth(deps.Tokens, deps.Users, deps.Logger))

		r.With(middleware.RequirePrincipal).Get("/socket_auth_token", socketAuthTokenHandler(deps.TokenIssuer))
		r.With(middleware.RequirePrincipal).Get("/baselayer/profile", profileHandler(deps.Users))
		r.Post("/baselayer/logout", logoutHandler)
		r.With(middleware.RequirePrincipal).Get("/baselayer/audit/denials", auditDenialsHandler(deps.Audit))
	})

	if deps.OAuth != nil {
		r.Get("/login/oauth", oauthLoginHandler(deps.OAuth))
		r.Get("/login/oauth/callback", oauthCallbackHandler(deps.OAuth, deps.Logger))
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
