// Package middleware adapts the gatewayops teacher's request-scoped
// middleware stack (auth, logging, recovery, trace) to baselayer's
// domain.Principal resolution instead of API-key lookups.
package middleware

import (
	"context"

	"github.com/akz4ol/baselayer/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches the resolved principal to ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal Auth or BrowserAuth resolved,
// or nil if neither ran (or none matched).
func PrincipalFrom(ctx context.Context) domain.Principal {
	p, _ := ctx.Value(principalKey).(domain.Principal)
	return p
}
