// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the services are defined here so that the auth
// middleware and the handlers agree on where the request's principal lives.
package contextkeys

import (
	"context"

	"github.com/leadflow/leadflow/pkg/auth"
)

// Key is the type for context keys to prevent collisions.
type Key string

const (
	// PrincipalKey contains the *auth.Principal reconstructed by the token
	// verification middleware. Required by every protected endpoint and by
	// the role guard.
	PrincipalKey Key = "principal"

	// RequestIDKey contains the request ID string attached by the HTTP
	// middleware and echoed in logs.
	RequestIDKey Key = "request_id"
)

// WithPrincipal adds the verified principal to the context.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipal retrieves the verified principal, or nil if the request did
// not pass token verification.
func GetPrincipal(ctx context.Context) *auth.Principal {
	p, ok := ctx.Value(PrincipalKey).(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
