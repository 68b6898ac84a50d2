package middleware

import (
	"net/http"
	"strings"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/contextkeys"
	"github.com/leadflow/leadflow/pkg/httputil"
)

const bearerPrefix = "Bearer "

// AuthMiddleware verifies the bearer token on every request and attaches the
// reconstructed principal to the request context. Verification is local to
// the process; the issuing service is never called.
type AuthMiddleware struct {
	verifier *auth.Verifier
}

// NewAuthMiddleware creates the token verification middleware.
func NewAuthMiddleware(verifier *auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handler wraps an HTTP handler with token verification.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			httputil.WriteUnauthorized(w, "Authorization token missing")
			return
		}

		principal, err := m.verifier.Verify(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			httputil.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := contextkeys.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipal extracts the verified principal from the request, or nil when
// the request did not pass through the auth middleware.
func GetPrincipal(r *http.Request) *auth.Principal {
	return contextkeys.GetPrincipal(r.Context())
}

// RequireRoles creates middleware permitting only principals whose role is in
// the allow-list. It must run after the auth middleware: a missing principal
// is a 401, not a 403.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r)
			if principal == nil {
				httputil.WriteUnauthorized(w, "Authorization token missing")
				return
			}

			if !allowed[principal.Role] {
				httputil.WriteForbidden(w, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
