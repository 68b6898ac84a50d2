// Package login is the auth service HTTP surface: credential verification
// against the user directory and token issuance.
package login

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/directory"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
)

// Handlers serves login and token introspection.
type Handlers struct {
	directory *directory.Client
	issuer    *auth.Issuer
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewHandlers creates the auth service handlers.
func NewHandlers(client *directory.Client, issuer *auth.Issuer, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{directory: client, issuer: issuer, logger: logger, metrics: metrics}
}

// RegisterRoutes registers the auth routes.
func (h *Handlers) RegisterRoutes(r *mux.Router, authmw *middleware.AuthMiddleware) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.Handle("/auth/me", authmw.Handler(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

// Login verifies credentials and mints a token. Every failure, from a missing
// field to an unreachable directory, returns the same 401 body so the
// response never reveals whether an account exists. The real cause is logged.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ParseJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		h.rejectLogin(w, "login rejected: incomplete request")
		return
	}

	start := time.Now()
	user, err := h.directory.GetByEmail(r.Context(), req.Email)
	h.metrics.DirectoryLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.metrics.DirectoryLookupsTotal.WithLabelValues("failure").Inc()
		h.logger.WithError(err).WithField("email", req.Email).Info("login rejected: directory lookup failed")
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		httputil.WriteUnauthorized(w, "Invalid email or password")
		return
	}
	h.metrics.DirectoryLookupsTotal.WithLabelValues("success").Inc()

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.rejectLogin(w, "login rejected: password mismatch")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.WithError(err).Error("token signing failed")
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		httputil.WriteUnauthorized(w, "Invalid email or password")
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("login succeeded")

	user.PasswordHash = ""
	httputil.WriteSuccess(w, loginResponse{Token: token, User: *user})
}

func (h *Handlers) rejectLogin(w http.ResponseWriter, reason string) {
	h.logger.Info(reason)
	h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
	httputil.WriteUnauthorized(w, "Invalid email or password")
}

// Me returns the principal reconstructed from the presented token. It reads
// nothing but the token, so a renamed or deleted account still answers with
// the claims minted at login time.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		httputil.WriteUnauthorized(w, "Authorization token missing")
		return
	}
	httputil.WriteSuccess(w, map[string]*auth.Principal{"user": principal})
}
