package users

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
)

// Handlers serves the user directory HTTP API.
type Handlers struct {
	store  *Store
	logger *observability.Logger
}

// NewHandlers creates the user directory handlers.
func NewHandlers(store *Store, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// RegisterRoutes registers the directory routes. The by-email lookup is
// unauthenticated: it is the internal resolution path the auth service calls
// before any token exists, and it must stay unreachable from outside the
// deployment network. User creation requires a verified principal.
func (h *Handlers) RegisterRoutes(r *mux.Router, authmw *middleware.AuthMiddleware) {
	r.HandleFunc("/users/by-email/{email}", h.GetByEmail).Methods(http.MethodGet)
	r.Handle("/users", authmw.Handler(http.HandlerFunc(h.CreateUser))).Methods(http.MethodPost)
}

// GetByEmail returns the full credential record, password hash included.
// Only the auth service calls this.
func (h *Handlers) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := httputil.ParsePathStringOrError(w, r, "email")
	if !ok {
		return
	}

	user, err := h.store.GetByEmail(r.Context(), email)
	if err == ErrNotFound {
		httputil.WriteNotFound(w, "User not found")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("user lookup failed")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, user)
}

type createUserRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// CreateUser creates an account. The creation permission table decides which
// roles the caller may create; a disallowed pairing is a 403 regardless of
// whether the caller could create some other role.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	if principal == nil {
		httputil.WriteUnauthorized(w, "Authorization token missing")
		return
	}

	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "Name") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "Email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "Password") {
		return
	}
	if !req.Role.Valid() {
		httputil.WriteBadRequest(w, "Invalid role")
		return
	}

	if !auth.CanCreate(principal.Role, req.Role) {
		httputil.WriteForbidden(w, "You are not allowed to create this user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.WithError(err).Error("password hashing failed")
		httputil.WriteInternalError(w)
		return
	}

	user, err := h.store.Create(r.Context(), req.Name, req.Email, string(hash), req.Role)
	if err == ErrEmailTaken {
		httputil.WriteConflict(w, "Email already in use")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("user creation failed")
		httputil.WriteInternalError(w)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
		"creator": principal.ID,
	}).Info("user created")

	user.PasswordHash = ""
	httputil.WriteCreated(w, user)
}
