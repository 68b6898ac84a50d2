package todos

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
)

// Handlers serves the todo HTTP API. Every route requires a verified
// principal; the principal's ID scopes all storage access.
type Handlers struct {
	store  *Store
	logger *observability.Logger
}

// NewHandlers creates the todo handlers.
func NewHandlers(store *Store, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, logger: logger}
}

// RegisterRoutes registers the todo routes.
func (h *Handlers) RegisterRoutes(r *mux.Router, authmw *middleware.AuthMiddleware) {
	protect := func(fn http.HandlerFunc) http.Handler { return authmw.Handler(fn) }

	r.Handle("/todos", protect(h.List)).Methods(http.MethodGet)
	r.Handle("/todos", protect(h.Create)).Methods(http.MethodPost)
	r.Handle("/todos/{id}/toggle", protect(h.Toggle)).Methods(http.MethodPut)
	r.Handle("/todos/{id}", protect(h.Delete)).Methods(http.MethodDelete)
}

// List returns the caller's todos.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	todos, err := h.store.ListByUser(r.Context(), principal.ID)
	if err != nil {
		h.logger.WithError(err).Error("todo listing failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, todos)
}

type createTodoRequest struct {
	Text string `json:"text"`
}

// Create adds a todo for the caller.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req createTodoRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Text == "" {
		httputil.WriteBadRequest(w, "Text is required")
		return
	}

	todo, err := h.store.Create(r.Context(), req.Text, principal.ID)
	if err != nil {
		h.logger.WithError(err).Error("todo creation failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteCreated(w, todo)
}

// Toggle flips a todo's done state.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteNotFound(w, "Todo not found")
		return
	}

	todo, err := h.store.Toggle(r.Context(), id, principal.ID)
	if err == ErrNotFound {
		httputil.WriteNotFound(w, "Todo not found")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("todo toggle failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, todo)
}

// Delete removes a todo.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteNotFound(w, "Todo not found")
		return
	}

	switch err := h.store.Delete(r.Context(), id, principal.ID); err {
	case nil:
		httputil.WriteMessage(w, http.StatusOK, "Todo deleted")
	case ErrNotFound:
		httputil.WriteNotFound(w, "Todo not found")
	default:
		h.logger.WithError(err).Error("todo deletion failed")
		httputil.WriteInternalError(w)
	}
}
