package leads

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/stages"
)

// Handlers serves the lead HTTP API.
type Handlers struct {
	store         *Store
	stageStore    *stages.Store
	notifications *NotificationStore
	logger        *observability.Logger
}

// NewHandlers creates the lead handlers.
func NewHandlers(store *Store, stageStore *stages.Store, notifications *NotificationStore, logger *observability.Logger) *Handlers {
	return &Handlers{store: store, stageStore: stageStore, notifications: notifications, logger: logger}
}

// RegisterRoutes registers the lead routes. Fixed paths are registered before
// the parameterized ones so /leads/stats never matches as an ID.
func (h *Handlers) RegisterRoutes(r *mux.Router, authmw *middleware.AuthMiddleware) {
	protect := func(fn http.HandlerFunc) http.Handler { return authmw.Handler(fn) }

	r.Handle("/leads/stats", protect(h.Stats)).Methods(http.MethodGet)
	r.Handle("/leads/recent", protect(h.Recent)).Methods(http.MethodGet)
	r.Handle("/leads/notifications", protect(h.Notifications)).Methods(http.MethodGet)
	r.Handle("/leads/notifications/read", protect(h.MarkNotificationsRead)).Methods(http.MethodPost)
	r.Handle("/leads", protect(h.Create)).Methods(http.MethodPost)
	r.Handle("/leads", protect(h.List)).Methods(http.MethodGet)
	r.Handle("/leads/{id}", protect(h.Update)).Methods(http.MethodPut)
	r.Handle("/leads/{id}", protect(h.Delete)).Methods(http.MethodDelete)
}

type createLeadRequest struct {
	UserName         string     `json:"userName"`
	CompanyName      string     `json:"companyName"`
	ContactNumber    string     `json:"contactNumber"`
	Email            string     `json:"email"`
	FirstContactedAt *time.Time `json:"firstContactedAt"`
	LastContactedAt  *time.Time `json:"lastContactedAt"`
	StageID          string     `json:"stageId"`
	Comments         string     `json:"comments"`
}

// Create adds a lead. The stage must exist; contact numbers are normalized
// before storage.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserName, "userName") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.CompanyName, "companyName") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	stage, err := h.stageStore.GetByID(r.Context(), req.StageID)
	if err == stages.ErrNotFound {
		httputil.WriteBadRequest(w, "Invalid lead stage")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("stage lookup failed")
		httputil.WriteInternalError(w)
		return
	}

	now := time.Now().UTC()
	lead := &Lead{
		UserName:         req.UserName,
		CompanyName:      req.CompanyName,
		ContactNumber:    NormalizeContactNumber(req.ContactNumber),
		Email:            req.Email,
		FirstContactedAt: now,
		LastContactedAt:  now,
		Comments:         req.Comments,
		Stage:            *stage,
	}
	if req.FirstContactedAt != nil {
		lead.FirstContactedAt = *req.FirstContactedAt
	}
	if req.LastContactedAt != nil {
		lead.LastContactedAt = *req.LastContactedAt
	}

	if err := h.store.Create(r.Context(), lead); err != nil {
		h.logger.WithError(err).Error("lead creation failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteCreated(w, lead)
}

// List returns leads newest first, optionally filtered by stage name via
// ?stage=.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	stageName := httputil.ParseQueryString(r, "stage", "")

	result, err := h.store.List(r.Context(), stageName)
	if err != nil {
		h.logger.WithError(err).Error("lead listing failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, result)
}

type updateLeadRequest struct {
	UserName         *string    `json:"userName"`
	CompanyName      *string    `json:"companyName"`
	ContactNumber    *string    `json:"contactNumber"`
	Email            *string    `json:"email"`
	FirstContactedAt *time.Time `json:"firstContactedAt"`
	LastContactedAt  *time.Time `json:"lastContactedAt"`
	StageID          *string    `json:"stageId"`
	Comments         *string    `json:"comments"`
}

// Update applies a partial update; omitted fields keep their values. A stage
// transition revalidates the target stage.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	lead, err := h.store.GetByID(r.Context(), id)
	if err == ErrNotFound {
		httputil.WriteNotFound(w, "Lead not found")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("lead lookup failed")
		httputil.WriteInternalError(w)
		return
	}

	var req updateLeadRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.UserName != nil {
		lead.UserName = *req.UserName
	}
	if req.CompanyName != nil {
		lead.CompanyName = *req.CompanyName
	}
	if req.ContactNumber != nil {
		lead.ContactNumber = NormalizeContactNumber(*req.ContactNumber)
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.FirstContactedAt != nil {
		lead.FirstContactedAt = *req.FirstContactedAt
	}
	if req.LastContactedAt != nil {
		lead.LastContactedAt = *req.LastContactedAt
	}
	if req.Comments != nil {
		lead.Comments = *req.Comments
	}
	if req.StageID != nil {
		stage, err := h.stageStore.GetByID(r.Context(), *req.StageID)
		if err == stages.ErrNotFound {
			httputil.WriteBadRequest(w, "Invalid lead stage")
			return
		} else if err != nil {
			h.logger.WithError(err).Error("stage lookup failed")
			httputil.WriteInternalError(w)
			return
		}
		lead.Stage = *stage
	}

	if err := h.store.Update(r.Context(), lead); err == ErrNotFound {
		httputil.WriteNotFound(w, "Lead not found")
		return
	} else if err != nil {
		h.logger.WithError(err).Error("lead update failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, lead)
}

// Delete removes a lead.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	switch err := h.store.Delete(r.Context(), id); err {
	case nil:
		httputil.WriteNoContent(w)
	case ErrNotFound:
		httputil.WriteNotFound(w, "Lead not found")
	default:
		h.logger.WithError(err).Error("lead deletion failed")
		httputil.WriteInternalError(w)
	}
}

// Stats returns dashboard counts.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("lead stats failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, stats)
}

// Recent returns the newest leads, capped at 50 per request.
func (h *Handlers) Recent(w http.ResponseWriter, r *http.Request) {
	limit := httputil.ParseQueryInt(r, "limit", 5)
	if limit < 1 || limit > 50 {
		limit = 5
	}

	result, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("recent leads failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, result)
}

// Notifications returns unread stale-lead notifications.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.Unread(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("notification listing failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, notifications)
}

// MarkNotificationsRead clears the unread flag on everything.
func (h *Handlers) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context()); err != nil {
		h.logger.WithError(err).Error("marking notifications read failed")
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Notifications marked as read")
}
