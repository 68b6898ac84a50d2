package stages

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/httputil"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/storage"
)

// Handlers serves the stage HTTP API.
type Handlers struct {
	store   *Store
	cache   *storage.StageCache // nil when Redis is not configured
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewHandlers creates the stage handlers. The cache may be nil.
func NewHandlers(store *Store, cache *storage.StageCache, logger *observability.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{store: store, cache: cache, logger: logger, metrics: metrics}
}

// RegisterRoutes registers the stage routes. Every route needs a verified
// principal; mutations additionally need an admin tier.
func (h *Handlers) RegisterRoutes(r *mux.Router, authmw *middleware.AuthMiddleware) {
	adminOnly := middleware.RequireRoles(auth.RoleSuperAdmin, auth.RoleAdmin)

	r.Handle("/stages", authmw.Handler(http.HandlerFunc(h.List))).Methods(http.MethodGet)
	r.Handle("/stages", authmw.Handler(adminOnly(http.HandlerFunc(h.Create)))).Methods(http.MethodPost)
	r.Handle("/stages/{id}", authmw.Handler(adminOnly(http.HandlerFunc(h.Delete)))).Methods(http.MethodDelete)
}

// List returns all stages, through the cache when one is configured. Cache
// errors degrade to a database read.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		var cached []Stage
		hit, err := h.cache.Get(r.Context(), &cached)
		if err != nil {
			h.logger.WithError(err).Warn("stage cache read failed")
		}
		if hit {
			h.metrics.CacheHitsTotal.Inc()
			httputil.WriteSuccess(w, cached)
			return
		}
		h.metrics.CacheMissesTotal.Inc()
	}

	stages, err := h.store.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("stage listing failed")
		httputil.WriteInternalError(w)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), stages); err != nil {
			h.logger.WithError(err).Warn("stage cache write failed")
		}
	}
	httputil.WriteSuccess(w, stages)
}

type createStageRequest struct {
	Name string `json:"name"`
}

// Create adds a pipeline stage and invalidates the cache.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createStageRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "Stage name required")
		return
	}

	stage, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		h.logger.WithError(err).Error("stage creation failed")
		httputil.WriteInternalError(w)
		return
	}

	h.invalidateCache(r)
	httputil.WriteCreated(w, stage)
}

// Delete removes a stage unless leads still reference it.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	switch err := h.store.Delete(r.Context(), id); err {
	case nil:
		h.invalidateCache(r)
		httputil.WriteNoContent(w)
	case ErrStageInUse:
		httputil.WriteBadRequest(w, "Cannot delete stage with existing leads")
	case ErrNotFound:
		httputil.WriteNotFound(w, "Stage not found")
	default:
		h.logger.WithError(err).Error("stage deletion failed")
		httputil.WriteInternalError(w)
	}
}

func (h *Handlers) invalidateCache(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.WithError(err).Warn("stage cache invalidation failed")
	}
}
