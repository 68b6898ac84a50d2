package stages

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflow/leadflow/pkg/auth"
	"github.com/leadflow/leadflow/pkg/middleware"
	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/storage"
)

const testSecret = "stage-test-secret"

func setupHandlers(t *testing.T, withCache bool) (*mux.Router, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var cache *storage.StageCache
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cache = storage.NewStageCacheWithClient(client, time.Minute)
		t.Cleanup(func() { cache.Close() })
	}

	logger := observability.NewLogger("lead-service", observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics("lead-service")
	handlers := NewHandlers(NewStore(db), cache, logger, metrics)

	r := mux.NewRouter()
	handlers.RegisterRoutes(r, middleware.NewAuthMiddleware(auth.NewVerifier(testSecret)))
	return r, mock, mr
}

func tokenFor(t *testing.T, role auth.Role) string {
	t.Helper()
	issuer := auth.NewIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(&auth.User{ID: "actor-1", Email: "actor@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func do(router *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func stageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name"}).
		AddRow("s-1", "Lead Capture").
		AddRow("s-2", "Lead Generation")
}

func TestListRequiresToken(t *testing.T) {
	router, _, _ := setupHandlers(t, false)

	rec := do(router, http.MethodGet, "/stages", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAllowsAnyRole(t *testing.T) {
	router, mock, _ := setupHandlers(t, false)

	mock.ExpectQuery("SELECT id, name FROM lead_stages").WillReturnRows(stageRows())

	rec := do(router, http.MethodGet, "/stages", tokenFor(t, auth.RoleUser), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead Capture")
}

func TestListCachesResult(t *testing.T) {
	router, mock, mr := setupHandlers(t, true)

	// First call misses the cache and hits the database.
	mock.ExpectQuery("SELECT id, name FROM lead_stages").WillReturnRows(stageRows())

	token := tokenFor(t, auth.RoleUser)
	rec := do(router, http.MethodGet, "/stages", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("stages:all"))

	// Second call is served from Redis; no further query is expected.
	rec = do(router, http.MethodGet, "/stages", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead Generation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForbiddenForUserRole(t *testing.T) {
	router, _, _ := setupHandlers(t, false)

	rec := do(router, http.MethodPost, "/stages", tokenFor(t, auth.RoleUser), `{"name":"New Stage"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Access denied"}`, rec.Body.String())
}

func TestCreateRequiresName(t *testing.T) {
	router, _, _ := setupHandlers(t, false)

	rec := do(router, http.MethodPost, "/stages", tokenFor(t, auth.RoleAdmin), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Stage name required"}`, rec.Body.String())
}

func TestCreateInvalidatesCache(t *testing.T) {
	router, mock, mr := setupHandlers(t, true)
	require.NoError(t, mr.Set("stages:all", `[{"id":"s-1","name":"Lead Capture"}]`))

	mock.ExpectExec("INSERT INTO lead_stages").
		WithArgs(sqlmock.AnyArg(), "Negotiation").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := do(router, http.MethodPost, "/stages", tokenFor(t, auth.RoleSuperAdmin), `{"name":"Negotiation"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, mr.Exists("stages:all"))
}

func TestDeleteStageInUse(t *testing.T) {
	router, mock, _ := setupHandlers(t, false)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rec := do(router, http.MethodDelete, "/stages/s-1", tokenFor(t, auth.RoleAdmin), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Cannot delete stage with existing leads"}`, rec.Body.String())
}

func TestDeleteStageNotFound(t *testing.T) {
	router, mock, _ := setupHandlers(t, false)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM lead_stages").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := do(router, http.MethodDelete, "/stages/missing", tokenFor(t, auth.RoleAdmin), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Stage not found"}`, rec.Body.String())
}

func TestDeleteStageInvalidatesCache(t *testing.T) {
	router, mock, mr := setupHandlers(t, true)
	require.NoError(t, mr.Set("stages:all", `[{"id":"s-1","name":"Lead Capture"}]`))

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM leads WHERE stage_id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM lead_stages").
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := do(router, http.MethodDelete, "/stages/s-1", tokenFor(t, auth.RoleSuperAdmin), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mr.Exists("stages:all"))
}
