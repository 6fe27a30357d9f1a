package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callback-registry-api/internal/auth"
	"callback-registry-api/internal/database"
	"callback-registry-api/internal/journal"
	"callback-registry-api/internal/middleware"
	"callback-registry-api/internal/registry"
	"callback-registry-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(t *testing.T, reg *registry.Registry) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.GET("/callbacks", ListCallbacks(reg))
	api.DELETE("/callbacks/:key", DeleteCallback(reg))
	api.GET("/journal", GetJournal)
	api.GET("/stats", GetStats)

	token, err := auth.GenerateToken("alice")
	require.NoError(t, err)
	return r, token
}

func noop(req *registry.Request, args ...any) (registry.Fields, error) {
	return registry.Fields{"content": "ok"}, nil
}

func TestListCallbacks(t *testing.T) {
	reg := registry.New(registry.Config{}, nil)
	r, token := newAdminRouter(t, reg)

	reg.Emit(noop, registry.Descriptor{}, registry.Options{Key: "a", Count: 3})
	reg.Emit(noop, registry.Descriptor{}, registry.Options{Key: "b"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/callbacks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Callbacks []registry.EntryInfo `json:"callbacks"`
		Count     int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "a", resp.Callbacks[0].Key)
	require.Equal(t, 3, resp.Callbacks[0].Count)
}

func TestDeleteCallback(t *testing.T) {
	reg := registry.New(registry.Config{}, nil)
	r, token := newAdminRouter(t, reg)

	reg.Emit(noop, registry.Descriptor{}, registry.Options{Key: "doomed", Count: 5})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/callbacks/doomed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, reg.Len())

	// Deleting again is a 404.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/callbacks/doomed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCallbacks_Unauthorized(t *testing.T) {
	reg := registry.New(registry.Config{}, nil)
	r, _ := newAdminRouter(t, reg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/callbacks", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetJournal_PaginationAndFilter(t *testing.T) {
	reg := registry.New(registry.Config{}, nil)
	r, token := newAdminRouter(t, reg)

	rec := journal.NewRecorder(database.GetDB())
	at := time.Now()
	rec.Record(registry.Event{Type: registry.EventRegistered, Key: "k-1", At: at})
	rec.Record(registry.Event{Type: registry.EventInvoked, Key: "k-1", At: at})
	rec.Record(registry.Event{Type: registry.EventRegistered, Key: "k-2", At: at})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journal?limit=2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int   `json:"count"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, int64(3), resp.Total)

	// Filter by event type.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/journal?event=registered", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
}

func TestGetStats(t *testing.T) {
	reg := registry.New(registry.Config{}, nil)
	r, token := newAdminRouter(t, reg)

	rec := journal.NewRecorder(database.GetDB())
	at := time.Now()
	rec.Record(registry.Event{Type: registry.EventRegistered, Key: "k-1", At: at})
	rec.Record(registry.Event{Type: registry.EventInvoked, Key: "k-1", At: at})
	rec.Record(registry.Event{Type: registry.EventExhausted, Key: "k-1", At: at})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp["registered"])
	require.Equal(t, int64(1), resp["invoked"])
	require.Equal(t, int64(1), resp["exhausted"])
	require.Equal(t, int64(0), resp["expired"])
	require.Equal(t, int64(3), resp["total"])
}
