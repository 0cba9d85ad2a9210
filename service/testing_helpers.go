package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/types"
	"github.com/loganlanou/storefront/storage"
)

const (
	testToken  = "good-token"
	adminToken = "admin-token"
)

var (
	testUser  = &types.User{ID: "u1", Name: "Test User", Email: "test@example.com"}
	testAdmin = &types.User{ID: "a1", Name: "Shop Owner", Email: "owner@example.com", Role: "admin"}
)

// newTestBackend serves the few backend endpoints the route tests reach
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"p1","name":"Ankara Tote","price":1000,"category":"bags"}]`))
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer " + testToken:
			_ = json.NewEncoder(w).Encode(map[string]*types.User{"user": testUser})
		case "Bearer " + adminToken:
			_ = json.NewEncoder(w).Encode(map[string]*types.User{"user": testAdmin})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authorized"}`))
		}
	})
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+adminToken {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Admin access required"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"_id":"o1","orderCode":"ORD-1","total":2200,"status":"pending"}]`))
	})
	mux.HandleFunc("GET /api/address", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"addresses":[]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setupTestService creates a service instance with an in-memory database for testing
func setupTestService(t *testing.T) *Service {
	t.Helper()

	store, cleanup, err := storage.NewTestStorage()
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(cleanup)

	config := &Config{
		Environment:         "test",
		Port:                "8080",
		BaseURL:             "http://localhost:8080",
		HistoryLimit:        20,
		RecommendationLimit: 50,
	}
	config.Backend.URL = newTestBackend(t).URL
	config.Backend.Timeout = 5 * time.Second
	config.Payment.Provider = "backend"

	svc, err := New(store, config)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

// setupTestEcho creates an Echo instance with routes registered
func setupTestEcho(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	e := echo.New()
	svc := setupTestService(t)
	svc.RegisterRoutes(e)

	return e, svc
}

func backendAt(url string) *backend.Client {
	return backend.NewClient(url, time.Second)
}
