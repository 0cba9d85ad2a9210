package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loganlanou/storefront/internal/session"
	"github.com/loganlanou/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTier1_CriticalPublicRoutes tests that public routes exist and answer guests
func TestTier1_CriticalPublicRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Health check", "GET", "/health", http.StatusOK},

		// Catalog
		{"Product listing", "GET", "/api/products", http.StatusOK},
		{"Recommendations", "GET", "/api/recommendations", http.StatusOK},
		{"Recently viewed", "GET", "/api/history/viewed", http.StatusOK},

		// Cart
		{"Cart", "GET", "/api/cart", http.StatusOK},
		{"Clear cart", "DELETE", "/api/cart", http.StatusOK},
		{"Promo state", "GET", "/api/promo", http.StatusOK},
		{"Reset promo", "DELETE", "/api/promo", http.StatusOK},

		// Orders
		{"Tracking QR", "GET", "/api/orders/track/ORD-1/qr.png", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code,
				"Route %s %s returned %d, expected %d", tt.method, tt.path, rec.Code, tt.wantStatus)
		})
	}
}

// TestTier2_AuthProtectedPages tests that account pages send guests to login
func TestTier2_AuthProtectedPages(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name         string
		path         string
		wantLocation string
	}{
		{"Checkout", "/checkout", "/login?redirect=%2Fcheckout"},
		{"Orders", "/orders", "/login?redirect=%2Forders"},
		{"Wishlist", "/wishlist", "/login?redirect=%2Fwishlist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code,
				"Protected route %s should redirect guests", tt.path)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
		})
	}
}

// TestTier3_APIRoutes tests that account API routes answer 401 rather than redirecting
func TestTier3_APIRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"Me", "GET", "/api/me"},
		{"Orders", "GET", "/api/orders"},
		{"Wishlist", "GET", "/api/wishlist"},
		{"Add to wishlist", "POST", "/api/wishlist"},
		{"Addresses", "GET", "/api/address"},
		{"Delete address", "DELETE", "/api/address/a1"},
		{"Notifications", "GET", "/api/notifications"},
		{"Write review", "POST", "/api/products/p1/reviews"},
		{"Admin create product", "POST", "/api/admin/products"},
		{"Admin orders", "GET", "/api/admin/orders"},
		{"Admin notify", "POST", "/api/admin/notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code,
				"Route %s %s should require authentication", tt.method, tt.path)
		})
	}
}

func TestAuthenticatedAPIRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name string
		path string
	}{
		{"Me", "/api/me"},
		{"Addresses", "/api/address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+testToken)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminRoutesForbidShoppers(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/admin/products"},
		{"GET", "/api/admin/orders"},
		{"POST", "/api/admin/notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+testToken)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestAdminOrdersForAdmin(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var orders []types.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1", orders[0].OrderCode)
	assert.Equal(t, 2200.0, orders[0].Total)
}

func TestRejectedTokenContinuesAsGuest(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionCookieIssued(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	found := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			found = true
			assert.True(t, cookie.HttpOnly)
			assert.NotEmpty(t, cookie.Value)
		}
	}
	assert.True(t, found, "expected a session cookie")
}

func TestGuestCartFollowsSessionCookie(t *testing.T) {
	e, svc := setupTestEcho(t)

	// first request issues the cookie
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, svc.carts.Len(), "both requests should share one cart")
}

func TestHealthReport(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status types.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "test", status.Environment)
	assert.Equal(t, "connected", status.Database)
	assert.Equal(t, "reachable", status.Backend)
	assert.True(t, strings.HasPrefix(status.GoVersion, "go"))
}

func TestHealthReportsBackendOutage(t *testing.T) {
	e, svc := setupTestEcho(t)
	svc.backend = backendAt("http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"backend":"unreachable"`)
}

// TestNonExistentRoute tests that 404 is returned for non-existent routes
func TestNonExistentRoute(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name string
		path string
	}{
		{"Random path", "/this-does-not-exist"},
		{"Unknown API path", "/api/nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code,
				"Non-existent route %s should return 404", tt.path)
		})
	}
}

func TestStartStop(t *testing.T) {
	svc := setupTestService(t)

	svc.Start(t.Context())
	svc.Stop()
}
