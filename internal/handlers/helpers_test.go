package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/internal/history"
	"github.com/loganlanou/storefront/internal/localstore"
	"github.com/loganlanou/storefront/internal/payment"
	"github.com/loganlanou/storefront/internal/promo"
	"github.com/loganlanou/storefront/internal/types"
	"github.com/stretchr/testify/require"
)

const (
	testSession = "9b2f6f64-6f0e-4f57-9d43-3f0a7d1a4c11"
	testToken   = "token-u1"
	adminToken  = "token-admin"
)

var (
	testUser  = &types.User{ID: "u1", Name: "Ada Obi", Email: "ada@example.com"}
	testAdmin = &types.User{ID: "admin1", Name: "Shop Owner", Email: "owner@example.com", Role: "admin"}
)

func intPtr(n int) *int { return &n }

// fakeBackend stands in for the storefront REST backend.
type fakeBackend struct {
	mu        sync.Mutex
	mux       *http.ServeMux
	products  []types.Product
	promos    map[string]float64
	orders    []types.OrderRequest
	orderErr  string
	wishlist  []string
	carts     map[string]json.RawMessage
	payments  map[string]types.PaymentVerification
	addresses []types.Address
	notes     []types.Notification
	failAll   bool
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{
		mux:      http.NewServeMux(),
		promos:   map[string]float64{},
		carts:    map[string]json.RawMessage{},
		payments: map[string]types.PaymentVerification{},
	}

	f.mux.HandleFunc("GET /api/products", f.listProducts)
	f.mux.HandleFunc("GET /api/products/{id}", f.getProduct)
	f.mux.HandleFunc("GET /api/search", f.search)
	f.mux.HandleFunc("POST /api/promocodes/apply", f.applyPromo)
	f.mux.HandleFunc("POST /api/orders", f.createOrder)
	f.mux.HandleFunc("GET /api/orders/code/{code}", f.orderByCode)
	f.mux.HandleFunc("GET /api/orders/user/{email}", f.ordersByEmail)
	f.mux.HandleFunc("GET /api/users/me", f.me)
	f.mux.HandleFunc("GET /api/wishlist", f.getWishlist)
	f.mux.HandleFunc("POST /api/wishlist", f.addWishlist)
	f.mux.HandleFunc("DELETE /api/wishlist/{id}", f.removeWishlist)
	f.mux.HandleFunc("GET /api/cart/{userId}", f.getCart)
	f.mux.HandleFunc("PUT /api/cart/{userId}", f.putCart)
	f.mux.HandleFunc("GET /api/payments/verify", f.verifyPayment)
	f.mux.HandleFunc("GET /api/address", f.listAddresses)
	f.mux.HandleFunc("POST /api/address", f.addAddress)
	f.mux.HandleFunc("POST /api/products", f.createProduct)
	f.mux.HandleFunc("GET /api/orders", f.listOrders)
	f.mux.HandleFunc("POST /api/notifications", f.createNotification)
	f.mux.HandleFunc("GET /api/reviews", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []types.Review{})
	})
	return f
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	fail := f.failAll
	f.mu.Unlock()
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
		return
	}
	f.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func isAdminRequest(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+adminToken
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, map[string]string{"message": "Admin access required"})
}

func (f *fakeBackend) product(id string) (types.Product, bool) {
	for _, p := range f.products {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

func (f *fakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category := r.URL.Query().Get("category")
	out := []types.Product{}
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.product(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (f *fakeBackend) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(r.URL.Query().Get("q"))
	out := []types.Product{}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) applyPromo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PromoCode string `json:"promoCode"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	amount, ok := f.promos[req.PromoCode]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid promo code"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"amount": amount})
}

func (f *fakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var req types.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad order"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": f.orderErr})
		return
	}
	f.orders = append(f.orders, req)
	writeJSON(w, http.StatusCreated, types.OrderConfirmation{OrderCode: fmt.Sprintf("ORD-%d", len(f.orders))})
}

func (f *fakeBackend) orderByCode(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code := r.PathValue("code")
	for i, o := range f.orders {
		if fmt.Sprintf("ORD-%d", i+1) == code {
			writeJSON(w, http.StatusOK, types.Order{OrderCode: code, Items: o.Items, Total: o.Total, Status: "pending"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
}

func (f *fakeBackend) ordersByEmail(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Order{}
	for i, o := range f.orders {
		if o.CustomerEmail == r.PathValue("email") {
			out = append(out, types.Order{OrderCode: fmt.Sprintf("ORD-%d", i+1), Total: o.Total})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) createProduct(w http.ResponseWriter, r *http.Request) {
	if !isAdminRequest(r) {
		forbidden(w)
		return
	}
	var p types.Product
	_ = json.NewDecoder(r.Body).Decode(&p)

	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = fmt.Sprintf("new-%d", len(f.products)+1)
	f.products = append(f.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (f *fakeBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	if !isAdminRequest(r) {
		forbidden(w)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Order{}
	for i, o := range f.orders {
		out = append(out, types.Order{
			OrderCode:     fmt.Sprintf("ORD-%d", i+1),
			Total:         o.Total,
			Status:        "pending",
			CustomerEmail: o.CustomerEmail,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) createNotification(w http.ResponseWriter, r *http.Request) {
	if !isAdminRequest(r) {
		forbidden(w)
		return
	}
	var n types.Notification
	_ = json.NewDecoder(r.Body).Decode(&n)

	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = fmt.Sprintf("n%d", len(f.notes)+1)
	f.notes = append(f.notes, n)
	writeJSON(w, http.StatusCreated, n)
}

func (f *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": testUser})
}

func (f *fakeBackend) wishlistBody() map[string]interface{} {
	out := []types.Product{}
	for _, id := range f.wishlist {
		if p, ok := f.product(id); ok {
			out = append(out, p)
		}
	}
	return map[string]interface{}{"success": true, "wishlist": out}
}

func (f *fakeBackend) getWishlist(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.wishlistBody())
}

func (f *fakeBackend) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.product(req.ProductID); !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "Product not found"})
		return
	}
	f.wishlist = append(f.wishlist, req.ProductID)
	writeJSON(w, http.StatusOK, f.wishlistBody())
}

func (f *fakeBackend) removeWishlist(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	kept := f.wishlist[:0]
	for _, pid := range f.wishlist {
		if pid != id {
			kept = append(kept, pid)
		}
	}
	f.wishlist = kept
	writeJSON(w, http.StatusOK, f.wishlistBody())
}

func (f *fakeBackend) getCart(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.carts[r.PathValue("userId")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cart not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"cart": raw})
}

func (f *fakeBackend) putCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cart json.RawMessage `json:"cart"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.carts[r.PathValue("userId")] = req.Cart
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (f *fakeBackend) verifyPayment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.payments[r.URL.Query().Get("reference")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Payment not successful"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (f *fakeBackend) listAddresses(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"addresses": f.addresses})
}

func (f *fakeBackend) addAddress(w http.ResponseWriter, r *http.Request) {
	var a types.Address
	_ = json.NewDecoder(r.Body).Decode(&a)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, a)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"addresses": f.addresses})
}

func (f *fakeBackend) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// testEnv wires the handlers' dependencies against a fake backend and an
// in-memory database.
type testEnv struct {
	fake    *fakeBackend
	client  *backend.Client
	bus     *events.Bus
	local   *localstore.Store
	history *history.Recorder
	carts   *cart.Registry
	promos  *promo.Book
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fake := newFakeBackend()
	fake.products = []types.Product{
		{ID: "p1", Name: "Ankara Tote", Price: 1000, Category: "bags", SubCategory: "totes", Stock: intPtr(5)},
		{ID: "p2", Name: "Beaded Clutch", Price: 500, Category: "bags", SubCategory: "clutches"},
		{ID: "p3", Name: "Linen Shirt", Price: 2500, Category: "clothing", SubCategory: "shirts"},
		{ID: "p4", Name: "Leather Sandals", Price: 1800, Category: "shoes", SubCategory: "sandals",
			Variants: []types.Variant{{Name: "size", Options: []string{"40", "41", "42"}}}, Stock: intPtr(4)},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	_, queries, cleanup := NewTestDB()
	t.Cleanup(cleanup)

	bus := events.NewBus()
	local := localstore.New(queries, bus)
	recorder := history.NewRecorder(local, history.DefaultLimit)
	client := backend.NewClient(srv.URL, 5*time.Second)

	persister := cart.Router{
		Local:  cart.NewLocalPersister(local),
		Remote: cart.NewRemotePersister(client),
	}
	carts := cart.NewRegistry(persister, cart.Options{
		ImageBaseURL: srv.URL,
		History:      recorder,
		Events:       bus,
	})

	return &testEnv{
		fake:    fake,
		client:  client,
		bus:     bus,
		local:   local,
		history: recorder,
		carts:   carts,
		promos:  promo.NewBook(client),
	}
}

func (env *testEnv) guestCart(t *testing.T) *cart.Store {
	t.Helper()
	return env.carts.Get(t.Context(), cart.Owner{SessionID: testSession})
}

func (env *testEnv) cartHandler() *CartHandler {
	return NewCartHandler(env.carts, env.client, env.promos)
}

func (env *testEnv) checkoutHandler() *CheckoutHandler {
	return NewCheckoutHandler(env.carts, env.client, env.promos, payment.NewBackendVerifier(env.client))
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
	return he
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func ownerForUser() cart.Owner {
	return cart.Owner{SessionID: testSession, UserID: testUser.ID, Token: testToken}
}
