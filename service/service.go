package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/events"
	"github.com/loganlanou/storefront/internal/handlers"
	"github.com/loganlanou/storefront/internal/history"
	"github.com/loganlanou/storefront/internal/jobs"
	"github.com/loganlanou/storefront/internal/localstore"
	"github.com/loganlanou/storefront/internal/payment"
	"github.com/loganlanou/storefront/internal/promo"
	"github.com/loganlanou/storefront/internal/session"
	"github.com/loganlanou/storefront/internal/types"
	"github.com/loganlanou/storefront/storage"
)

type Service struct {
	storage       *storage.Storage
	config        *Config
	backend       *backend.Client
	bus           *events.Bus
	local         *localstore.Store
	carts         *cart.Registry
	promos        *promo.Book
	authenticator *auth.Authenticator
	pruner        *jobs.GuestCartPruner
	startTime     time.Time

	cartHandler            *handlers.CartHandler
	cartEventsHandler      *handlers.CartEventsHandler
	promoHandler           *handlers.PromoHandler
	catalogHandler         *handlers.CatalogHandler
	recommendationsHandler *handlers.RecommendationsHandler
	checkoutHandler        *handlers.CheckoutHandler
	ordersHandler          *handlers.OrdersHandler
	accountHandler         *handlers.AccountHandler
	adminHandler           *handlers.AdminHandler
}

func New(storage *storage.Storage, config *Config) (*Service, error) {
	client := backend.NewClient(config.Backend.URL, config.Backend.Timeout)

	verifier, err := payment.NewVerifier(config.Payment.Provider, config.Payment.StripeSecretKey, client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment verifier: %w", err)
	}

	bus := events.NewBus()
	local := localstore.New(storage.Queries, bus)
	recorder := history.NewRecorder(local, config.HistoryLimit)

	persister := cart.Router{
		Local:  cart.NewLocalPersister(local),
		Remote: cart.NewRemotePersister(client),
	}
	carts := cart.NewRegistry(persister, cart.Options{
		ImageBaseURL: config.Backend.URL,
		History:      recorder,
		Events:       bus,
	})
	promos := promo.NewBook(client)

	pruner := jobs.NewGuestCartPruner(local, carts, jobs.GuestCartPrunerConfig{
		TTL:          config.Cart.GuestTTL,
		Interval:     config.Cart.PruneInterval,
		IdleEviction: config.Cart.IdleEviction,
	})

	return &Service{
		storage:       storage,
		config:        config,
		backend:       client,
		bus:           bus,
		local:         local,
		carts:         carts,
		promos:        promos,
		authenticator: auth.NewAuthenticator(client),
		pruner:        pruner,
		startTime:     time.Now(),

		cartHandler:            handlers.NewCartHandler(carts, client, promos),
		cartEventsHandler:      handlers.NewCartEventsHandler(bus, carts),
		promoHandler:           handlers.NewPromoHandler(promos, carts),
		catalogHandler:         handlers.NewCatalogHandler(client, recorder),
		recommendationsHandler: handlers.NewRecommendationsHandler(client, recorder, config.RecommendationLimit),
		checkoutHandler:        handlers.NewCheckoutHandler(carts, client, promos, verifier),
		ordersHandler:          handlers.NewOrdersHandler(client, config.BaseURL),
		accountHandler:         handlers.NewAccountHandler(client),
		adminHandler:           handlers.NewAdminHandler(client),
	}, nil
}

// Start launches background jobs. They stop when ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) {
	s.pruner.Start(ctx)
}

func (s *Service) Stop() {
	s.pruner.Stop()
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Health check - no session needed
	e.GET("/health", s.handleHealth)

	// All other routes get a session cookie and optional bearer auth
	withSession := e.Group("")
	withSession.Use(session.Middleware())
	withSession.Use(s.authenticator.Middleware())

	// Pages that need a signed-in shopper redirect guests to the login page
	requireLogin := auth.RequireLogin()
	withSession.GET("/checkout", s.checkoutHandler.HandleCheckoutPage, requireLogin)
	withSession.GET("/orders", s.ordersHandler.HandleListOrders, requireLogin)
	withSession.GET("/wishlist", s.accountHandler.HandleGetWishlist, requireLogin)

	api := withSession.Group("/api")

	// Catalog
	api.GET("/products", s.catalogHandler.HandleListProducts)
	api.GET("/products/:id", s.catalogHandler.HandleGetProduct)
	api.GET("/products/:id/also-like", s.recommendationsHandler.HandleAlsoLike)
	api.GET("/products/:id/reviews", s.catalogHandler.HandleListReviews)
	api.GET("/search", s.catalogHandler.HandleSearch)
	api.GET("/recommendations", s.recommendationsHandler.HandleRecommendations)
	api.GET("/history/viewed", s.catalogHandler.HandleListViewed)
	api.POST("/history/viewed", s.catalogHandler.HandleRecordView)

	// Cart
	api.GET("/cart", s.cartHandler.HandleGetCart)
	api.DELETE("/cart", s.cartHandler.HandleClearCart)
	api.POST("/cart/items", s.cartHandler.HandleAddItem)
	api.PATCH("/cart/items", s.cartHandler.HandleUpdateItem)
	api.DELETE("/cart/items", s.cartHandler.HandleRemoveItem)
	api.POST("/cart/validate", s.cartHandler.HandleValidateCart)
	api.GET("/cart/events", s.cartEventsHandler.HandleStream)

	// Promo codes
	api.GET("/promo", s.promoHandler.HandleGetPromo)
	api.POST("/promo", s.promoHandler.HandleApplyPromo)
	api.DELETE("/promo", s.promoHandler.HandleResetPromo)
	api.POST("/promo/leave", s.promoHandler.HandleLeaveCart)

	// Checkout and orders
	api.POST("/checkout", s.checkoutHandler.HandleCheckout)
	api.GET("/payments/verify", s.checkoutHandler.HandleVerifyPayment)
	api.GET("/orders/track/:code", s.ordersHandler.HandleTrackOrder)
	api.GET("/orders/track/:code/qr.png", s.ordersHandler.HandleTrackingQR)

	// Account - JSON routes answer 401 instead of redirecting
	requireAuth := auth.RequireAPIAuth()
	api.GET("/me", s.accountHandler.HandleMe, requireAuth)
	api.GET("/orders", s.ordersHandler.HandleListOrders, requireAuth)
	api.POST("/products/:id/reviews", s.catalogHandler.HandleCreateReview, requireAuth)
	api.GET("/wishlist", s.accountHandler.HandleGetWishlist, requireAuth)
	api.POST("/wishlist", s.accountHandler.HandleAddToWishlist, requireAuth)
	api.DELETE("/wishlist/:id", s.accountHandler.HandleRemoveFromWishlist, requireAuth)
	api.GET("/address", s.accountHandler.HandleListAddresses, requireAuth)
	api.POST("/address", s.accountHandler.HandleAddAddress, requireAuth)
	api.PUT("/address/:id", s.accountHandler.HandleUpdateAddress, requireAuth)
	api.DELETE("/address/:id", s.accountHandler.HandleDeleteAddress, requireAuth)
	api.GET("/notifications", s.accountHandler.HandleListNotifications, requireAuth)
	api.DELETE("/notifications/:id", s.accountHandler.HandleDeleteNotification, requireAuth)

	// Admin
	requireAdmin := auth.RequireAdmin()
	api.POST("/admin/products", s.adminHandler.HandleCreateProduct, requireAdmin)
	api.GET("/admin/orders", s.adminHandler.HandleListOrders, requireAdmin)
	api.POST("/admin/notifications", s.adminHandler.HandleCreateNotification, requireAdmin)
}

func (s *Service) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := types.HealthStatus{
		Status:      "healthy",
		Environment: s.config.Environment,
		Database:    "connected",
		Backend:     "reachable",
		StartTime:   s.startTime,
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
		GoVersion:   runtime.Version(),
		ActiveCarts: s.carts.Len(),
	}
	code := http.StatusOK

	if err := s.storage.Ping(ctx); err != nil {
		slog.Error("health check: database unreachable", "error", err)
		status.Status = "unhealthy"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if err := s.backend.Ping(ctx); err != nil {
		slog.Warn("health check: backend unreachable", "error", err)
		status.Backend = "unreachable"
		if code == http.StatusOK {
			status.Status = "degraded"
		}
	}

	return c.JSON(code, status)
}
