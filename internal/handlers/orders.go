package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/tracking"
	"github.com/loganlanou/storefront/internal/types"
)

type OrdersHandler struct {
	backend *backend.Client
	baseURL string
}

func NewOrdersHandler(backend *backend.Client, baseURL string) *OrdersHandler {
	return &OrdersHandler{backend: backend, baseURL: baseURL}
}

// HandleListOrders lists the signed-in user's orders
func (h *OrdersHandler) HandleListOrders(c echo.Context) error {
	user, ok := auth.GetUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	orders, err := h.backend.ListOrdersByEmail(c.Request().Context(), auth.GetToken(c), user.Email)
	if err != nil {
		return backendError(err, "Failed to load orders")
	}
	if orders == nil {
		orders = []types.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// HandleTrackOrder looks an order up by its public code
func (h *OrdersHandler) HandleTrackOrder(c echo.Context) error {
	order, err := h.backend.GetOrderByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return backendError(err, "Failed to load order")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order":       order,
		"trackingUrl": tracking.URL(h.baseURL, order.OrderCode),
	})
}

// HandleTrackingQR renders a QR code linking to the order's tracking page
func (h *OrdersHandler) HandleTrackingQR(c echo.Context) error {
	png, err := tracking.QRCode(h.baseURL, c.Param("code"), tracking.DefaultQRSize)
	if err != nil {
		return badRequest("Invalid order code")
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", png)
}
