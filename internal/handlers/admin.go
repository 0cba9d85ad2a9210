package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/types"
)

// AdminHandler serves the shop owner's catalog, order and notification
// tools. Every route sits behind auth.RequireAdmin and the backend checks the
// admin's token again.
type AdminHandler struct {
	backend *backend.Client
}

func NewAdminHandler(backend *backend.Client) *AdminHandler {
	return &AdminHandler{backend: backend}
}

func (h *AdminHandler) HandleCreateProduct(c echo.Context) error {
	var p types.Product
	if err := c.Bind(&p); err != nil {
		return badRequest("Invalid product data")
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.SubCategory = strings.TrimSpace(p.SubCategory)
	if p.Name == "" || p.Category == "" {
		return badRequest("Name and category are required")
	}
	if p.Price <= 0 {
		return badRequest("Price must be greater than zero")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return badRequest("Stock cannot be negative")
	}

	created, err := h.backend.CreateProduct(c.Request().Context(), auth.GetToken(c), p)
	if err != nil {
		return backendError(err, "Failed to create product")
	}

	adminID := ""
	if user, ok := auth.GetUser(c); ok {
		adminID = user.ID
	}
	slog.Info("product created", "product_id", created.ID, "name", created.Name, "admin_id", adminID)
	return c.JSON(http.StatusCreated, created)
}

// HandleListOrders lists every order, optionally only those with ?status=.
func (h *AdminHandler) HandleListOrders(c echo.Context) error {
	orders, err := h.backend.ListOrders(c.Request().Context(), auth.GetToken(c))
	if err != nil {
		return backendError(err, "Failed to load orders")
	}

	status := strings.TrimSpace(c.QueryParam("status"))
	filtered := make([]types.Order, 0, len(orders))
	for _, o := range orders {
		if status == "" || strings.EqualFold(o.Status, status) {
			filtered = append(filtered, o)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}

func (h *AdminHandler) HandleCreateNotification(c echo.Context) error {
	var n types.Notification
	if err := c.Bind(&n); err != nil {
		return badRequest("Invalid notification")
	}

	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if n.Title == "" || n.Message == "" {
		return badRequest("Title and message are required")
	}
	n.Read = false

	created, err := h.backend.CreateNotification(c.Request().Context(), auth.GetToken(c), n)
	if err != nil {
		return backendError(err, "Failed to send notification")
	}
	return c.JSON(http.StatusCreated, created)
}
