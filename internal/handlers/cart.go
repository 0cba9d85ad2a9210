package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/promo"
	"github.com/loganlanou/storefront/internal/session"
)

type CartHandler struct {
	carts   *cart.Registry
	backend *backend.Client
	promos  *promo.Book
}

func NewCartHandler(carts *cart.Registry, backend *backend.Client, promos *promo.Book) *CartHandler {
	return &CartHandler{
		carts:   carts,
		backend: backend,
		promos:  promos,
	}
}

type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Count     int             `json:"count"`
	Subtotal  float64         `json:"subtotal"`
	PromoCode string          `json:"promoCode,omitempty"`
	Discount  float64         `json:"discountAmount"`
	Total     float64         `json:"total"`
}

type lineRequest struct {
	ProductID string            `json:"productId"`
	Variants  map[string]string `json:"variants"`
	Qty       int               `json:"qty"`
}

func (h *CartHandler) snapshot(c echo.Context, s *cart.Store) CartResponse {
	items := s.Items()
	if items == nil {
		items = []cart.LineItem{}
	}

	count := 0
	for _, it := range items {
		count += it.Qty
	}

	state := h.promos.Get(session.ID(c))
	subtotal := s.Subtotal()
	return CartResponse{
		Items:     items,
		Count:     count,
		Subtotal:  subtotal,
		PromoCode: state.Code,
		Discount:  state.Discount,
		Total:     promo.Total(subtotal, state.Discount),
	}
}

// HandleGetCart returns the shopper's cart with totals
func (h *CartHandler) HandleGetCart(c echo.Context) error {
	s := h.carts.Get(c.Request().Context(), ownerFor(c))
	return c.JSON(http.StatusOK, h.snapshot(c, s))
}

// HandleAddItem adds a product to the cart. Price and stock come from the
// catalog, not the request. Quantities over the remaining stock are clamped.
func (h *CartHandler) HandleAddItem(c echo.Context) error {
	var req lineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}
	if req.ProductID == "" {
		return badRequest("Product ID is required")
	}

	ctx := c.Request().Context()
	product, err := h.backend.GetProduct(ctx, req.ProductID)
	if err != nil {
		return backendError(err, "Failed to load product")
	}
	if name, missing := product.MissingVariant(req.Variants); missing {
		return badRequest(fmt.Sprintf("Please select a %s", name))
	}

	s := h.carts.Get(ctx, ownerFor(c))
	added := s.Add(ctx, *product, req.Qty, req.Variants)

	resp := map[string]interface{}{
		"added": added,
		"cart":  h.snapshot(c, s),
	}
	if added == 0 {
		resp["message"] = "No more stock available"
	} else if req.Qty > added {
		resp["message"] = fmt.Sprintf("Only %d more available", added)
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleUpdateItem sets the quantity of an existing line
func (h *CartHandler) HandleUpdateItem(c echo.Context) error {
	var req lineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	ctx := c.Request().Context()
	s := h.carts.Get(ctx, ownerFor(c))
	qty, ok := s.UpdateQty(ctx, req.ProductID, req.Variants, req.Qty)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Item not in cart")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"qty":  qty,
		"cart": h.snapshot(c, s),
	})
}

// HandleRemoveItem deletes a line from the cart
func (h *CartHandler) HandleRemoveItem(c echo.Context) error {
	var req lineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	ctx := c.Request().Context()
	s := h.carts.Get(ctx, ownerFor(c))
	if !s.Remove(ctx, req.ProductID, req.Variants) {
		return echo.NewHTTPError(http.StatusNotFound, "Item not in cart")
	}
	return c.JSON(http.StatusOK, h.snapshot(c, s))
}

// HandleClearCart empties the cart and notifies the session's other tabs
func (h *CartHandler) HandleClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	s := h.carts.Get(ctx, ownerFor(c))
	s.Clear(ctx, false)
	return c.JSON(http.StatusOK, h.snapshot(c, s))
}

// HandleValidateCart reconciles a client's cached cart with the server. The
// client reports how many lines it holds; when the server cart is empty the
// client is told to drop its copy.
func (h *CartHandler) HandleValidateCart(c echo.Context) error {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	ctx := c.Request().Context()
	s := h.carts.Get(ctx, ownerFor(c))
	snap := h.snapshot(c, s)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"should_clear": req.Count > 0 && len(snap.Items) == 0,
		"cart":         snap,
	})
}
