package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/promo"
	"github.com/loganlanou/storefront/internal/session"
)

type PromoHandler struct {
	promos *promo.Book
	carts  *cart.Registry
}

func NewPromoHandler(promos *promo.Book, carts *cart.Registry) *PromoHandler {
	return &PromoHandler{promos: promos, carts: carts}
}

type promoResponse struct {
	promo.State
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
	Message  string  `json:"message,omitempty"`
}

func (h *PromoHandler) response(c echo.Context, state promo.State) promoResponse {
	subtotal := h.carts.Get(c.Request().Context(), ownerFor(c)).Subtotal()
	return promoResponse{
		State:    state,
		Subtotal: subtotal,
		Total:    promo.Total(subtotal, state.Discount),
	}
}

// HandleGetPromo returns the promo applied to this session, if any
func (h *PromoHandler) HandleGetPromo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.response(c, h.promos.Get(session.ID(c))))
}

// HandleApplyPromo validates a code with the backend. A rejected code leaves
// the session with no discount.
func (h *PromoHandler) HandleApplyPromo(c echo.Context) error {
	var req struct {
		PromoCode string `json:"promoCode"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	state, err := h.promos.Apply(c.Request().Context(), session.ID(c), auth.GetToken(c), req.PromoCode)
	if errors.Is(err, promo.ErrEmptyCode) {
		return badRequest("Enter a promo code")
	}
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return badRequest(backend.Message(err, "Invalid promo code"))
		}
		return backendError(err, "Server error while applying promo")
	}

	resp := h.response(c, state)
	resp.Message = fmt.Sprintf("Promo applied! You saved %s", formatAmount(state.Discount))
	return c.JSON(http.StatusOK, resp)
}

// HandleResetPromo drops the session's promo
func (h *PromoHandler) HandleResetPromo(c echo.Context) error {
	h.promos.Reset(session.ID(c))
	return c.JSON(http.StatusOK, h.response(c, promo.State{}))
}

// HandleLeaveCart is called as the shopper navigates away from the cart.
// The promo is kept only when they are heading to checkout.
func (h *PromoHandler) HandleLeaveCart(c echo.Context) error {
	var req struct {
		Next string `json:"next"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	reset := h.promos.Leave(session.ID(c), req.Next)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reset": reset,
		"promo": h.promos.Get(session.ID(c)),
	})
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
