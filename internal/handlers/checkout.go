package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/cart"
	"github.com/loganlanou/storefront/internal/payment"
	"github.com/loganlanou/storefront/internal/promo"
	"github.com/loganlanou/storefront/internal/session"
	"github.com/loganlanou/storefront/internal/types"
)

type CheckoutHandler struct {
	carts    *cart.Registry
	backend  *backend.Client
	promos   *promo.Book
	verifier payment.Verifier
}

func NewCheckoutHandler(carts *cart.Registry, backend *backend.Client, promos *promo.Book, verifier payment.Verifier) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		backend:  backend,
		promos:   promos,
		verifier: verifier,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type CheckoutRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	ShippingAddress string         `json:"shippingAddress"`
	NewAddress      *types.Address `json:"newAddress,omitempty"`
}

// HandleCheckout places an order for the cart's contents at the discounted
// total. On success the ordered products go into the session's history, the
// cart is cleared and the promo is reset.
func (h *CheckoutHandler) HandleCheckout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request")
	}

	ctx := c.Request().Context()
	sessionID := session.ID(c)
	token := auth.GetToken(c)
	store := h.carts.Get(ctx, ownerFor(c))

	items := store.Items()
	if len(items) == 0 {
		return badRequest("Your cart is empty")
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if user, ok := auth.GetUser(c); ok {
		if req.CustomerName == "" {
			req.CustomerName = user.Name
		}
		if req.CustomerEmail == "" {
			req.CustomerEmail = user.Email
		}
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return badRequest("Please enter your name and email")
	}
	if !emailPattern.MatchString(req.CustomerEmail) {
		return badRequest("Please enter a valid email address")
	}
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if req.CustomerPhone == "" {
		return badRequest("Please enter your phone number")
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if req.NewAddress != nil {
		if !req.NewAddress.Complete() {
			return badRequest("Please complete the new address form")
		}
		if auth.IsAuthenticated(c) {
			if _, err := h.backend.AddAddress(ctx, token, *req.NewAddress); err != nil {
				return backendError(err, "Failed to save address")
			}
		}
		address = req.NewAddress.String()
	}
	if address == "" {
		return badRequest("Please enter a shipping address")
	}

	state := h.promos.Get(sessionID)
	orderItems := make([]types.OrderItem, 0, len(items))
	for _, it := range items {
		variants := it.Variants
		if variants == nil {
			variants = map[string]string{}
		}
		orderItems = append(orderItems, types.OrderItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Qty:         it.Qty,
			Variants:    variants,
			Image:       it.Image,
			Category:    it.Category,
			SubCategory: it.SubCategory,
		})
	}

	order := types.OrderRequest{
		Items:           orderItems,
		Total:           promo.Total(store.Subtotal(), state.Discount),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: address,
		PromoCode:       strings.ToUpper(state.Code),
	}

	conf, err := h.backend.CreateOrder(ctx, token, order)
	if err != nil {
		return backendError(err, "Order failed")
	}

	store.CheckoutSuccess(ctx, &types.Order{
		OrderCode:       conf.OrderCode,
		Items:           orderItems,
		Total:           order.Total,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
	})
	h.promos.Reset(sessionID)

	slog.Info("order placed", "order_code", conf.OrderCode, "session_id", sessionID, "items", len(orderItems), "total", order.Total)

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"orderCode": conf.OrderCode,
		"total":     order.Total,
	})
}

// HandleVerifyPayment confirms a payment after the provider redirects the
// shopper back. A verified payment clears the cart.
func (h *CheckoutHandler) HandleVerifyPayment(c echo.Context) error {
	reference := strings.TrimSpace(c.QueryParam("reference"))
	if reference == "" {
		return badRequest("Awaiting payment reference")
	}

	ctx := c.Request().Context()
	res, err := h.verifier.Verify(ctx, reference)
	if err != nil {
		slog.Warn("payment verification failed", "reference", reference, "error", err)
		var apiErr *backend.APIError
		if errors.Is(err, payment.ErrNotVerified) || errors.As(err, &apiErr) {
			return echo.NewHTTPError(http.StatusPaymentRequired, backend.Message(err, "Payment verification failed"))
		}
		return echo.NewHTTPError(http.StatusBadGateway, "Payment verification failed")
	}

	h.carts.Get(ctx, ownerFor(c)).Clear(ctx, false)
	h.promos.Reset(session.ID(c))

	return c.JSON(http.StatusOK, res)
}

// HandleCheckoutPage returns what the checkout page needs: the cart with the
// promo applied and the user's saved addresses.
func (h *CheckoutHandler) HandleCheckoutPage(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.carts.Get(ctx, ownerFor(c))
	sessionID := session.ID(c)
	state := h.promos.Get(sessionID)

	// A code whose discount was lost is checked again before the total is shown.
	if state.Code != "" && state.Discount == 0 {
		revalidated, err := h.promos.Apply(ctx, sessionID, auth.GetToken(c), state.Code)
		if err != nil {
			slog.Warn("stored promo no longer applies", "code", state.Code, "session_id", sessionID, "error", err)
		}
		state = revalidated
	}

	addresses, err := h.backend.ListAddresses(ctx, auth.GetToken(c))
	if err != nil {
		slog.Warn("failed to load addresses for checkout", "error", err)
	}
	if addresses == nil {
		addresses = []types.Address{}
	}

	items := store.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	subtotal := store.Subtotal()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":          items,
		"subtotal":       subtotal,
		"promoCode":      state.Code,
		"discountAmount": state.Discount,
		"total":          promo.Total(subtotal, state.Discount),
		"addresses":      addresses,
	})
}
