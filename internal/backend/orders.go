package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/loganlanou/storefront/internal/types"
)

func (c *Client) CreateOrder(ctx context.Context, token string, req types.OrderRequest) (*types.OrderConfirmation, error) {
	var conf types.OrderConfirmation
	if err := c.doRequest(ctx, http.MethodPost, "/api/orders", token, req, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]types.Order, error) {
	var orders []types.Order
	if err := c.doRequest(ctx, http.MethodGet, "/api/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrderByCode(ctx context.Context, code string) (*types.Order, error) {
	var order types.Order
	if err := c.doRequest(ctx, http.MethodGet, "/api/orders/code/"+escape(code), "", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrdersByEmail(ctx context.Context, token, email string) ([]types.Order, error) {
	var orders []types.Order
	if err := c.doRequest(ctx, http.MethodGet, "/api/orders/user/"+escape(email), token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ApplyPromo asks the backend to validate code and returns the discount
// amount it grants. The code is sent upper-cased.
func (c *Client) ApplyPromo(ctx context.Context, token, code string) (float64, error) {
	req := struct {
		PromoCode string `json:"promoCode"`
	}{PromoCode: strings.ToUpper(strings.TrimSpace(code))}

	var resp struct {
		Amount float64 `json:"amount"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/promocodes/apply", token, req, &resp); err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

// VerifyPayment asks the backend to confirm a payment by its provider
// reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*types.PaymentVerification, error) {
	var v types.PaymentVerification
	path := "/api/payments/verify?reference=" + url.QueryEscape(reference)
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &v); err != nil {
		return nil, err
	}
	if v.Reference == "" {
		v.Reference = reference
	}
	return &v, nil
}
