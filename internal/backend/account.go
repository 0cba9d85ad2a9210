package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/loganlanou/storefront/internal/types"
)

// CurrentUser resolves the user a bearer token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*types.User, error) {
	var resp struct {
		User *types.User `json:"user"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/users/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "Invalid session"}
	}
	return resp.User, nil
}

type addressesResponse struct {
	Addresses []types.Address `json:"addresses"`
}

func (c *Client) ListAddresses(ctx context.Context, token string) ([]types.Address, error) {
	var resp addressesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/address", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

func (c *Client) AddAddress(ctx context.Context, token string, a types.Address) ([]types.Address, error) {
	var resp addressesResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/address", token, a, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

func (c *Client) UpdateAddress(ctx context.Context, token, id string, a types.Address) ([]types.Address, error) {
	var resp addressesResponse
	if err := c.doRequest(ctx, http.MethodPut, "/api/address/"+escape(id), token, a, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

func (c *Client) DeleteAddress(ctx context.Context, token, id string) ([]types.Address, error) {
	var resp addressesResponse
	if err := c.doRequest(ctx, http.MethodDelete, "/api/address/"+escape(id), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

type wishlistResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Wishlist []types.Product `json:"wishlist"`
}

func (c *Client) wishlist(ctx context.Context, method, path, token string, in any) ([]types.Product, error) {
	var resp wishlistResponse
	if err := c.doRequest(ctx, method, path, token, in, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Message}
	}
	return resp.Wishlist, nil
}

func (c *Client) GetWishlist(ctx context.Context, token string) ([]types.Product, error) {
	return c.wishlist(ctx, http.MethodGet, "/api/wishlist", token, nil)
}

func (c *Client) AddToWishlist(ctx context.Context, token, productID string) ([]types.Product, error) {
	req := struct {
		ProductID string `json:"productId"`
	}{ProductID: productID}
	return c.wishlist(ctx, http.MethodPost, "/api/wishlist", token, req)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) ([]types.Product, error) {
	return c.wishlist(ctx, http.MethodDelete, "/api/wishlist/"+escape(productID), token, nil)
}

func (c *Client) ListNotifications(ctx context.Context, token string) ([]types.Notification, error) {
	var notes []types.Notification
	if err := c.doRequest(ctx, http.MethodGet, "/api/notifications", token, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNotification(ctx context.Context, token string, n types.Notification) (*types.Notification, error) {
	var created types.Notification
	if err := c.doRequest(ctx, http.MethodPost, "/api/notifications", token, n, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteNotification(ctx context.Context, token, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/notifications/"+escape(id), token, nil, nil)
}

// GetCart loads the raw cart stored for an authenticated user.
func (c *Client) GetCart(ctx context.Context, token, userID string) (json.RawMessage, error) {
	var resp struct {
		Cart json.RawMessage `json:"cart"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/cart/"+escape(userID), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// PutCart replaces the cart stored for an authenticated user.
func (c *Client) PutCart(ctx context.Context, token, userID string, cart any) error {
	req := struct {
		Cart any `json:"cart"`
	}{Cart: cart}
	return c.doRequest(ctx, http.MethodPut, "/api/cart/"+escape(userID), token, req, nil)
}
