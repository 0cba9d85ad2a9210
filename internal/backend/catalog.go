package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/loganlanou/storefront/internal/types"
)

func (c *Client) ListProducts(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.SubCategory != "" {
		q.Set("subCategory", filter.SubCategory)
	}
	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []types.Product
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	var product types.Product
	if err := c.doRequest(ctx, http.MethodGet, "/api/products/"+escape(id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct is an admin operation; token must belong to an admin.
func (c *Client) CreateProduct(ctx context.Context, token string, p types.Product) (*types.Product, error) {
	var created types.Product
	if err := c.doRequest(ctx, http.MethodPost, "/api/products", token, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Search returns products matching q. A blank query matches nothing.
func (c *Client) Search(ctx context.Context, q string) ([]types.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []types.Product{}, nil
	}
	var products []types.Product
	if err := c.doRequest(ctx, http.MethodGet, "/api/search?q="+url.QueryEscape(q), "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListReviews(ctx context.Context, productID string) ([]types.Review, error) {
	path := "/api/reviews"
	if productID != "" {
		path += "?productId=" + url.QueryEscape(productID)
	}
	var reviews []types.Review
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) CreateReview(ctx context.Context, token string, r types.Review) (*types.Review, error) {
	var created types.Review
	if err := c.doRequest(ctx, http.MethodPost, "/api/reviews", token, r, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
