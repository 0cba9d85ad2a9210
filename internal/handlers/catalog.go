package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/history"
	"github.com/loganlanou/storefront/internal/session"
	"github.com/loganlanou/storefront/internal/types"
)

type CatalogHandler struct {
	backend *backend.Client
	history *history.Recorder
}

func NewCatalogHandler(backend *backend.Client, history *history.Recorder) *CatalogHandler {
	return &CatalogHandler{backend: backend, history: history}
}

// HandleListProducts lists the catalog, optionally filtered by category
func (h *CatalogHandler) HandleListProducts(c echo.Context) error {
	products, err := h.backend.ListProducts(c.Request().Context(), types.ProductFilter{
		Category:    c.QueryParam("category"),
		SubCategory: c.QueryParam("subCategory"),
	})
	if err != nil {
		return backendError(err, "Failed to load products")
	}
	if products == nil {
		products = []types.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) HandleGetProduct(c echo.Context) error {
	product, err := h.backend.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err, "Failed to load product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) HandleSearch(c echo.Context) error {
	products, err := h.backend.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return backendError(err, "Search failed")
	}
	if products == nil {
		products = []types.Product{}
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) HandleListReviews(c echo.Context) error {
	reviews, err := h.backend.ListReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err, "Failed to load reviews")
	}
	if reviews == nil {
		reviews = []types.Review{}
	}
	return c.JSON(http.StatusOK, reviews)
}

// HandleCreateReview posts a review as the signed-in user
func (h *CatalogHandler) HandleCreateReview(c echo.Context) error {
	var review types.Review
	if err := c.Bind(&review); err != nil {
		return badRequest("Invalid request")
	}
	review.ProductID = c.Param("id")
	review.Comment = strings.TrimSpace(review.Comment)
	if review.Rating < 1 || review.Rating > 5 {
		return badRequest("Rating must be between 1 and 5")
	}
	if user, ok := auth.GetUser(c); ok && review.UserName == "" {
		review.UserName = user.Name
	}

	created, err := h.backend.CreateReview(c.Request().Context(), auth.GetToken(c), review)
	if err != nil {
		return backendError(err, "Failed to post review")
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleRecordView adds a product to the session's recently viewed list
func (h *CatalogHandler) HandleRecordView(c echo.Context) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return badRequest("Product ID is required")
	}

	ctx := c.Request().Context()
	product, err := h.backend.GetProduct(ctx, req.ProductID)
	if err != nil {
		return backendError(err, "Failed to load product")
	}

	sessionID := session.ID(c)
	if err := h.history.RecordView(ctx, sessionID, *product); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record view")
	}
	return h.HandleListViewed(c)
}

func (h *CatalogHandler) HandleListViewed(c echo.Context) error {
	viewed, err := h.history.Viewed(c.Request().Context(), session.ID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load history")
	}
	if viewed == nil {
		viewed = []types.ViewedStub{}
	}
	return c.JSON(http.StatusOK, viewed)
}
