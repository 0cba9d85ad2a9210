package handlers

import (
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/storefront/internal/auth"
	"github.com/loganlanou/storefront/internal/backend"
	"github.com/loganlanou/storefront/internal/history"
	"github.com/loganlanou/storefront/internal/recommend"
	"github.com/loganlanou/storefront/internal/session"
	"github.com/loganlanou/storefront/internal/types"
	"golang.org/x/sync/errgroup"
)

type RecommendationsHandler struct {
	backend *backend.Client
	history *history.Recorder
	limit   int
	// rng is only set by tests; *rand.Rand is not safe for concurrent use.
	rng *rand.Rand
}

func NewRecommendationsHandler(backend *backend.Client, history *history.Recorder, limit int) *RecommendationsHandler {
	if limit <= 0 {
		limit = recommend.DefaultLimit
	}
	return &RecommendationsHandler{backend: backend, history: history, limit: limit}
}

type signals struct {
	products []types.Product
	wishlist []types.Product
	viewed   []types.ViewedStub
	ordered  []types.OrderedStub
}

// load fetches the catalog and the shopper's signals in parallel. Only a
// catalog failure is fatal; a missing signal counts as empty.
func (h *RecommendationsHandler) load(c echo.Context, filter types.ProductFilter) (signals, error) {
	var s signals
	sessionID := session.ID(c)
	g, ctx := errgroup.WithContext(c.Request().Context())

	g.Go(func() error {
		products, err := h.backend.ListProducts(ctx, filter)
		s.products = products
		return err
	})
	if auth.IsAuthenticated(c) {
		token := auth.GetToken(c)
		g.Go(func() error {
			wishlist, err := h.backend.GetWishlist(ctx, token)
			if err != nil {
				slog.Warn("failed to load wishlist for recommendations", "error", err)
				return nil
			}
			s.wishlist = wishlist
			return nil
		})
	}
	g.Go(func() error {
		viewed, err := h.history.Viewed(ctx, sessionID)
		if err != nil {
			slog.Warn("failed to load recently viewed", "error", err, "session_id", sessionID)
			return nil
		}
		s.viewed = viewed
		return nil
	})
	g.Go(func() error {
		ordered, err := h.history.Ordered(ctx, sessionID)
		if err != nil {
			slog.Warn("failed to load recently ordered", "error", err, "session_id", sessionID)
			return nil
		}
		s.ordered = ordered
		return nil
	})

	return s, g.Wait()
}

// HandleRecommendations ranks the catalog for the shopper. Shoppers with no
// signals get a random slice of the catalog instead.
func (h *RecommendationsHandler) HandleRecommendations(c echo.Context) error {
	s, err := h.load(c, types.ProductFilter{})
	if err != nil {
		return backendError(err, "Failed to load products")
	}

	scorer := recommend.Scorer{Limit: h.limit, Rand: h.rng}
	ranked := scorer.Score(s.products, s.wishlist, s.viewed, s.ordered)
	if len(ranked) > 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"products":     ranked,
			"personalized": true,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products":     recommend.Fallback(s.products, h.limit, h.rng),
		"personalized": false,
	})
}

// HandleAlsoLike lists products to show on a product page: recently viewed
// ones first, then others from the same category.
func (h *RecommendationsHandler) HandleAlsoLike(c echo.Context) error {
	current, err := h.backend.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(err, "Failed to load product")
	}

	s, err := h.load(c, types.ProductFilter{})
	if err != nil {
		return backendError(err, "Failed to load products")
	}

	return c.JSON(http.StatusOK, alsoLike(current, s))
}

func alsoLike(current *types.Product, s signals) []types.Product {
	byID := make(map[string]types.Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}

	viewed := make([]types.Product, 0, len(s.viewed))
	for _, v := range s.viewed {
		if p, ok := byID[v.ID]; ok {
			viewed = append(viewed, p)
		}
	}

	var sameCategory []types.Product
	for _, p := range s.products {
		if current.Category != "" && p.Category == current.Category {
			sameCategory = append(sameCategory, p)
		}
	}

	return recommend.AlsoLike(current.ID, viewed, sameCategory)
}
