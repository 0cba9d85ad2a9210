// Package recommend ranks catalog products for a shopper from their
// wishlist, browsing and ordering signals.
package recommend

import (
	"math/rand/v2"
	"sort"

	"github.com/loganlanou/storefront/internal/types"
)

const (
	WishlistWeight = 10.0
	ViewedWeight   = 7.0
	RelatedWeight  = 6.0
	// MaxJitter bounds the random bonus added to every scored product.
	MaxJitter = 2.0

	DefaultLimit  = 50
	AlsoLikeLimit = 20
)

type Scored struct {
	types.Product
	// Base is the score from signals alone, before jitter.
	Base  float64 `json:"-"`
	Score float64 `json:"score"`
}

type Scorer struct {
	Limit int
	// Rand supplies jitter. A nil Rand uses the global source.
	Rand *rand.Rand
}

func (s Scorer) float64() float64 {
	if s.Rand != nil {
		return s.Rand.Float64()
	}
	return rand.Float64()
}

// Recommend scores products with the default scorer.
func Recommend(products, wishlist []types.Product, viewed []types.ViewedStub, ordered []types.OrderedStub) []Scored {
	return Scorer{Limit: DefaultLimit}.Score(products, wishlist, viewed, ordered)
}

// Score ranks the catalog. Wishlisted products earn WishlistWeight, viewed
// products ViewedWeight, and products sharing a category or sub-category
// with an ordered product earn RelatedWeight unless they were ordered
// themselves. Bonuses add up. Only products with a positive score are
// returned, each with jitter in [0, MaxJitter), best first.
func (s Scorer) Score(products, wishlist []types.Product, viewed []types.ViewedStub, ordered []types.OrderedStub) []Scored {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	scores := make(map[string]float64)
	for _, w := range wishlist {
		scores[w.ID] += WishlistWeight
	}
	for _, v := range viewed {
		scores[v.ID] += ViewedWeight
	}

	if len(ordered) > 0 {
		orderedIDs := make(map[string]bool, len(ordered))
		categories := make(map[string]bool, len(ordered))
		subCategories := make(map[string]bool, len(ordered))
		for _, o := range ordered {
			orderedIDs[o.ProductID] = true
			categories[o.Category] = true
			subCategories[o.SubCategory] = true
		}

		for _, p := range products {
			if orderedIDs[p.ID] {
				continue
			}
			if categories[p.Category] || subCategories[p.SubCategory] {
				scores[p.ID] += RelatedWeight
			}
		}
	}

	ranked := make([]Scored, 0, len(scores))
	for _, p := range products {
		base := scores[p.ID]
		if base <= 0 {
			continue
		}
		ranked = append(ranked, Scored{
			Product: p,
			Base:    base,
			Score:   base + s.float64()*MaxJitter,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Fallback returns up to n catalog products in random order, for shoppers
// with no signals yet.
func Fallback(products []types.Product, n int, rng *rand.Rand) []types.Product {
	shuffled := make([]types.Product, len(products))
	copy(shuffled, products)

	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	if n >= 0 && len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// AlsoLike lists products to show beside current: the shopper's recently
// viewed products first, then same-category products not already listed.
func AlsoLike(current string, viewed, sameCategory []types.Product) []types.Product {
	out := make([]types.Product, 0, AlsoLikeLimit)
	seen := map[string]bool{current: true}

	for _, group := range [][]types.Product{viewed, sameCategory} {
		for _, p := range group {
			if len(out) == AlsoLikeLimit {
				return out
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}
