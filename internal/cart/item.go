// Package cart holds a shopper's session cart: line items keyed by product
// and variant selection, with client-side stock capping.
package cart

import (
	"sort"
	"strings"

	"github.com/loganlanou/storefront/internal/types"
)

const placeholderImage = "/placeholder.png"

type LineItem struct {
	Key         string            `json:"key"`
	ProductID   string            `json:"productId"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Category    string            `json:"category"`
	SubCategory string            `json:"subCategory"`
	Image       string            `json:"image"`
	Variants    map[string]string `json:"variants"`
	Stock       *int              `json:"stock,omitempty"`
	Qty         int               `json:"qty"`
}

// LineTotal is price times quantity.
func (li LineItem) LineTotal() float64 {
	return li.Price * float64(li.Qty)
}

// Key derives the line item key for a product and variant selection:
// the product id alone when there are no variants, otherwise the id followed
// by the sorted name:value pairs.
func Key(productID string, variants map[string]string) string {
	if len(variants) == 0 {
		return productID
	}

	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + ":" + variants[name]
	}
	return productID + "-" + strings.Join(pairs, "|")
}

// ImageURL resolves a product image against the asset base URL.
func ImageURL(base, image string) string {
	switch {
	case image == "":
		return placeholderImage
	case strings.HasPrefix(image, "http"):
		return image
	case strings.HasPrefix(image, "/"):
		return base + image
	default:
		return base + "/" + image
	}
}

func newLineItem(p types.Product, variants map[string]string, imageBase string) LineItem {
	if variants == nil {
		variants = map[string]string{}
	}
	return LineItem{
		Key:         Key(p.ID, variants),
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		Image:       ImageURL(imageBase, p.Image),
		Variants:    copyVariants(variants),
		Stock:       copyStock(p.Stock),
	}
}

func copyVariants(v map[string]string) map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

func copyStock(s *int) *int {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.Variants = copyVariants(it.Variants)
		it.Stock = copyStock(it.Stock)
		out[i] = it
	}
	return out
}
