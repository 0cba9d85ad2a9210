package types

import "time"

// ViewedStub is a recently viewed product kept for recommendations.
type ViewedStub struct {
	ID          string `json:"_id"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	// AddedAt is milliseconds since the epoch.
	AddedAt int64 `json:"addedAt"`
}

// OrderedStub is a recently ordered product kept for recommendations.
type OrderedStub struct {
	ProductID   string    `json:"productId"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	Date        time.Time `json:"date"`
}
