package types

import "time"

// OrderItem is one line of an order as posted to the backend.
type OrderItem struct {
	ProductID   string            `json:"productId"`
	Name        string            `json:"name"`
	Price       float64           `json:"price"`
	Qty         int               `json:"qty"`
	Variants    map[string]string `json:"variants"`
	Image       string            `json:"image,omitempty"`
	Category    string            `json:"category,omitempty"`
	SubCategory string            `json:"subCategory,omitempty"`
}

type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	ShippingAddress string      `json:"shippingAddress"`
	PromoCode       string      `json:"promoCode,omitempty"`
}

type Order struct {
	ID              string      `json:"_id"`
	OrderCode       string      `json:"orderCode"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type OrderConfirmation struct {
	OrderCode string `json:"orderCode"`
}

type PaymentVerification struct {
	Reference string `json:"reference"`
	OrderCode string `json:"orderCode"`
	Status    string `json:"status"`
}
