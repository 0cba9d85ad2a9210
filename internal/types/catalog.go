package types

import "time"

// Product is a catalog entry as served by the backend.
type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory"`
	Image       string    `json:"image,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is a named product option, e.g. color, with its selectable values.
type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options,omitempty"`
}

// MissingVariant returns the first variant name the selection does not cover.
func (p Product) MissingVariant(selected map[string]string) (string, bool) {
	for _, v := range p.Variants {
		if selected[v.Name] == "" {
			return v.Name, true
		}
	}
	return "", false
}

type ProductFilter struct {
	Category    string
	SubCategory string
}

type Review struct {
	ID        string    `json:"_id,omitempty"`
	ProductID string    `json:"productId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Address struct {
	ID          string `json:"_id,omitempty"`
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	LocalGovt   string `json:"localGovt"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// Complete reports whether every field required for delivery is present.
func (a Address) Complete() bool {
	return a.HouseNumber != "" && a.Street != "" && a.LocalGovt != "" && a.State != ""
}

// String formats the address the way it is written on an order.
func (a Address) String() string {
	return a.HouseNumber + ", " + a.Street + ", " + a.LocalGovt + ", " + a.State + ", " + a.Country
}

type Notification struct {
	ID        string    `json:"_id,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
