package catalog

import (
	"github.com/shopspring/decimal"
)

// Image is a hosted picture.
type Image struct {
	SecureURL string `json:"secure_url"`
}

// Ref is an embedded reference to another resource.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Product is one catalog entry. SubPrice is the effective (discounted)
// price the listing sorts and filters on.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	SubPrice    decimal.Decimal `json:"subPrice"`
	Stock       int             `json:"stock"`
	MainImage   Image           `json:"mainImage"`
	Images      []Image         `json:"images,omitempty"`
	SubImages   []Image         `json:"subImages,omitempty"`
	Category    Ref             `json:"category"`
	Brand       *Ref            `json:"brand,omitempty"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// Discounted reports whether SubPrice is below Price.
func (p Product) Discounted() bool {
	return p.SubPrice.IsPositive() && p.SubPrice.LessThan(p.Price)
}

// Category is a product category.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image *Image `json:"image,omitempty"`
}

// Brand is a product brand.
type Brand struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Page is one normalized listing page.
type Page struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"totalProducts"`
	TotalPages    int       `json:"totalPages"`
	CurrentPage   int       `json:"currentPage"`
}
