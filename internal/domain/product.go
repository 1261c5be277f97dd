package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry. Products are defined at deploy time and never mutated.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	Image    string          `json:"img,omitempty"`
}
