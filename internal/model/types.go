// Package model defines domain types shared across the storefront.
package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. Products are immutable once the catalog is loaded;
// cart lines hold a pointer to the catalog's copy and never modify it.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Subtitle string          `json:"subtitle,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}
