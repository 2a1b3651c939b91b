package model

import "github.com/shopspring/decimal"

// CartLine is a cart entry. A line is identified by its (ProductID, VariantID) pair.
type CartLine struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Sph       string          `json:"sph"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// LineKey identifies a cart line.
type LineKey struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// Key returns the identity of the line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
