package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LensCategory groups products for browsing.
type LensCategory string

const (
	CategoryDaily      LensCategory = "daily"
	CategoryMonthly    LensCategory = "monthly"
	CategoryToric      LensCategory = "toric"
	CategoryMultifocal LensCategory = "multifocal"
	CategoryColor      LensCategory = "color"
)

// Product is a contact-lens catalogue entry. Purchases happen on its variants.
type Product struct {
	ID                  string           `json:"id" db:"id"`
	Name                string           `json:"name" db:"name"`
	Brand               string           `json:"brand" db:"brand"`
	Category            LensCategory     `json:"category" db:"category"`
	ShortDescription    string           `json:"shortDescription" db:"short_description"`
	Description         string           `json:"description" db:"description"`
	Image               string           `json:"image" db:"image_url"`
	PackSize            int              `json:"packSize" db:"pack_size"`
	WearPeriod          string           `json:"wearPeriod" db:"wear_period"`
	BaseCurve           *string          `json:"baseCurve,omitempty" db:"base_curve"`
	Diameter            *string          `json:"diameter,omitempty" db:"diameter"`
	WaterContentPercent *int             `json:"waterContentPercent,omitempty" db:"water_content_percent"`
	UVBlocking          *bool            `json:"uvBlocking,omitempty" db:"uv_blocking"`
	Active              bool             `json:"-" db:"is_active"`
	CreatedAt           time.Time        `json:"createdAt" db:"created_at"`
	Variants            []ProductVariant `json:"variants"`
}

// ProductVariant is a sellable SKU of a product, identified by its SPH (degree).
// Sph is kept as a string because it carries a sign and decimals, e.g. "-1.25".
type ProductVariant struct {
	ID        string          `json:"id" db:"id"`
	ProductID string          `json:"productId" db:"product_id"`
	SKU       string          `json:"sku" db:"sku"`
	Sph       string          `json:"sph" db:"sph"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	Active    bool            `json:"-" db:"is_active"`
}

// MinPrice returns the cheapest variant price, or zero for a product without variants.
func (p *Product) MinPrice() decimal.Decimal {
	if len(p.Variants) == 0 {
		return decimal.Zero
	}
	lowest := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.LessThan(lowest) {
			lowest = v.Price
		}
	}
	return lowest
}

// Variant returns the variant with the given id.
func (p *Product) Variant(id string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// VariantBySph returns the variant with the given SPH.
func (p *Product) VariantBySph(sph string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Sph == sph {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// CatalogStatus summarises the catalogue backing the storefront.
type CatalogStatus struct {
	Source        string `json:"source"`
	ProductsCount int    `json:"products_count"`
	VariantsCount int    `json:"variants_count"`
}
