package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching what storefront clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups products in the catalog
type Category struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Product represents a catalog item
type Product struct {
	ID               string          `bson:"_id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Description      string          `bson:"description" json:"description"`
	Price            decimal.Decimal `bson:"price" json:"price"`
	StockQuantity    int             `bson:"stock_quantity" json:"stock_quantity"`
	ImageURL         string          `bson:"image_url" json:"image_url"`
	AdditionalImages []string        `bson:"additional_images" json:"additional_images"`
	CategoryID       string          `bson:"category_id" json:"category_id"`
	Rating           float64         `bson:"rating" json:"rating"`
	CreatedAt        time.Time       `bson:"created_at" json:"created_at"`
}

// Images returns the primary image followed by the additional images
func (p *Product) Images() []string {
	var urls []string
	if p.ImageURL != "" {
		urls = append(urls, p.ImageURL)
	}
	return append(urls, p.AdditionalImages...)
}

// Sort orders accepted by the catalog listing
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	Search      string
	CategoryIDs []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *float64
	Sort        string
}
