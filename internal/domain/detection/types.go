package detection

import (
	"github.com/google/uuid"
)

// BoundingBox is a detection's location on the shelf image, in pixels
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area. Degenerate boxes contribute nothing to
// share-of-shelf math.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// RawDetection is one entry of the provider's opaque response
type RawDetection struct {
	Label      string      `json:"label"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bounding_box"`
}

// CandidateSKU identifies one registered SKU the aggregation should
// look for in the provider response
type CandidateSKU struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// SKUMatch is the per-SKU outcome of an aggregation. Facings counts
// every filtered detection attributed to the SKU; Confidence and Box
// come from the highest-confidence one.
type SKUMatch struct {
	SKUID       uuid.UUID   `json:"sku_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	IsAvailable bool        `json:"is_available"`
	Facings     int         `json:"facings"`
	Confidence  float64     `json:"confidence"`
	Box         BoundingBox `json:"bounding_box"`
}

// CategoryShare is the share-of-shelf breakdown for one SKU category
type CategoryShare struct {
	Category   string  `json:"category"`
	Area       float64 `json:"area"`
	Percentage float64 `json:"percentage"`
}

// ShareOfShelf reports how much of the detected shelf area is occupied
// by recognized products. Percentage is always within [0, 100].
type ShareOfShelf struct {
	TotalShelfArea      float64         `json:"total_shelf_area"`
	TrainedProductsArea float64         `json:"trained_products_area"`
	Percentage          float64         `json:"percentage"`
	Categories          []CategoryShare `json:"categories"`
}
