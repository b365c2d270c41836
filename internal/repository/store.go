package repository

import (
	"context"

	"bhoomisetu/search/internal/model"
)

// HardFilters is the predicate set applied at the store level. Every field
// is optional; set fields combine with AND semantics. Live status and
// soft-delete exclusion are always enforced by adapters and are not part
// of this struct.
type HardFilters struct {
	ListingType  *model.ListingType
	PropertyType *model.PropertyType
	City         *string // case-insensitive prefix match
	Locality     *string // case-insensitive substring match
	Area         *string // substring match across locality, landmark, address
	MinPrice     *float64
	MaxPrice     *float64
	MinArea      *float64
	MaxArea      *float64
	Bedrooms     *int
	Bathrooms    *int
}

// PropertyStore is the query boundary the search core depends on. The core
// never knows whether the adapter is SQL, an index, or an in-memory list.
type PropertyStore interface {
	// SearchWithFilters returns live, non-deleted properties matching the
	// given predicate set.
	SearchWithFilters(ctx context.Context, filters *HardFilters) ([]model.Property, error)

	// FindByPriceRange returns up to limit live, non-deleted properties
	// with price in [minPrice, maxPrice].
	FindByPriceRange(ctx context.Context, minPrice, maxPrice float64, limit int) ([]model.Property, error)
}
