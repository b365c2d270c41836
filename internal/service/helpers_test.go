package service

import (
	"time"

	"bhoomisetu/search/internal/model"
)

// Shared test helpers.

func float64Ptr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func idsOf(ranked []model.RankedProperty) []string {
	ids := make([]string, len(ranked))
	for i, p := range ranked {
		ids[i] = p.ID
	}
	return ids
}

// makeProperty builds a live listing with sensible defaults for tests
func makeProperty(id, city string, price float64, views int, featured bool) model.Property {
	return model.Property{
		ID:           id,
		Title:        "Listing " + id,
		PropertyType: model.PropertyTypeApartment,
		ListingType:  model.ListingTypeSale,
		Status:       model.StatusLive,
		Price:        price,
		Area:         1000,
		Address:      "12 Main Road",
		City:         city,
		ViewsCount:   views,
		IsFeatured:   featured,
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
