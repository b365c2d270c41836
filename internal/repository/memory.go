package repository

import (
	"context"
	"strings"

	"bhoomisetu/search/internal/model"
)

// Compile-time check: MemoryRepository implements PropertyStore.
var _ PropertyStore = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory PropertyStore adapter with the same
// predicate semantics as the PostgreSQL adapter. It backs pipeline tests
// and small deployments without a database.
type MemoryRepository struct {
	properties []model.Property
}

// NewMemoryRepository creates a store over a fixed property slice
func NewMemoryRepository(properties []model.Property) *MemoryRepository {
	return &MemoryRepository{properties: properties}
}

// SearchWithFilters returns live properties matching the predicate set
func (r *MemoryRepository) SearchWithFilters(_ context.Context, filters *HardFilters) ([]model.Property, error) {
	var out []model.Property
	for _, p := range r.properties {
		if matchesFilters(p, filters) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByPriceRange returns up to limit live properties priced in [minPrice, maxPrice]
func (r *MemoryRepository) FindByPriceRange(_ context.Context, minPrice, maxPrice float64, limit int) ([]model.Property, error) {
	var out []model.Property
	for _, p := range r.properties {
		if p.Status != model.StatusLive || p.DeletedAt != nil {
			continue
		}
		if p.Price < minPrice || p.Price > maxPrice {
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matchesFilters(p model.Property, f *HardFilters) bool {
	if p.Status != model.StatusLive || p.DeletedAt != nil {
		return false
	}
	if f == nil {
		return true
	}
	if f.ListingType != nil && p.ListingType != *f.ListingType {
		return false
	}
	if f.PropertyType != nil && p.PropertyType != *f.PropertyType {
		return false
	}
	if f.City != nil && !strings.HasPrefix(strings.ToLower(p.City), strings.ToLower(*f.City)) {
		return false
	}
	if f.Locality != nil {
		if p.Locality == nil || !containsFold(*p.Locality, *f.Locality) {
			return false
		}
	}
	if f.Area != nil && !matchesArea(p, *f.Area) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinArea != nil && p.Area < *f.MinArea {
		return false
	}
	if f.MaxArea != nil && p.Area > *f.MaxArea {
		return false
	}
	if f.Bedrooms != nil && (p.Bedrooms == nil || *p.Bedrooms != *f.Bedrooms) {
		return false
	}
	if f.Bathrooms != nil && (p.Bathrooms == nil || *p.Bathrooms != *f.Bathrooms) {
		return false
	}
	return true
}

func matchesArea(p model.Property, area string) bool {
	if p.Locality != nil && containsFold(*p.Locality, area) {
		return true
	}
	if p.Landmark != nil && containsFold(*p.Landmark, area) {
		return true
	}
	return containsFold(p.Address, area)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
