package repository

import (
	"context"
	"testing"
	"time"

	"bhoomisetu/search/internal/model"
)

func strPtr(v string) *string       { return &v }
func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }

func fixtureProperties() []model.Property {
	bhk2 := 2
	bhk3 := 3
	deleted := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return []model.Property{
		{
			ID: "hyd-begumpet", Status: model.StatusLive,
			PropertyType: model.PropertyTypeApartment, ListingType: model.ListingTypeSale,
			City: "Hyderabad", Locality: strPtr("Begumpet"),
			Address: "4 SP Road", Price: 4500000, Area: 1100, Bedrooms: &bhk2,
		},
		{
			ID: "hyd-villa", Status: model.StatusLive,
			PropertyType: model.PropertyTypeVilla, ListingType: model.ListingTypeSale,
			City: "Hyderabad", Locality: strPtr("Gachibowli"),
			Address: "Plot 9, Financial District", Landmark: strPtr("near DLF gate"),
			Price: 12000000, Area: 2800, Bedrooms: &bhk3,
		},
		{
			ID: "mum-rent", Status: model.StatusLive,
			PropertyType: model.PropertyTypeApartment, ListingType: model.ListingTypeRent,
			City: "Mumbai", Locality: strPtr("Andheri West"),
			Address: "7 Link Road", Price: 45000, Area: 650, Bedrooms: &bhk2,
		},
		{
			ID: "hyd-sold", Status: model.StatusSold,
			PropertyType: model.PropertyTypeApartment, ListingType: model.ListingTypeSale,
			City: "Hyderabad", Address: "1 Old Lane", Price: 4000000, Area: 900,
		},
		{
			ID: "hyd-deleted", Status: model.StatusLive, DeletedAt: &deleted,
			PropertyType: model.PropertyTypeApartment, ListingType: model.ListingTypeSale,
			City: "Hyderabad", Address: "2 Old Lane", Price: 4100000, Area: 950,
		},
	}
}

func searchIDs(t *testing.T, repo *MemoryRepository, f *HardFilters) []string {
	t.Helper()
	props, err := repo.SearchWithFilters(context.Background(), f)
	if err != nil {
		t.Fatalf("SearchWithFilters() error: %v", err)
	}
	ids := make([]string, len(props))
	for i, p := range props {
		ids[i] = p.ID
	}
	return ids
}

func TestSearchWithFiltersPredicates(t *testing.T) {
	repo := NewMemoryRepository(fixtureProperties())
	sale := model.ListingTypeSale
	apartment := model.PropertyTypeApartment

	tests := []struct {
		name    string
		filters *HardFilters
		want    []string
	}{
		{"nil filters returns all live", nil, []string{"hyd-begumpet", "hyd-villa", "mum-rent"}},
		{"city prefix matches case-insensitively", &HardFilters{City: strPtr("hyder")}, []string{"hyd-begumpet", "hyd-villa"}},
		{"city prefix does not match mid-string", &HardFilters{City: strPtr("derabad")}, nil},
		{"locality is a substring match", &HardFilters{Locality: strPtr("begum")}, []string{"hyd-begumpet"}},
		{"area matches locality", &HardFilters{Area: strPtr("gachibowli")}, []string{"hyd-villa"}},
		{"area matches landmark", &HardFilters{Area: strPtr("dlf")}, []string{"hyd-villa"}},
		{"area matches address", &HardFilters{Area: strPtr("link road")}, []string{"mum-rent"}},
		{"listing type", &HardFilters{ListingType: &sale}, []string{"hyd-begumpet", "hyd-villa"}},
		{"property type", &HardFilters{PropertyType: &apartment}, []string{"hyd-begumpet", "mum-rent"}},
		{"price range inclusive", &HardFilters{MinPrice: float64Ptr(4500000), MaxPrice: float64Ptr(12000000)}, []string{"hyd-begumpet", "hyd-villa"}},
		{"area range", &HardFilters{MinArea: float64Ptr(1000), MaxArea: float64Ptr(1200)}, []string{"hyd-begumpet"}},
		{"bedrooms exact", &HardFilters{Bedrooms: intPtr(3)}, []string{"hyd-villa"}},
		{"conjunction of predicates", &HardFilters{City: strPtr("Hyderabad"), Bedrooms: intPtr(2)}, []string{"hyd-begumpet"}},
		{"no match", &HardFilters{City: strPtr("Kolkata")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchIDs(t, repo, tt.filters)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearchWithFiltersExcludesNonLive(t *testing.T) {
	repo := NewMemoryRepository(fixtureProperties())
	for _, id := range searchIDs(t, repo, nil) {
		if id == "hyd-sold" || id == "hyd-deleted" {
			t.Errorf("non-live property %s must never be returned", id)
		}
	}
}

func TestFindByPriceRange(t *testing.T) {
	repo := NewMemoryRepository(fixtureProperties())

	props, err := repo.FindByPriceRange(context.Background(), 4000000, 5000000, 20)
	if err != nil {
		t.Fatalf("FindByPriceRange() error: %v", err)
	}
	if len(props) != 1 || props[0].ID != "hyd-begumpet" {
		t.Fatalf("got %d properties, want only the live 4.5M listing", len(props))
	}

	props, err = repo.FindByPriceRange(context.Background(), 0, 20000000, 1)
	if err != nil {
		t.Fatalf("FindByPriceRange() error: %v", err)
	}
	if len(props) != 1 {
		t.Errorf("limit 1 returned %d properties", len(props))
	}
}
