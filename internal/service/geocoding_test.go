package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bhoomisetu/search/internal/config"
	"bhoomisetu/search/internal/model"

	"go.uber.org/zap"
)

func testGeocodingConfig() config.GeocodingConfig {
	return config.GeocodingConfig{
		CountryBias:    "in",
		DefaultCountry: "India",
		Timeout:        2 * time.Second,
	}
}

func TestGeocoderFallbackParse(t *testing.T) {
	// No API keys: only the local parse runs.
	g := NewGeocoder(testGeocodingConfig(), zap.NewNop())

	tests := []struct {
		name      string
		query     string
		wantCity  string
		wantState string
	}{
		{"city only", "Hyderabad", "Hyderabad", ""},
		{"city and state", "Pune, Maharashtra", "Pune", "Maharashtra"},
		{"extra whitespace", "  Chennai ,  Tamil Nadu ", "Chennai", "Tamil Nadu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := g.Normalize(context.Background(), tt.query)
			if loc == nil {
				t.Fatal("Normalize returned nil for non-empty input")
			}
			if loc.City != tt.wantCity {
				t.Errorf("City = %q, want %q", loc.City, tt.wantCity)
			}
			if loc.State != tt.wantState {
				t.Errorf("State = %q, want %q", loc.State, tt.wantState)
			}
			if loc.Country != "India" {
				t.Errorf("Country = %q, want India", loc.Country)
			}
			if loc.Confidence != 0.5 {
				t.Errorf("Confidence = %.2f, want 0.5", loc.Confidence)
			}
			if loc.Source != model.GeocodeSourceCache {
				t.Errorf("Source = %q, want %q", loc.Source, model.GeocodeSourceCache)
			}
			if loc.Coordinates.Latitude != 0 || loc.Coordinates.Longitude != 0 {
				t.Error("fallback parse must leave coordinates zeroed")
			}
		})
	}
}

func TestGeocoderGoogleSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Error("missing address parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Hyderabad, Telangana, India",
				"address_components": [
					{"long_name": "Hyderabad", "types": ["locality"]},
					{"long_name": "Telangana", "types": ["administrative_area_level_1"]},
					{"long_name": "India", "types": ["country"]},
					{"long_name": "500001", "types": ["postal_code"]},
					{"long_name": "Begumpet", "types": ["sublocality"]}
				],
				"geometry": {"location": {"lat": 17.385, "lng": 78.4867}}
			}]
		}`))
	}))
	defer srv.Close()

	cfg := testGeocodingConfig()
	cfg.GoogleAPIKey = "test-key"
	g := NewGeocoder(cfg, zap.NewNop())
	g.googleURL = srv.URL

	loc := g.Normalize(context.Background(), "Hyderabad")
	if loc == nil {
		t.Fatal("Normalize returned nil")
	}
	if loc.Source != model.GeocodeSourceGoogle {
		t.Fatalf("Source = %q, want google", loc.Source)
	}
	if loc.Confidence != 0.9 {
		t.Errorf("Confidence = %.2f, want 0.9", loc.Confidence)
	}
	if loc.City != "Hyderabad" || loc.State != "Telangana" || loc.Country != "India" {
		t.Errorf("unexpected fields: city=%q state=%q country=%q", loc.City, loc.State, loc.Country)
	}
	if loc.Pincode == nil || *loc.Pincode != "500001" {
		t.Error("expected pincode 500001")
	}
	if loc.Locality == nil || *loc.Locality != "Begumpet" {
		t.Error("expected locality Begumpet")
	}
	if loc.Coordinates.Latitude != 17.385 || loc.Coordinates.Longitude != 78.4867 {
		t.Errorf("unexpected coordinates %+v", loc.Coordinates)
	}
}

func TestGeocoderMapboxSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("country") != "in" {
			t.Errorf("country restriction = %q, want in", r.URL.Query().Get("country"))
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [{
				"place_name": "Hyderabad, Telangana, India",
				"text": "Hyderabad",
				"place_type": ["place"],
				"center": [78.4867, 17.385],
				"context": [
					{"id": "region.123", "text": "Telangana"},
					{"id": "country.456", "text": "India"},
					{"id": "postcode.789", "text": "500001"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	cfg := testGeocodingConfig()
	cfg.MapboxAPIKey = "test-token"
	g := NewGeocoder(cfg, zap.NewNop())
	g.mapboxURL = srv.URL

	loc := g.Normalize(context.Background(), "Hyderabad")
	if loc == nil {
		t.Fatal("Normalize returned nil")
	}
	if loc.Source != model.GeocodeSourceMapbox {
		t.Fatalf("Source = %q, want mapbox", loc.Source)
	}
	if loc.Confidence != 0.85 {
		t.Errorf("Confidence = %.2f, want 0.85", loc.Confidence)
	}
	if loc.City != "Hyderabad" || loc.State != "Telangana" {
		t.Errorf("unexpected fields: city=%q state=%q", loc.City, loc.State)
	}
	if loc.Coordinates.Latitude != 17.385 || loc.Coordinates.Longitude != 78.4867 {
		t.Errorf("center not mapped lon/lat: %+v", loc.Coordinates)
	}
}

func TestGeocoderProviderFailureFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	// Close immediately so the call fails at connect time.
	srv.Close()

	cfg := testGeocodingConfig()
	cfg.GoogleAPIKey = "test-key"
	g := NewGeocoder(cfg, zap.NewNop())
	g.googleURL = srv.URL

	loc := g.Normalize(context.Background(), "Kochi, Kerala")
	if loc == nil {
		t.Fatal("provider failure must not yield nil")
	}
	if loc.Source != model.GeocodeSourceCache {
		t.Errorf("Source = %q, want degraded cache source", loc.Source)
	}
	if loc.City != "Kochi" || loc.State != "Kerala" {
		t.Errorf("fallback parse fields: city=%q state=%q", loc.City, loc.State)
	}
}

func TestGeocoderZeroResultsFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	cfg := testGeocodingConfig()
	cfg.GoogleAPIKey = "test-key"
	g := NewGeocoder(cfg, zap.NewNop())
	g.googleURL = srv.URL

	loc := g.Normalize(context.Background(), "Nowhereville")
	if loc == nil {
		t.Fatal("zero provider results must not yield nil")
	}
	if loc.Source != model.GeocodeSourceCache {
		t.Errorf("Source = %q, want degraded cache source", loc.Source)
	}
}
