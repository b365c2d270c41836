package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bhoomisetu/search/internal/config"
	"bhoomisetu/search/internal/metrics"
	"bhoomisetu/search/internal/model"

	"go.uber.org/zap"
)

const (
	googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	mapboxGeocodeURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	mapboxConfidence = 0.85
	googleConfidence = 0.9
	parseConfidence  = 0.5
)

// geocodeStrategy converts a location phrase into a normalized location.
// A (nil, nil) return means "no result, try the next strategy".
type geocodeStrategy struct {
	name string
	fn   func(ctx context.Context, query string) (*model.NormalizedLocation, error)
}

// Geocoder normalizes free-text location phrases. Strategies are tried in
// configuration-preference order and the final comma-split parse always
// succeeds, so Normalize never returns nil for a non-empty phrase.
type Geocoder struct {
	cfg        config.GeocodingConfig
	httpClient *http.Client
	logger     *zap.Logger
	strategies []geocodeStrategy

	// endpoints are fields so tests can point them at local servers
	googleURL string
	mapboxURL string
}

// NewGeocoder creates a geocoder from provider configuration. Absent API
// keys simply drop their strategies; with no keys at all only the local
// parse remains, which is a valid (degraded) configuration.
func NewGeocoder(cfg config.GeocodingConfig, logger *zap.Logger) *Geocoder {
	g := &Geocoder{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		googleURL:  googleGeocodeURL,
		mapboxURL:  mapboxGeocodeURL,
	}

	if cfg.MapboxAPIKey != "" {
		g.strategies = append(g.strategies, geocodeStrategy{name: "mapbox", fn: g.geocodeMapbox})
	}
	if cfg.GoogleAPIKey != "" {
		g.strategies = append(g.strategies, geocodeStrategy{name: "google", fn: g.geocodeGoogle})
	}
	g.strategies = append(g.strategies, geocodeStrategy{name: "parse", fn: g.parseLocally})

	return g
}

// Normalize resolves a location phrase via the strategy chain. Provider
// failures never propagate; at worst the comma-split parse answers.
func (g *Geocoder) Normalize(ctx context.Context, locationText string) *model.NormalizedLocation {
	locationText = strings.TrimSpace(locationText)

	for _, strat := range g.strategies {
		loc, err := strat.fn(ctx, locationText)
		if err != nil {
			g.logger.Log(degradedLevel(err), "geocoding strategy failed",
				zap.String("strategy", strat.name),
				zap.Error(err),
			)
			continue
		}
		if loc == nil {
			g.logger.Debug("geocoding strategy returned no results",
				zap.String("strategy", strat.name),
				zap.String("query", locationText),
			)
			continue
		}
		metrics.GeocodeResultsTotal.WithLabelValues(string(loc.Source)).Inc()
		return loc
	}

	// Unreachable: the local parse never fails.
	return nil
}

// geocodeMapbox queries the Mapbox forward-geocoding API with a
// country-restricted single-result lookup.
func (g *Geocoder) geocodeMapbox(ctx context.Context, query string) (*model.NormalizedLocation, error) {
	endpoint := fmt.Sprintf("%s/%s.json", g.mapboxURL, url.PathEscape(query))
	params := url.Values{}
	params.Set("access_token", g.cfg.MapboxAPIKey)
	params.Set("limit", "1")
	if g.cfg.CountryBias != "" {
		params.Set("country", g.cfg.CountryBias)
	}

	var resp struct {
		Features []struct {
			PlaceName string    `json:"place_name"`
			Text      string    `json:"text"`
			PlaceType []string  `json:"place_type"`
			Center    []float64 `json:"center"` // [lon, lat]
			Context   []struct {
				ID   string `json:"id"`
				Text string `json:"text"`
			} `json:"context"`
		} `json:"features"`
	}
	if err := g.getJSON(ctx, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	feature := resp.Features[0]
	loc := &model.NormalizedLocation{
		FormattedAddress: feature.PlaceName,
		Country:          g.cfg.DefaultCountry,
		Confidence:       mapboxConfidence,
		Source:           model.GeocodeSourceMapbox,
	}
	if len(feature.Center) == 2 {
		loc.Coordinates = model.Coordinates{Latitude: feature.Center[1], Longitude: feature.Center[0]}
	}
	for _, pt := range feature.PlaceType {
		if pt == "place" {
			loc.City = feature.Text
		}
	}
	for _, entry := range feature.Context {
		switch {
		case strings.HasPrefix(entry.ID, "place."):
			if loc.City == "" {
				loc.City = entry.Text
			}
		case strings.HasPrefix(entry.ID, "region."):
			loc.State = entry.Text
		case strings.HasPrefix(entry.ID, "country."):
			loc.Country = entry.Text
		case strings.HasPrefix(entry.ID, "postcode."):
			pincode := entry.Text
			loc.Pincode = &pincode
		case strings.HasPrefix(entry.ID, "locality."), strings.HasPrefix(entry.ID, "neighborhood."):
			locality := entry.Text
			loc.Locality = &locality
		}
	}
	if loc.City == "" {
		loc.City = feature.Text
	}

	return loc, nil
}

// geocodeGoogle queries the Google Geocoding API and flattens the first
// result's address components by component type.
func (g *Geocoder) geocodeGoogle(ctx context.Context, query string) (*model.NormalizedLocation, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.cfg.GoogleAPIKey)

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress  string `json:"formatted_address"`
			AddressComponents []struct {
				LongName string   `json:"long_name"`
				Types    []string `json:"types"`
			} `json:"address_components"`
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := g.getJSON(ctx, g.googleURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, nil
	}

	result := resp.Results[0]
	components := make(map[string]string)
	for _, comp := range result.AddressComponents {
		for _, t := range comp.Types {
			components[t] = comp.LongName
		}
	}

	loc := &model.NormalizedLocation{
		FormattedAddress: result.FormattedAddress,
		City:             components["locality"],
		State:            components["administrative_area_level_1"],
		Country:          components["country"],
		Coordinates: model.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
		Confidence: googleConfidence,
		Source:     model.GeocodeSourceGoogle,
	}
	if loc.City == "" {
		loc.City = components["administrative_area_level_2"]
	}
	if pincode, ok := components["postal_code"]; ok {
		loc.Pincode = &pincode
	}
	if locality, ok := components["sublocality"]; ok {
		loc.Locality = &locality
	} else if neighborhood, ok := components["neighborhood"]; ok {
		loc.Locality = &neighborhood
	}

	return loc, nil
}

// parseLocally is the terminal strategy: split on commas, token 0 is the
// city, token 1 the state. Coordinates stay zero and confidence reflects
// the degraded result. Never fails.
func (g *Geocoder) parseLocally(_ context.Context, query string) (*model.NormalizedLocation, error) {
	parts := strings.Split(query, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	loc := &model.NormalizedLocation{
		FormattedAddress: query,
		City:             parts[0],
		Country:          g.cfg.DefaultCountry,
		Confidence:       parseConfidence,
		Source:           model.GeocodeSourceCache,
	}
	if len(parts) > 1 {
		loc.State = parts[1]
	}

	return loc, nil
}

func (g *Geocoder) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
