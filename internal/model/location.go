package model

// GeocodeSource tags which strategy produced a normalized location
type GeocodeSource string

const (
	GeocodeSourceGoogle GeocodeSource = "google"
	GeocodeSourceMapbox GeocodeSource = "mapbox"
	// GeocodeSourceCache covers both replayed cache hits and the degraded
	// comma-split parse, which never fails
	GeocodeSourceCache GeocodeSource = "cache"
)

// Coordinates is a WGS84 lat/lon pair in degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NormalizedLocation is the structured result of geocoding a free-text
// location phrase. Computed once per search request and immutable after.
type NormalizedLocation struct {
	FormattedAddress string        `json:"formattedAddress"`
	City             string        `json:"city"`
	State            string        `json:"state"`
	Country          string        `json:"country"`
	Pincode          *string       `json:"pincode,omitempty"`
	Locality         *string       `json:"locality,omitempty"`
	Coordinates      Coordinates   `json:"coordinates"`
	Confidence       float64       `json:"confidence"`
	Source           GeocodeSource `json:"source"`
}
