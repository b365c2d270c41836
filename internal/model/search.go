package model

// RankMode selects the ordering applied to the filtered candidate set
type RankMode string

const (
	RankByRelevance  RankMode = "relevance"
	RankByPrice      RankMode = "price"
	RankByPopularity RankMode = "popularity"
	RankByUrgency    RankMode = "urgency"
	RankByNewest     RankMode = "newest"
)

// Valid reports whether m is one of the supported ranking modes
func (m RankMode) Valid() bool {
	switch m {
	case RankByRelevance, RankByPrice, RankByPopularity, RankByUrgency, RankByNewest:
		return true
	}
	return false
}

// SearchRequest carries the free-text query plus structured filters for a
// single search call. All filter fields are optional and combine with AND
// semantics.
type SearchRequest struct {
	Query string `form:"query" json:"query"`

	ListingType  *ListingType  `form:"listingType" json:"listingType,omitempty"`
	PropertyType *PropertyType `form:"propertyType" json:"propertyType,omitempty"`

	City     *string  `form:"city" json:"city,omitempty"`
	Locality *string  `form:"locality" json:"locality,omitempty"`
	Area     *string  `form:"area" json:"area,omitempty"`
	Latitude *float64 `form:"latitude" json:"latitude,omitempty"`
	// Longitude pairs with Latitude; Radius is in kilometers
	Longitude *float64 `form:"longitude" json:"longitude,omitempty"`
	Radius    *float64 `form:"radius" json:"radius,omitempty"`

	MinPrice *float64 `form:"minPrice" json:"minPrice,omitempty"`
	MaxPrice *float64 `form:"maxPrice" json:"maxPrice,omitempty"`
	MinArea  *float64 `form:"minArea" json:"minArea,omitempty"`
	MaxArea  *float64 `form:"maxArea" json:"maxArea,omitempty"`

	Bedrooms  *int `form:"bedrooms" json:"bedrooms,omitempty"`
	Bathrooms *int `form:"bathrooms" json:"bathrooms,omitempty"`

	AiTags []string `form:"aiTags" json:"aiTags,omitempty"`

	Page   int      `form:"page" json:"page"`
	Limit  int      `form:"limit" json:"limit"`
	RankBy RankMode `form:"rankBy" json:"rankBy,omitempty"`

	SimilarityThreshold *float64 `form:"similarityThreshold" json:"similarityThreshold,omitempty"`
	IncludeSimilar      *bool    `form:"includeSimilar" json:"includeSimilar,omitempty"`
}

// RankingMode returns the requested ranking mode, defaulting to relevance
func (r *SearchRequest) RankingMode() RankMode {
	if r.RankBy.Valid() {
		return r.RankBy
	}
	return RankByRelevance
}

// WantsSimilar reports whether similar properties were requested (default true)
func (r *SearchRequest) WantsSimilar() bool {
	return r.IncludeSimilar == nil || *r.IncludeSimilar
}

// Normalize clamps pagination to valid bounds: page >= 1, limit in [1, max]
// with the given default when absent.
func (r *SearchRequest) Normalize(defaultLimit, maxLimit int) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
}

// ExtractedLocation echoes the location the pipeline resolved, preferring
// geocoded fields over the raw request fields
type ExtractedLocation struct {
	City               *string      `json:"city,omitempty"`
	Locality           *string      `json:"locality,omitempty"`
	Coordinates        *Coordinates `json:"coordinates,omitempty"`
	NormalizedLocation *string      `json:"normalizedLocation,omitempty"`
}

// PriceRange is a half-open price window echoed in extracted filters
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ExtractedFilters is the response block describing what the pipeline
// actually filtered on
type ExtractedFilters struct {
	Location     *ExtractedLocation `json:"location,omitempty"`
	PropertyType *PropertyType      `json:"propertyType,omitempty"`
	PriceRange   *PriceRange        `json:"priceRange,omitempty"`
	Bedrooms     *int               `json:"bedrooms,omitempty"`
	Bathrooms    *int               `json:"bathrooms,omitempty"`
	AiTags       []string           `json:"aiTags,omitempty"`
}

// SearchMetadata reports processing facts and degradation flags
type SearchMetadata struct {
	ProcessingTimeMs       int64 `json:"processingTimeMs"`
	AiRankingUsed          bool  `json:"aiRankingUsed"`
	LocationNormalized     bool  `json:"locationNormalized"`
	SimilarPropertiesCount int   `json:"similarPropertiesCount"`
}

// SearchResponse is the full search envelope. Total counts the ranked set
// before pagination; Properties holds at most Limit entries.
type SearchResponse struct {
	Properties        []RankedProperty `json:"properties"`
	Total             int              `json:"total"`
	Page              int              `json:"page"`
	Limit             int              `json:"limit"`
	Query             string           `json:"query"`
	ExtractedFilters  ExtractedFilters `json:"extractedFilters"`
	SimilarProperties []RankedProperty `json:"similarProperties,omitempty"`
	SearchMetadata    SearchMetadata   `json:"searchMetadata"`
}
