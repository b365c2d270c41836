package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// PropertyType enumerates supported property categories
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypePlot       PropertyType = "plot"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOffice     PropertyType = "office"
	PropertyTypeShop       PropertyType = "shop"
	PropertyTypeWarehouse  PropertyType = "warehouse"
)

// ListingType enumerates listing intents
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// PropertyStatus enumerates listing lifecycle states
type PropertyStatus string

const (
	StatusDraft               PropertyStatus = "draft"
	StatusPendingVerification PropertyStatus = "pending_verification"
	StatusVerified            PropertyStatus = "verified"
	StatusLive                PropertyStatus = "live"
	StatusSold                PropertyStatus = "sold"
	StatusRented              PropertyStatus = "rented"
	StatusExpired             PropertyStatus = "expired"
	StatusRejected            PropertyStatus = "rejected"
)

// Property is the read model for a marketplace listing. The search core
// only ever reads these records; writes belong to the listing CRUD surface.
type Property struct {
	ID              string          `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Description     *string         `json:"description,omitempty" db:"description"`
	PropertyType    PropertyType    `json:"propertyType" db:"property_type"`
	ListingType     ListingType     `json:"listingType" db:"listing_type"`
	Status          PropertyStatus  `json:"status" db:"status"`
	Price           float64         `json:"price" db:"price"`
	Area            float64         `json:"area" db:"area"`
	Bedrooms        *int            `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms       *int            `json:"bathrooms,omitempty" db:"bathrooms"`
	Address         string          `json:"address" db:"address"`
	City            string          `json:"city" db:"city"`
	Locality        *string         `json:"locality,omitempty" db:"locality"`
	Landmark        *string         `json:"landmark,omitempty" db:"landmark"`
	Latitude        *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64        `json:"longitude,omitempty" db:"longitude"`
	Features        JSONMap         `json:"features,omitempty" db:"features"`
	Images          JSONArray       `json:"images,omitempty" db:"images"`
	ViewsCount      int             `json:"viewsCount" db:"views_count"`
	InterestedCount int             `json:"interestedCount" db:"interested_count"`
	IsFeatured      bool            `json:"isFeatured" db:"is_featured"`
	Embedding       pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	DeletedAt       *time.Time      `json:"-" db:"deleted_at"`
}

// RankedProperty is a Property decorated with ranking signals. Score fields
// stay nil when ranking came from the local fallback; their presence is how
// consumers detect that AI ranking was actually applied.
type RankedProperty struct {
	Property
	RelevanceScore  *float64 `json:"relevanceScore,omitempty"`
	UrgencyScore    *float64 `json:"urgencyScore,omitempty"`
	PopularityScore *float64 `json:"popularityScore,omitempty"`
	MatchReasons    []string `json:"matchReasons,omitempty"`
	ExtractedAiTags []string `json:"extractedAiTags,omitempty"`
}

// EmbeddingItem is a single embedding update for a property
type EmbeddingItem struct {
	PropertyID string    `json:"property_id" binding:"required"`
	Embedding  []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchRequest is a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingBatchResponse reports per-batch update outcome
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
