package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"bhoomisetu/search/internal/config"
	"bhoomisetu/search/internal/model"

	"go.uber.org/zap"
)

// RankingClient calls the external AI ranking service. Every failure mode
// collapses to an empty result; the pipeline reads that as "use the
// deterministic fallback" and never sees an error from this client.
type RankingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRankingClient creates a ranking client from service configuration
func NewRankingClient(cfg config.RankingConfig, logger *zap.Logger) *RankingClient {
	return &RankingClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type rankingLocation struct {
	City        string             `json:"city"`
	Locality    *string            `json:"locality,omitempty"`
	Coordinates *model.Coordinates `json:"coordinates,omitempty"`
}

type propertyForRanking struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Price           float64         `json:"price"`
	Location        rankingLocation `json:"location"`
	PropertyType    string          `json:"propertyType"`
	Bedrooms        *int            `json:"bedrooms,omitempty"`
	Bathrooms       *int            `json:"bathrooms,omitempty"`
	Area            float64         `json:"area"`
	Features        model.JSONMap   `json:"features,omitempty"`
	ViewsCount      int             `json:"viewsCount"`
	InterestedCount int             `json:"interestedCount"`
	CreatedAt       string          `json:"createdAt"`
	IsFeatured      bool            `json:"isFeatured"`
}

type rankingFilters struct {
	Location     *rankingLocation    `json:"location,omitempty"`
	PriceRange   *model.PriceRange   `json:"priceRange,omitempty"`
	PropertyType *model.PropertyType `json:"propertyType,omitempty"`
	Bedrooms     *int                `json:"bedrooms,omitempty"`
	Bathrooms    *int                `json:"bathrooms,omitempty"`
	AiTags       []string            `json:"aiTags,omitempty"`
}

type rankingRequest struct {
	UserQuery         string               `json:"userQuery"`
	Properties        []propertyForRanking `json:"properties"`
	Filters           rankingFilters       `json:"filters"`
	RankingPreference model.RankMode       `json:"rankingPreference"`
}

type rankingResponse struct {
	RankedProperties []struct {
		PropertyID      string   `json:"propertyId"`
		RelevanceScore  float64  `json:"relevanceScore"`
		UrgencyScore    *float64 `json:"urgencyScore,omitempty"`
		PopularityScore *float64 `json:"popularityScore,omitempty"`
		MatchReasons    []string `json:"matchReasons"`
		ExtractedAiTags []string `json:"extractedAiTags,omitempty"`
	} `json:"rankedProperties"`
}

// Rank sends the candidate set to the ranking service and returns the
// decorated candidates ordered by descending relevance, plus the
// de-duplicated union of extracted AI tags. On any failure both returns
// are empty.
func (c *RankingClient) Rank(ctx context.Context, query string, candidates []model.Property, req *model.SearchRequest) ([]model.RankedProperty, []string) {
	resp, err := c.callRankingService(ctx, query, candidates, req)
	if err != nil {
		c.logger.Log(degradedLevel(err), "AI ranking unavailable, using default ranking", zap.Error(err))
		return nil, nil
	}

	scores := make(map[string]int, len(resp.RankedProperties))
	for i, r := range resp.RankedProperties {
		scores[r.PropertyID] = i
	}

	ranked := make([]model.RankedProperty, 0, len(candidates))
	for _, prop := range candidates {
		result := model.RankedProperty{Property: prop, MatchReasons: []string{}}
		if idx, ok := scores[prop.ID]; ok {
			r := resp.RankedProperties[idx]
			relevance := r.RelevanceScore
			result.RelevanceScore = &relevance
			result.UrgencyScore = r.UrgencyScore
			result.PopularityScore = r.PopularityScore
			if r.MatchReasons != nil {
				result.MatchReasons = r.MatchReasons
			}
			result.ExtractedAiTags = r.ExtractedAiTags
		}
		ranked = append(ranked, result)
	}

	// Candidates the service did not score sort as relevance 0, but stay in
	// the result set.
	sort.SliceStable(ranked, func(i, j int) bool {
		return relevanceOf(ranked[i]) > relevanceOf(ranked[j])
	})

	return ranked, uniqueTags(ranked)
}

func (c *RankingClient) callRankingService(ctx context.Context, query string, candidates []model.Property, req *model.SearchRequest) (*rankingResponse, error) {
	payload := rankingRequest{
		UserQuery:         query,
		Properties:        make([]propertyForRanking, 0, len(candidates)),
		RankingPreference: req.RankingMode(),
	}

	for _, prop := range candidates {
		p := propertyForRanking{
			ID:              prop.ID,
			Title:           prop.Title,
			Description:     prop.Description,
			Price:           prop.Price,
			PropertyType:    string(prop.PropertyType),
			Bedrooms:        prop.Bedrooms,
			Bathrooms:       prop.Bathrooms,
			Area:            prop.Area,
			Features:        prop.Features,
			ViewsCount:      prop.ViewsCount,
			InterestedCount: prop.InterestedCount,
			CreatedAt:       prop.CreatedAt.Format(time.RFC3339),
			IsFeatured:      prop.IsFeatured,
			Location:        rankingLocation{City: prop.City, Locality: prop.Locality},
		}
		if prop.Latitude != nil && prop.Longitude != nil {
			p.Location.Coordinates = &model.Coordinates{Latitude: *prop.Latitude, Longitude: *prop.Longitude}
		}
		payload.Properties = append(payload.Properties, p)
	}

	if req.City != nil {
		payload.Filters.Location = &rankingLocation{City: *req.City}
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		payload.Filters.PriceRange = &model.PriceRange{Min: req.MinPrice, Max: req.MaxPrice}
	}
	payload.Filters.PropertyType = req.PropertyType
	payload.Filters.Bedrooms = req.Bedrooms
	payload.Filters.Bathrooms = req.Bathrooms
	payload.Filters.AiTags = req.AiTags

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal ranking request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/rank-results", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ranking request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking service returned status %d", httpResp.StatusCode)
	}

	var resp rankingResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode ranking response: %w", err)
	}
	if len(resp.RankedProperties) == 0 {
		return nil, fmt.Errorf("ranking service returned no results")
	}

	return &resp, nil
}

func relevanceOf(r model.RankedProperty) float64 {
	if r.RelevanceScore == nil {
		return 0
	}
	return *r.RelevanceScore
}

// uniqueTags returns the order-preserving union of extracted AI tags
func uniqueTags(ranked []model.RankedProperty) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, r := range ranked {
		for _, tag := range r.ExtractedAiTags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}
