package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"bhoomisetu/search/internal/metrics"
	"bhoomisetu/search/internal/model"
	"bhoomisetu/search/internal/repository"

	"go.uber.org/zap"
)

const (
	// similarTopN caps how many top-ranked prices feed the similarity band
	similarTopN = 10
	// similarLimit caps the similar-properties result count
	similarLimit = 20
	// defaultSimilarityThreshold reproduces the ±10% price band
	defaultSimilarityThreshold = 0.8
)

// locationPhrasePattern extracts an implied location from natural-language
// queries like "2BHK apartment in Hyderabad". The match overrides any
// structured location fields.
var locationPhrasePattern = regexp.MustCompile(`(?i)\b(in|near|at)\s+([A-Za-z\s]+?)(?:\s|$)`)

// Ranker orders a filtered candidate set. An empty return means the ranker
// could not produce an ordering and the caller should fall back.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []model.Property, req *model.SearchRequest) ([]model.RankedProperty, []string)
}

// SearchService runs the search pipeline: location normalization, hard
// filtering, ranking with fallback, similar properties, pagination.
type SearchService struct {
	store        repository.PropertyStore
	geocoder     LocationNormalizer
	ranker       Ranker
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// NewSearchService creates the search pipeline
func NewSearchService(
	store repository.PropertyStore,
	geocoder LocationNormalizer,
	ranker Ranker,
	logger *zap.Logger,
	defaultLimit, maxLimit int,
) *SearchService {
	return &SearchService{
		store:        store,
		geocoder:     geocoder,
		ranker:       ranker,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search runs the full pipeline for one request. Geocoding and ranking
// failures degrade silently; only a store failure during hard filtering
// fails the request.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()
	metrics.SearchRequestsTotal.Inc()
	req.Normalize(s.defaultLimit, s.maxLimit)

	normalizedLocation := s.normalizeLocation(ctx, req)

	candidates, err := s.applyHardFilters(ctx, req, normalizedLocation)
	if err != nil {
		s.logger.Error("property store query failed", zap.Error(err))
		return nil, err
	}

	ranked := DefaultRank(candidates, req.RankingMode())
	extractedFilters := s.extractFilters(req, normalizedLocation)
	aiRankingUsed := false

	if strings.TrimSpace(req.Query) != "" && len(candidates) > 0 {
		aiRanked, aiTags := s.ranker.Rank(ctx, req.Query, candidates, req)
		if len(aiRanked) > 0 {
			ranked = aiRanked
			extractedFilters.AiTags = aiTags
			aiRankingUsed = true
			metrics.RankingOutcomeTotal.WithLabelValues("ai").Inc()
		} else {
			metrics.RankingOutcomeTotal.WithLabelValues("fallback").Inc()
		}
	} else {
		metrics.RankingOutcomeTotal.WithLabelValues("skipped").Inc()
	}

	var similarProperties []model.RankedProperty
	if req.WantsSimilar() && len(ranked) > 0 {
		similarProperties = s.findSimilarProperties(ctx, ranked, req.SimilarityThreshold)
	}

	total := len(ranked)
	skip := (req.Page - 1) * req.Limit
	if skip > total {
		skip = total
	}
	end := skip + req.Limit
	if end > total {
		end = total
	}

	took := time.Since(startTime)
	metrics.SearchDuration.Observe(took.Seconds())

	return &model.SearchResponse{
		Properties:        ranked[skip:end],
		Total:             total,
		Page:              req.Page,
		Limit:             req.Limit,
		Query:             req.Query,
		ExtractedFilters:  extractedFilters,
		SimilarProperties: similarProperties,
		SearchMetadata: model.SearchMetadata{
			ProcessingTimeMs:       took.Milliseconds(),
			AiRankingUsed:          aiRankingUsed,
			LocationNormalized:     normalizedLocation != nil,
			SimilarPropertiesCount: len(similarProperties),
		},
	}, nil
}

// normalizeLocation builds a location phrase from structured fields and the
// free-text query, then geocodes it. With no phrase but raw coordinates on
// the request, a coordinates-only location is synthesized without geocoding.
// Returns nil when the request carries no location signal at all.
func (s *SearchService) normalizeLocation(ctx context.Context, req *model.SearchRequest) *model.NormalizedLocation {
	var parts []string
	if req.Area != nil && *req.Area != "" {
		parts = append(parts, *req.Area)
	}
	if req.Locality != nil && *req.Locality != "" {
		parts = append(parts, *req.Locality)
	}
	if req.City != nil && *req.City != "" {
		parts = append(parts, *req.City)
	}
	locationQuery := strings.Join(parts, ", ")

	if req.Query != "" {
		if m := locationPhrasePattern.FindStringSubmatch(req.Query); m != nil {
			locationQuery = strings.TrimSpace(m[2])
		}
	}

	if locationQuery != "" {
		return s.geocoder.Normalize(ctx, locationQuery)
	}

	if req.Latitude != nil && req.Longitude != nil {
		return &model.NormalizedLocation{
			Coordinates: model.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
			Confidence:  1.0,
		}
	}

	return nil
}

// applyHardFilters queries the store with the canonical predicate set and
// applies the radius post-filter. Store failures propagate: the candidate
// set is load-bearing.
func (s *SearchService) applyHardFilters(ctx context.Context, req *model.SearchRequest, loc *model.NormalizedLocation) ([]model.Property, error) {
	filters := &repository.HardFilters{
		ListingType:  req.ListingType,
		PropertyType: req.PropertyType,
		Area:         req.Area,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		MinArea:      req.MinArea,
		MaxArea:      req.MaxArea,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
	}

	// Geocoded fields win over the raw request fields.
	filters.City = req.City
	if loc != nil && loc.City != "" {
		city := loc.City
		filters.City = &city
	}
	filters.Locality = req.Locality
	if loc != nil && loc.Locality != nil && *loc.Locality != "" {
		filters.Locality = loc.Locality
	}

	candidates, err := s.store.SearchWithFilters(ctx, filters)
	if err != nil {
		return nil, err
	}

	if req.Latitude != nil && req.Longitude != nil && req.Radius != nil {
		candidates = filterByRadius(candidates, *req.Latitude, *req.Longitude, *req.Radius)
	}

	return candidates, nil
}

// filterByRadius drops candidates without coordinates, then those farther
// than radiusKm from the request point.
func filterByRadius(candidates []model.Property, lat, lon, radiusKm float64) []model.Property {
	var within []model.Property
	for _, prop := range candidates {
		if prop.Latitude == nil || prop.Longitude == nil {
			continue
		}
		if HaversineDistance(lat, lon, *prop.Latitude, *prop.Longitude) <= radiusKm {
			within = append(within, prop)
		}
	}
	return within
}

// findSimilarProperties derives a price band around the mean of the top
// ranked results and fetches live properties inside it. The band half-width
// comes from the similarity threshold; the 0.8 default gives ±10%. This
// stage is advisory: a store failure degrades to an empty list.
func (s *SearchService) findSimilarProperties(ctx context.Context, ranked []model.RankedProperty, threshold *float64) []model.RankedProperty {
	topN := len(ranked)
	if topN > similarTopN {
		topN = similarTopN
	}
	var sum float64
	for _, r := range ranked[:topN] {
		sum += r.Price
	}
	avgPrice := sum / float64(topN)

	t := defaultSimilarityThreshold
	if threshold != nil && *threshold >= 0 && *threshold <= 1 {
		t = *threshold
	}
	halfWidth := (1 - t) / 2

	similar, err := s.store.FindByPriceRange(ctx, avgPrice*(1-halfWidth), avgPrice*(1+halfWidth), similarLimit)
	if err != nil {
		s.logger.Warn("similar properties query failed", zap.Error(err))
		return nil
	}

	results := make([]model.RankedProperty, 0, len(similar))
	for _, prop := range similar {
		results = append(results, model.RankedProperty{Property: prop})
	}
	return results
}

// extractFilters assembles the response block describing what the pipeline
// filtered on, preferring geocoded location fields over the raw request.
func (s *SearchService) extractFilters(req *model.SearchRequest, loc *model.NormalizedLocation) model.ExtractedFilters {
	filters := model.ExtractedFilters{
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		AiTags:       req.AiTags,
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		filters.PriceRange = &model.PriceRange{Min: req.MinPrice, Max: req.MaxPrice}
	}

	location := &model.ExtractedLocation{
		City:     req.City,
		Locality: req.Locality,
	}
	if loc != nil {
		if loc.City != "" {
			city := loc.City
			location.City = &city
		}
		if loc.Locality != nil {
			location.Locality = loc.Locality
		}
		coords := loc.Coordinates
		location.Coordinates = &coords
		if loc.FormattedAddress != "" {
			formatted := loc.FormattedAddress
			location.NormalizedLocation = &formatted
		}
	}
	filters.Location = location

	return filters
}
