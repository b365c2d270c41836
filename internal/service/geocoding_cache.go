package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"bhoomisetu/search/internal/metrics"
	"bhoomisetu/search/internal/model"
	"bhoomisetu/search/internal/repository"

	"go.uber.org/zap"
)

const geocodeCachePrefix = "bhoomisetu:geocode:"

// LocationNormalizer is what the pipeline needs from a geocoder
type LocationNormalizer interface {
	Normalize(ctx context.Context, locationText string) *model.NormalizedLocation
}

// kvStore is the consumer interface for the geocode cache
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedGeocoder is a read-through cache around a geocoder. Replayed hits
// carry the "cache" source tag regardless of the producing provider.
// Degraded local-parse results are not cached so a provider that comes
// back online is retried on the next request.
type CachedGeocoder struct {
	inner  LocationNormalizer
	store  kvStore
	logger *zap.Logger
}

// NewCachedGeocoder creates the caching decorator
func NewCachedGeocoder(inner LocationNormalizer, store kvStore, logger *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, store: store, logger: logger}
}

// Normalize returns a cached location or delegates to the inner geocoder
func (c *CachedGeocoder) Normalize(ctx context.Context, locationText string) *model.NormalizedLocation {
	key := cacheKey(locationText)

	if loc, ok := c.getCached(ctx, key); ok {
		metrics.GeocodeCacheTotal.WithLabelValues("hit").Inc()
		loc.Source = model.GeocodeSourceCache
		return loc
	}
	metrics.GeocodeCacheTotal.WithLabelValues("miss").Inc()

	loc := c.inner.Normalize(ctx, locationText)
	if loc != nil && loc.Confidence > parseConfidence {
		c.putCached(ctx, key, loc)
	}
	return loc
}

func (c *CachedGeocoder) getCached(ctx context.Context, key string) (*model.NormalizedLocation, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			c.logger.Warn("failed to read geocode cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var loc model.NormalizedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		c.logger.Warn("failed to parse cached location", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &loc, true
}

func (c *CachedGeocoder) putCached(ctx context.Context, key string, loc *model.NormalizedLocation) {
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.logger.Warn("failed to write geocode cache", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(locationText string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(locationText))))
	return geocodeCachePrefix + hex.EncodeToString(h[:])
}
