package service

import (
	"context"
	"testing"

	"bhoomisetu/search/internal/model"
	"bhoomisetu/search/internal/repository"

	"go.uber.org/zap"
)

type fakeKV struct {
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

type fixedGeocoder struct {
	result *model.NormalizedLocation
	calls  int
}

func (f *fixedGeocoder) Normalize(context.Context, string) *model.NormalizedLocation {
	f.calls++
	out := *f.result
	return &out
}

func TestCachedGeocoderReadThrough(t *testing.T) {
	inner := &fixedGeocoder{result: &model.NormalizedLocation{
		FormattedAddress: "Hyderabad, Telangana, India",
		City:             "Hyderabad",
		State:            "Telangana",
		Country:          "India",
		Coordinates:      model.Coordinates{Latitude: 17.385, Longitude: 78.4867},
		Confidence:       0.9,
		Source:           model.GeocodeSourceGoogle,
	}}
	cached := NewCachedGeocoder(inner, newFakeKV(), zap.NewNop())

	first := cached.Normalize(context.Background(), "Hyderabad")
	if first.Source != model.GeocodeSourceGoogle {
		t.Fatalf("miss should pass through provider source, got %q", first.Source)
	}

	second := cached.Normalize(context.Background(), "Hyderabad")
	if inner.calls != 1 {
		t.Fatalf("inner geocoder called %d times, want 1", inner.calls)
	}
	if second.Source != model.GeocodeSourceCache {
		t.Errorf("hit source = %q, want cache", second.Source)
	}
	if second.City != "Hyderabad" || second.Coordinates.Latitude != 17.385 {
		t.Errorf("cached fields lost: %+v", second)
	}
}

func TestCachedGeocoderKeyNormalization(t *testing.T) {
	inner := &fixedGeocoder{result: &model.NormalizedLocation{
		City: "Pune", Confidence: 0.9, Source: model.GeocodeSourceGoogle,
	}}
	cached := NewCachedGeocoder(inner, newFakeKV(), zap.NewNop())

	cached.Normalize(context.Background(), "Pune")
	cached.Normalize(context.Background(), "  PUNE ")
	if inner.calls != 1 {
		t.Errorf("case/whitespace variants should share a cache entry, inner called %d times", inner.calls)
	}
}

func TestCachedGeocoderSkipsDegradedResults(t *testing.T) {
	// Local-parse results must not be cached so providers get retried.
	inner := &fixedGeocoder{result: &model.NormalizedLocation{
		City: "Kochi", Confidence: 0.5, Source: model.GeocodeSourceCache,
	}}
	kv := newFakeKV()
	cached := NewCachedGeocoder(inner, kv, zap.NewNop())

	cached.Normalize(context.Background(), "Kochi")
	if len(kv.data) != 0 {
		t.Error("degraded parse result must not be written to the cache")
	}

	cached.Normalize(context.Background(), "Kochi")
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2 (no cache hit)", inner.calls)
	}
}
