package service

import (
	"sort"

	"bhoomisetu/search/internal/model"
)

// DefaultRank orders candidates deterministically by the requested mode.
// No score fields are attached and match reasons stay empty, so consumers
// can tell this ordering came from the local fallback. The sort is stable:
// candidates that compare equal keep their store order.
func DefaultRank(candidates []model.Property, rankBy model.RankMode) []model.RankedProperty {
	ranked := make([]model.RankedProperty, 0, len(candidates))
	for _, prop := range candidates {
		ranked = append(ranked, model.RankedProperty{Property: prop})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch rankBy {
		case model.RankByPrice:
			return a.Price < b.Price
		case model.RankByPopularity:
			return a.ViewsCount > b.ViewsCount
		case model.RankByUrgency:
			return a.InterestedCount > b.InterestedCount
		case model.RankByNewest:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			// relevance: featured first, then views descending
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			return a.ViewsCount > b.ViewsCount
		}
	})

	return ranked
}
