package search

import (
	"sort"

	"ai-assistant-be/pkg/store"
)

// Merge combines result lists from multiple providers into one ranked,
// size-bounded list. Pure function. Ordering uses the best score any
// provider attached; a record with no score ranks as 0 without its nil
// fields ever being mutated. The sort is stable so rank ties keep
// provider order deterministic.
func Merge(limit int, lists ...[]store.SourceRecord) []store.SourceRecord {
	var merged []store.SourceRecord
	for _, list := range lists {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BestScore() > merged[j].BestScore()
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
