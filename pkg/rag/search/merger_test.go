package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-assistant-be/pkg/store"
)

func TestMergeOrdersByBestScoreAcrossProviders(t *testing.T) {
	memories := []store.SourceRecord{
		{Title: "project retro notes", Type: store.SourceTypeMemory, Similarity: store.Score(0.9)},
	}
	index := []store.SourceRecord{
		{Title: "Q3 budget.xlsx", Type: store.SourceTypeDocument, HybridScore: store.Score(0.7)},
	}
	web := []store.SourceRecord{
		{Title: "vendor pricing page", Type: store.SourceTypeWeb, Similarity: store.Score(0.6)},
	}

	merged := Merge(4, memories, index, web)

	assert.Len(t, merged, 3)
	assert.Equal(t, "project retro notes", merged[0].Title)
	assert.Equal(t, "Q3 budget.xlsx", merged[1].Title)
	assert.Equal(t, "vendor pricing page", merged[2].Title)
}

func TestMergeNilScoresRankLastWithoutMutation(t *testing.T) {
	scored := []store.SourceRecord{
		{Title: "scored", TextRank: store.Score(0.1)},
	}
	unscored := []store.SourceRecord{
		{Title: "unscored"},
	}

	merged := Merge(4, unscored, scored)

	assert.Equal(t, "scored", merged[0].Title)
	assert.Equal(t, "unscored", merged[1].Title)

	// Ranking must not fabricate scores on the records themselves.
	assert.Nil(t, merged[1].Similarity)
	assert.Nil(t, merged[1].TextRank)
	assert.Nil(t, merged[1].HybridScore)
}

func TestMergeTiesKeepProviderOrder(t *testing.T) {
	first := []store.SourceRecord{
		{Title: "a", Similarity: store.Score(0.5)},
		{Title: "b", Similarity: store.Score(0.5)},
	}
	second := []store.SourceRecord{
		{Title: "c", Similarity: store.Score(0.5)},
	}

	for i := 0; i < 20; i++ {
		merged := Merge(4, first, second)
		assert.Equal(t, []string{"a", "b", "c"}, []string{merged[0].Title, merged[1].Title, merged[2].Title})
	}
}

func TestMergeTruncatesToLimit(t *testing.T) {
	var list []store.SourceRecord
	for i := 0; i < 10; i++ {
		list = append(list, store.SourceRecord{Title: "r", Similarity: store.Score(float64(i) / 10)})
	}

	merged := Merge(4, list)
	assert.Len(t, merged, 4)
}

func TestMergeEmptyInput(t *testing.T) {
	assert.Empty(t, Merge(4))
	assert.Empty(t, Merge(4, nil, nil))
}

func TestMergeUsesHighestOfMultipleScores(t *testing.T) {
	hybrid := []store.SourceRecord{
		{Title: "hybrid wins", TextRank: store.Score(0.2), HybridScore: store.Score(0.95)},
	}
	similar := []store.SourceRecord{
		{Title: "similarity only", Similarity: store.Score(0.8)},
	}

	merged := Merge(4, similar, hybrid)
	assert.Equal(t, "hybrid wins", merged[0].Title)
}
