package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryIndexBest(t *testing.T) {
	idx := newMemoryIndex(
		[]string{"about cats", "about walruses", "about dogs"},
		[][]float32{{0, 1}, {1, 0}, {0.5, 0.5}},
	)

	chunk, score, ok := idx.Best([]float32{1, 0})
	assert.True(t, ok)
	assert.Equal(t, "about walruses", chunk)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestMemoryIndexEmpty(t *testing.T) {
	_, _, ok := newMemoryIndex(nil, nil).Best([]float32{1})
	assert.False(t, ok)
}

func TestMemoryIndexMismatchedLengths(t *testing.T) {
	// Extra chunks without vectors are ignored rather than panicking.
	idx := newMemoryIndex([]string{"a", "b"}, [][]float32{{1, 0}})
	chunk, _, ok := idx.Best([]float32{1, 0})
	assert.True(t, ok)
	assert.Equal(t, "a", chunk)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
