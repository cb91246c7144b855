package search

import "math"

// memoryIndex is a throwaway brute-force nearest-neighbor index over the
// chunks of one fetched page. Built once per candidate, queried once,
// discarded.
type memoryIndex struct {
	chunks  []string
	vectors [][]float32
}

func newMemoryIndex(chunks []string, vectors [][]float32) *memoryIndex {
	n := len(chunks)
	if len(vectors) < n {
		n = len(vectors)
	}
	return &memoryIndex{chunks: chunks[:n], vectors: vectors[:n]}
}

// Best returns the chunk most similar to the query vector and its cosine
// similarity. ok is false when the index is empty.
func (m *memoryIndex) Best(query []float32) (chunk string, score float64, ok bool) {
	bestIdx := -1
	bestScore := math.Inf(-1)

	for i, vec := range m.vectors {
		s := cosineSimilarity(query, vec)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return "", 0, false
	}
	return m.chunks[bestIdx], bestScore, true
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
