package store

// Source type enum. Memory sources come from the per-user vector store,
// the rest from the external document/email index or live web search.
const (
	SourceTypeDocument = "document"
	SourceTypeEmail    = "email"
	SourceTypeMeeting  = "meeting"
	SourceTypeWeb      = "web"
	SourceTypeMemory   = "memory"
)

// SourceRecord is one ranked retrieval result attached to a turn.
// Score fields not produced by a provider stay nil, they are never fabricated.
// Immutable once produced by the retrieval engine.
type SourceRecord struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Type        string   `json:"type"`
	Content     string   `json:"content,omitempty"`
	Similarity  *float64 `json:"similarity"`
	TextRank    *float64 `json:"textRank"`
	HybridScore *float64 `json:"hybridScore"`
	From        string   `json:"from,omitempty"`
}

// BestScore returns the highest score any provider produced for this record.
// A record with no scores ranks lowest (0). Used for ordering only.
func (s SourceRecord) BestScore() float64 {
	best := 0.0
	for _, v := range []*float64{s.Similarity, s.TextRank, s.HybridScore} {
		if v != nil && *v > best {
			best = *v
		}
	}
	return best
}

// RetrievalCandidate is an item entering the fetch-embed-rank unit.
// Either Text is already present (skip fetch) or only Link is set.
// Transient, exists only during one retrieval pass.
type RetrievalCandidate struct {
	Title string
	Link  string
	Text  string
	From  string
}

// Score pins a float64 so a provider can attach it to a SourceRecord.
func Score(v float64) *float64 {
	return &v
}
