// Package frame implements the newline-delimited streaming protocol between
// the answer service and its clients. One frame per line, one JSON object per
// frame, discriminated by the "type" field. Stream closure is the terminal
// signal; there is no explicit done frame.
package frame

// Frame type discriminants.
const (
	TypeSources = "sources"
	TypeTiming  = "timing"
	TypeChunk   = "chunk"
	TypeError   = "error"
)

// Source is the normalized source shape sent to clients. Full content is
// never re-sent over the stream.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Frame is the tagged variant written one-per-line on the wire. Only the
// fields for the given Type are populated.
type Frame struct {
	Type string `json:"type"`

	// TypeSources
	Sources []Source `json:"sources,omitempty"`

	// TypeTiming
	SearchTimeSeconds float64 `json:"searchTimeSeconds,omitempty"`

	// TypeChunk
	Text string `json:"text,omitempty"`

	// TypeError
	Message string `json:"message,omitempty"`
}

// SourcesFrame builds a sources frame. A non-search turn carries an empty
// (but present) source list.
func SourcesFrame(sources []Source) Frame {
	if sources == nil {
		sources = []Source{}
	}
	return Frame{Type: TypeSources, Sources: sources}
}

// TimingFrame carries elapsed retrieval time, independent of generation time.
func TimingFrame(searchTimeSeconds float64) Frame {
	return Frame{Type: TypeTiming, SearchTimeSeconds: searchTimeSeconds}
}

// ChunkFrame carries one token delta from the completion service.
func ChunkFrame(text string) Frame {
	return Frame{Type: TypeChunk, Text: text}
}

// ErrorFrame signals a generation failure; the stream closes right after it.
func ErrorFrame(message string) Frame {
	return Frame{Type: TypeError, Message: message}
}
