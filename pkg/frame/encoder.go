package frame

import (
	"bufio"
	"encoding/json"
)

// Encoder writes frames to an open response body. Each frame is one JSON
// object followed by a single newline byte, flushed immediately so clients
// see chunks as they are produced rather than on stream close.
type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w *bufio.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// WriteSources must be called before the first WriteChunk of a turn.
func (e *Encoder) WriteSources(sources []Source) error {
	return e.Encode(SourcesFrame(sources))
}

func (e *Encoder) WriteTiming(searchTimeSeconds float64) error {
	return e.Encode(TimingFrame(searchTimeSeconds))
}

func (e *Encoder) WriteChunk(text string) error {
	return e.Encode(ChunkFrame(text))
}

func (e *Encoder) WriteError(message string) error {
	return e.Encode(ErrorFrame(message))
}
