package frame

import (
	"bytes"
	"encoding/json"
	"log"
)

// Handler receives typed events as complete frames are decoded.
type Handler interface {
	OnSources(sources []Source)
	OnTiming(searchTimeSeconds float64)
	OnChunk(text string)
	OnError(message string)
}

// Decoder reassembles frames from raw transport reads. Chunk boundaries on
// the wire are not aligned with frame boundaries: a frame's JSON text may be
// split across arbitrarily many reads, so the decoder buffers bytes, only
// parses newline-terminated lines, and retains the trailing unterminated
// fragment for the next read.
type Decoder struct {
	handler Handler
	logger  *log.Logger
	buf     []byte
}

func NewDecoder(handler Handler, logger *log.Logger) *Decoder {
	return &Decoder{handler: handler, logger: logger}
}

// Feed appends one raw byte batch and dispatches every complete line.
// A malformed line is logged and dropped; it never corrupts buffer state
// for the lines that follow it.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)

	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]
		d.dispatch(line)
	}
}

// Close reports whether the stream ended cleanly. Leftover bytes mean the
// server died mid-frame; the partial frame is dropped, not parsed.
func (d *Decoder) Close() {
	if len(bytes.TrimSpace(d.buf)) > 0 {
		d.logger.Printf("[WARN] stream closed with %d bytes of partial frame, dropped", len(d.buf))
	}
	d.buf = nil
}

func (d *Decoder) dispatch(line []byte) {
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}

	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		d.logger.Printf("[WARN] dropping malformed frame line: %v", err)
		return
	}

	switch f.Type {
	case TypeSources:
		sources := f.Sources
		if sources == nil {
			sources = []Source{}
		}
		d.handler.OnSources(sources)
	case TypeTiming:
		d.handler.OnTiming(f.SearchTimeSeconds)
	case TypeChunk:
		if f.Text != "" {
			d.handler.OnChunk(f.Text)
		}
	case TypeError:
		d.handler.OnError(f.Message)
	default:
		d.logger.Printf("[WARN] dropping frame with unknown type %q", f.Type)
	}
}
