package frame

import (
	"bytes"
	"io"
	"log"
	"reflect"
	"testing"
)

type recordedEvent struct {
	kind    string
	sources []Source
	timing  float64
	text    string
	message string
}

type recordingHandler struct {
	events []recordedEvent
}

func (h *recordingHandler) OnSources(sources []Source) {
	h.events = append(h.events, recordedEvent{kind: "sources", sources: sources})
}

func (h *recordingHandler) OnTiming(s float64) {
	h.events = append(h.events, recordedEvent{kind: "timing", timing: s})
}

func (h *recordingHandler) OnChunk(text string) {
	h.events = append(h.events, recordedEvent{kind: "chunk", text: text})
}

func (h *recordingHandler) OnError(message string) {
	h.events = append(h.events, recordedEvent{kind: "error", message: message})
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func encodeAll(t *testing.T, frames []Frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(newBufWriter(&buf))
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return buf.Bytes()
}

func testFrames() []Frame {
	return []Frame{
		SourcesFrame([]Source{
			{Title: "Q3 planning deck", URL: "doc://q3-deck", Type: "document"},
			{Title: "Budget email", URL: "mail://123", Type: "email"},
		}),
		TimingFrame(0.42),
		ChunkFrame("The deck "),
		ChunkFrame("covers Q3 "),
		ChunkFrame("priorities."),
	}
}

// Reassembly must be chunk-boundary-independent: splitting the serialized
// bytes at any offsets yields the same event sequence as one whole feed.
func TestDecoderArbitrarySplits(t *testing.T) {
	wire := encodeAll(t, testFrames())

	whole := &recordingHandler{}
	d := NewDecoder(whole, discardLogger())
	d.Feed(wire)
	d.Close()

	splits := [][]int{
		{1},                  // almost everything in the second piece
		{7, 9, 15, 16, 40},   // mid-JSON cuts
		{len(wire) - 1},      // trailing newline alone
		{3, 4, 5, 6, 7, 8},   // many tiny pieces
		{len(wire) / 2},      // halves
		{1, 2, 3, len(wire)}, // out-of-range offsets are clamped
	}

	for _, offsets := range splits {
		h := &recordingHandler{}
		dec := NewDecoder(h, discardLogger())

		prev := 0
		for _, off := range offsets {
			if off > len(wire) {
				off = len(wire)
			}
			if off < prev {
				continue
			}
			dec.Feed(wire[prev:off])
			prev = off
		}
		dec.Feed(wire[prev:])
		dec.Close()

		if !reflect.DeepEqual(h.events, whole.events) {
			t.Errorf("splits %v: events diverge\n got %+v\nwant %+v", offsets, h.events, whole.events)
		}
	}
}

// Byte-at-a-time is the degenerate worst case of the same property.
func TestDecoderByteAtATime(t *testing.T) {
	wire := encodeAll(t, testFrames())

	h := &recordingHandler{}
	dec := NewDecoder(h, discardLogger())
	for i := range wire {
		dec.Feed(wire[i : i+1])
	}
	dec.Close()

	if len(h.events) != 5 {
		t.Fatalf("got %d events, want 5", len(h.events))
	}
	if h.events[0].kind != "sources" || len(h.events[0].sources) != 2 {
		t.Errorf("first event = %+v, want sources with 2 entries", h.events[0])
	}
}

// A 300-byte sources frame in 7 arbitrary pieces fires exactly one
// sources event with every source intact.
func TestDecoderSourcesFrameInSevenPieces(t *testing.T) {
	sources := []Source{
		{Title: "Quarterly results and commentary for the finance team", URL: "doc://finance/q3-results", Type: "document"},
		{Title: "Standup transcript", URL: "meet://standup-0817", Type: "meeting"},
		{Title: "Vendor renewal thread", URL: "mail://vendor-renewal", Type: "email"},
	}
	wire := encodeAll(t, []Frame{SourcesFrame(sources)})

	h := &recordingHandler{}
	dec := NewDecoder(h, discardLogger())

	pieces := 7
	step := len(wire) / pieces
	for i := 0; i < pieces; i++ {
		end := (i + 1) * step
		if i == pieces-1 {
			end = len(wire)
		}
		dec.Feed(wire[i*step : end])
	}
	dec.Close()

	if len(h.events) != 1 {
		t.Fatalf("got %d events, want exactly 1", len(h.events))
	}
	if !reflect.DeepEqual(h.events[0].sources, sources) {
		t.Errorf("sources = %+v, want %+v", h.events[0].sources, sources)
	}
}

func TestDecoderDispatch(t *testing.T) {
	tests := []struct {
		name       string
		wire       string
		wantKinds  []string
		wantChunks string
	}{
		{
			name:      "malformed line dropped, following lines survive",
			wire:      "{\"type\":\"sources\",\"sources\":[]}\n{not json}\n{\"type\":\"chunk\",\"text\":\"ok\"}\n",
			wantKinds: []string{"sources", "chunk"},
		},
		{
			name:      "unknown type dropped",
			wire:      "{\"type\":\"heartbeat\"}\n{\"type\":\"chunk\",\"text\":\"x\"}\n",
			wantKinds: []string{"chunk"},
		},
		{
			name:      "empty chunk text not dispatched",
			wire:      "{\"type\":\"chunk\",\"text\":\"\"}\n{\"type\":\"chunk\",\"text\":\"y\"}\n",
			wantKinds: []string{"chunk"},
		},
		{
			name:      "empty sources still dispatched",
			wire:      "{\"type\":\"sources\"}\n",
			wantKinds: []string{"sources"},
		},
		{
			name:      "error frame",
			wire:      "{\"type\":\"error\",\"message\":\"completion failed\"}\n",
			wantKinds: []string{"error"},
		},
		{
			name:      "blank lines skipped",
			wire:      "\n\n{\"type\":\"timing\",\"searchTimeSeconds\":1.5}\n",
			wantKinds: []string{"timing"},
		},
		{
			name:      "trailing partial never parsed",
			wire:      "{\"type\":\"chunk\",\"text\":\"a\"}\n{\"type\":\"chunk\",\"te",
			wantKinds: []string{"chunk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			dec := NewDecoder(h, discardLogger())
			dec.Feed([]byte(tt.wire))
			dec.Close()

			kinds := make([]string, len(h.events))
			for i, ev := range h.events {
				kinds[i] = ev.kind
			}
			if !reflect.DeepEqual(kinds, tt.wantKinds) {
				t.Errorf("kinds = %v, want %v", kinds, tt.wantKinds)
			}
		})
	}
}

// Concatenation law: replies equal the in-order concatenation of chunk text.
func TestDecoderChunkConcatenation(t *testing.T) {
	parts := []string{"Hel", "lo ", "wor", "ld", "!"}
	frames := make([]Frame, len(parts))
	for i, p := range parts {
		frames[i] = ChunkFrame(p)
	}
	wire := encodeAll(t, frames)

	h := &recordingHandler{}
	dec := NewDecoder(h, discardLogger())
	dec.Feed(wire)
	dec.Close()

	var got string
	for _, ev := range h.events {
		got += ev.text
	}
	if got != "Hello world!" {
		t.Errorf("concatenated reply = %q, want %q", got, "Hello world!")
	}
}
