package frame

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufWriter(w io.Writer) *bufio.Writer {
	return bufio.NewWriter(w)
}

func TestEncoderNewlineFraming(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(newBufWriter(&buf))

	assert.NoError(t, enc.WriteSources([]Source{{Title: "A", URL: "doc://a", Type: "document"}}))
	assert.NoError(t, enc.WriteTiming(0.8))
	assert.NoError(t, enc.WriteChunk("hi"))
	assert.NoError(t, enc.WriteError("boom"))

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 4, "one frame per line")
	assert.True(t, strings.HasSuffix(out, "\n"), "every frame is newline terminated")

	// Each frame carries its discriminant.
	assert.Contains(t, lines[0], `"type":"sources"`)
	assert.Contains(t, lines[1], `"type":"timing"`)
	assert.Contains(t, lines[2], `"type":"chunk"`)
	assert.Contains(t, lines[3], `"type":"error"`)
}

// Frames are flushed as written, not held until stream end. The typewriter
// behavior on the client depends on this.
func TestEncoderFlushesPerFrame(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(bufio.NewWriterSize(&buf, 64*1024))

	assert.NoError(t, enc.WriteChunk("first"))
	assert.Contains(t, buf.String(), "first", "chunk visible before any further writes")
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(newBufWriter(&buf))

	assert.NoError(t, enc.WriteSources(nil))
	assert.NoError(t, enc.WriteTiming(1.25))
	assert.NoError(t, enc.WriteChunk("token"))

	h := &recordingHandler{}
	dec := NewDecoder(h, discardLogger())
	dec.Feed(buf.Bytes())
	dec.Close()

	assert.Len(t, h.events, 3)
	assert.Equal(t, "sources", h.events[0].kind)
	assert.Empty(t, h.events[0].sources, "nil sources normalize to an empty list")
	assert.Equal(t, 1.25, h.events[1].timing)
	assert.Equal(t, "token", h.events[2].text)
}
