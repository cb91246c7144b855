package client

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/pkg/frame"
	"ai-assistant-be/pkg/store"
)

type SessionState string

const (
	StateAwaitingSources SessionState = "AWAITING_SOURCES"
	StateStreaming       SessionState = "STREAMING"
	StateClosed          SessionState = "CLOSED"
	StateErrored         SessionState = "ERRORED"
)

// Finalizer persists a finished turn. The API client satisfies this.
type Finalizer interface {
	PersistTurn(ctx context.Context, threadId uuid.UUID, req *dto.PersistTurnRequest) (*dto.PersistTurnResponse, error)
}

// TurnSession accumulates the frames of one streamed turn and finalizes it
// at most once. It implements frame.Handler, so a Decoder can drive it
// directly from the wire. Safe for concurrent use: the decoder typically
// runs on a reader goroutine while the UI polls Snapshot.
type TurnSession struct {
	mu sync.Mutex

	query         string
	state         SessionState
	sources       []frame.Source
	reply         strings.Builder
	searchSeconds float64
	errMessage    string
	startedAt     time.Time
	finalized     bool

	onUpdate func()
	logger   *log.Logger
}

// NewTurnSession starts the turn clock. onUpdate fires after every state
// change and may be nil.
func NewTurnSession(query string, onUpdate func(), logger *log.Logger) *TurnSession {
	return &TurnSession{
		query:     query,
		state:     StateAwaitingSources,
		startedAt: time.Now(),
		onUpdate:  onUpdate,
		logger:    logger,
	}
}

// OnSources accepts only the first sources frame. The stream contract says
// there is exactly one; duplicates are logged and ignored rather than
// clobbering what the user already sees.
func (s *TurnSession) OnSources(sources []frame.Source) {
	s.mu.Lock()
	if s.state != StateAwaitingSources {
		s.mu.Unlock()
		s.logger.Printf("[WARN] duplicate or late sources frame ignored in state %s", s.state)
		return
	}
	s.sources = sources
	s.state = StateStreaming
	s.mu.Unlock()
	s.notify()
}

func (s *TurnSession) OnTiming(searchTimeSeconds float64) {
	s.mu.Lock()
	s.searchSeconds = searchTimeSeconds
	s.mu.Unlock()
	s.notify()
}

// OnChunk appends delta text in arrival order. Reply text equals the
// concatenation of every chunk received, regardless of how the transport
// split them.
func (s *TurnSession) OnChunk(text string) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateErrored {
		s.mu.Unlock()
		return
	}
	if s.state == StateAwaitingSources {
		s.state = StateStreaming
	}
	s.reply.WriteString(text)
	s.mu.Unlock()
	s.notify()
}

// OnError marks the turn failed. Partial reply text is preserved for
// display but the turn will not be persisted.
func (s *TurnSession) OnError(message string) {
	s.mu.Lock()
	s.state = StateErrored
	s.errMessage = message
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the current display state.
func (s *TurnSession) Snapshot() (state SessionState, sources []frame.Source, reply string, errMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.sources, s.reply.String(), s.errMessage
}

func (s *TurnSession) SearchSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchSeconds
}

// CloseStream ends the turn. On a clean stream it persists the turn
// exactly once, recording wall time from first byte of the question to
// stream close; an errored turn is never persisted, and repeat calls are
// no-ops.
func (s *TurnSession) CloseStream(ctx context.Context, finalizer Finalizer, threadId uuid.UUID) error {
	s.mu.Lock()
	if s.state == StateErrored {
		s.mu.Unlock()
		return nil
	}
	if s.finalized {
		s.mu.Unlock()
		return nil
	}
	s.finalized = true
	s.state = StateClosed

	completion := time.Since(s.startedAt).Seconds()
	req := &dto.PersistTurnRequest{
		Query:                 s.query,
		Reply:                 s.reply.String(),
		Sources:               toSourceRecords(s.sources),
		CompletionTimeSeconds: &completion,
	}
	s.mu.Unlock()
	s.notify()

	if finalizer == nil {
		return nil
	}
	if _, err := finalizer.PersistTurn(ctx, threadId, req); err != nil {
		s.logger.Printf("[ERROR] failed to persist turn: %v", err)
		return err
	}
	return nil
}

func (s *TurnSession) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func toSourceRecords(sources []frame.Source) []store.SourceRecord {
	records := make([]store.SourceRecord, len(sources))
	for i, src := range sources {
		records[i] = store.SourceRecord{
			Title: src.Title,
			URL:   src.URL,
			Type:  src.Type,
		}
	}
	return records
}
