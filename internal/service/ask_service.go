package service

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/frame"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/rag/intent"
	"ai-assistant-be/pkg/rag/search"
	"ai-assistant-be/pkg/store"
)

type IAskService interface {
	Stream(ctx context.Context, userId uuid.UUID, req *dto.AskStreamRequest, w *bufio.Writer)
}

type askService struct {
	classifier        *intent.Classifier
	engine            *search.Engine
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	logger            logger.ILogger
}

func NewAskService(
	classifier *intent.Classifier,
	engine *search.Engine,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	sysLogger logger.ILogger,
) IAskService {
	return &askService{
		classifier:        classifier,
		engine:            engine,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		logger:            sysLogger,
	}
}

// Stream runs one turn end to end and writes newline-delimited frames to w.
// Frame order is fixed: sources, timing, then chunks; an error frame may
// appear at any point and ends the stream. All errors are reported in-band,
// the function itself never fails.
func (s *askService) Stream(ctx context.Context, userId uuid.UUID, req *dto.AskStreamRequest, w *bufio.Writer) {
	enc := frame.NewEncoder(w)

	detected := s.classifier.Classify(ctx, req.Message)
	s.logger.Info("ask", "intent classified", map[string]interface{}{
		"intent":  string(detected),
		"user_id": userId.String(),
	})

	if detected == intent.IntentUnsupported {
		s.streamCanned(enc, constant.UnsupportedReplyV1)
		return
	}

	var sources []store.SourceRecord
	searchSeconds := 0.0

	if detected == intent.IntentSearch || detected == intent.IntentMyInfo {
		started := time.Now()
		sources = s.retrieve(ctx, userId, req, detected)
		searchSeconds = time.Since(started).Seconds()
	}

	if err := enc.WriteSources(toFrameSources(sources)); err != nil {
		s.logger.Warn("ask", "client gone before sources frame", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := enc.WriteTiming(searchSeconds); err != nil {
		return
	}

	history := s.buildHistory(detected, req, sources)

	err := s.llmProvider.ChatStream(ctx, history, func(delta string) error {
		return enc.WriteChunk(delta)
	})
	if err != nil {
		s.logger.Error("ask", "llm stream failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userId.String(),
		})
		_ = enc.WriteError("The assistant could not finish its reply. Please try again.")
	}
}

// retrieve embeds the query and fans out to the enabled providers.
// my_info narrows retrieval to the memory store.
func (s *askService) retrieve(ctx context.Context, userId uuid.UUID, req *dto.AskStreamRequest, detected intent.Intent) []store.SourceRecord {
	var queryVec []float32
	res, err := s.embeddingProvider.Generate(ctx, req.Message, embedding.TaskRetrievalQuery)
	if err != nil {
		s.logger.Warn("ask", "query embedding failed, vector providers skipped", map[string]interface{}{"error": err.Error()})
	} else {
		queryVec = res.Embedding.Values
	}

	opts := search.Options{
		EnabledSourceTypes: req.EnabledSourceTypes,
		LiveWebEnabled:     req.LiveWebEnabled,
	}
	if detected == intent.IntentMyInfo {
		opts = search.Options{EnabledSourceTypes: []string{store.SourceTypeMemory}}
	}

	return s.engine.Retrieve(ctx, userId, req.Message, queryVec, opts)
}

func (s *askService) buildHistory(detected intent.Intent, req *dto.AskStreamRequest, sources []store.SourceRecord) []llm.Message {
	var history []llm.Message

	switch detected {
	case intent.IntentSearch:
		history = append(history, llm.Message{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.GroundedAnswerSystemPromptV1 + "\n\n" + renderSources(sources),
		})
	case intent.IntentMyInfo:
		history = append(history, llm.Message{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.MyInfoSystemPromptV1 + "\n\n" + renderSources(sources),
		})
	case intent.IntentAiInfo:
		history = append(history, llm.Message{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.AiInfoSystemPromptV1,
		})
	default:
		history = append(history, llm.Message{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.PlainChatSystemPromptV1,
		})
	}

	for _, msg := range req.Context {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{Role: constant.ChatMessageRoleUser, Content: req.Message})
	return history
}

// streamCanned answers without an LLM call. The frame order contract still
// holds: empty sources, zero timing, then the reply.
func (s *askService) streamCanned(enc *frame.Encoder, reply string) {
	if err := enc.WriteSources(nil); err != nil {
		return
	}
	if err := enc.WriteTiming(0); err != nil {
		return
	}
	_ = enc.WriteChunk(reply)
}

func renderSources(sources []store.SourceRecord) string {
	if len(sources) == 0 {
		return "<sources>\n(no sources found)\n</sources>"
	}

	var sb strings.Builder
	sb.WriteString("<sources>\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("<source index=\"%d\" title=\"%s\" type=\"%s\">\n", i+1, src.Title, src.Type))
		sb.WriteString(src.Content)
		sb.WriteString("\n</source>\n")
	}
	sb.WriteString("</sources>")
	return sb.String()
}

func toFrameSources(sources []store.SourceRecord) []frame.Source {
	out := make([]frame.Source, len(sources))
	for i, src := range sources {
		out[i] = frame.Source{
			Title: src.Title,
			URL:   src.URL,
			Type:  src.Type,
		}
	}
	return out
}
