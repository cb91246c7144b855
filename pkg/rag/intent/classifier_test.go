package intent

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-assistant-be/pkg/llm"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, onDelta llm.StreamHandler, opts ...llm.Option) error {
	return s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     Intent
	}{
		{
			name:     "clean search classification",
			response: `{"intent": "search"}`,
			want:     IntentSearch,
		},
		{
			name:     "ai_info with surrounding prose",
			response: "Sure, here is the label:\n{\"intent\": \"ai_info\"}\nDone.",
			want:     IntentAiInfo,
		},
		{
			name:     "uppercase normalized",
			response: `{"intent": "CHAT"}`,
			want:     IntentChat,
		},
		{
			name:     "my_info",
			response: `{"intent": "my_info"}`,
			want:     IntentMyInfo,
		},
		{
			name:     "unsupported",
			response: `{"intent": "unsupported"}`,
			want:     IntentUnsupported,
		},
		{
			name:     "service error falls open to search",
			err:      errors.New("connection refused"),
			want:     IntentSearch,
		},
		{
			name:     "garbage output falls open to search",
			response: "I think the user wants to search for things",
			want:     IntentSearch,
		},
		{
			name:     "label outside the closed set falls open to search",
			response: `{"intent": "summarize"}`,
			want:     IntentSearch,
		},
		{
			name:     "empty response falls open to search",
			response: "",
			want:     IntentSearch,
		},
	}

	logger := log.New(io.Discard, "", 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&stubLLM{response: tt.response, err: tt.err}, logger, 0)
			got := c.Classify(context.Background(), "whatever the user said")
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
