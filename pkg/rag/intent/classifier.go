package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-assistant-be/pkg/llm"
)

// Intent is the classified purpose of a user message. Computed once per
// turn before any retrieval or generation begins, never revised mid-turn.
type Intent string

const (
	IntentSearch      Intent = "search"
	IntentChat        Intent = "chat"
	IntentMyInfo      Intent = "my_info"
	IntentAiInfo      Intent = "ai_info"
	IntentUnsupported Intent = "unsupported"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentChat, IntentMyInfo, IntentAiInfo, IntentUnsupported:
		return true
	}
	return false
}

// Classifier gates which path the retrieval engine and response generator
// take. Single LLM call, closed output schema, no retries. Any failure
// falls open to the search intent: the most capable path is the safest
// default, and a misclassified turn is cheaper than a failed one.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
	timeout     time.Duration
}

func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
		timeout:     timeout,
	}
}

type classification struct {
	Intent string `json:"intent"`
}

// Classify resolves the message to one of the closed intent set.
func (c *Classifier) Classify(ctx context.Context, message string) Intent {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(message)

	// Temperature 0 for deterministic output.
	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Printf("[WARN] intent classification failed, defaulting to search: %v", err)
		return IntentSearch
	}

	resolved, err := parseClassification(response)
	if err != nil {
		c.logger.Printf("[WARN] intent parsing failed, defaulting to search: %v", err)
		return IntentSearch
	}

	c.logger.Printf("[INTENT] resolved: %s", resolved)
	return resolved
}

func buildPrompt(message string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are an intent classifier. Your ONLY job is to label the user's message.\n")
	prompt.WriteString("You do NOT answer the message. You only classify it.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<user_message>\n")
	prompt.WriteString(message)
	prompt.WriteString("\n</user_message>\n\n")

	prompt.WriteString("<intent_definitions>\n")
	prompt.WriteString("Choose exactly ONE:\n\n")
	prompt.WriteString("search: The user asks about their own documents, emails, meetings, files, or facts that need looking up\n")
	prompt.WriteString("  - 'what's in the Q3 deck?', 'when did Sara email me about the budget?'\n\n")
	prompt.WriteString("chat: Small talk or a general question needing no personal data\n")
	prompt.WriteString("  - 'good morning', 'write me a haiku'\n\n")
	prompt.WriteString("my_info: The user asks what the assistant knows about them or their account\n")
	prompt.WriteString("  - 'what do you know about me?'\n\n")
	prompt.WriteString("ai_info: The user asks about the assistant itself\n")
	prompt.WriteString("  - 'who are you?', 'what model are you?'\n\n")
	prompt.WriteString("unsupported: A request the assistant must decline (actions in the real world, destructive operations)\n")
	prompt.WriteString("</intent_definitions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\"intent\": \"search|chat|my_info|ai_info|unsupported\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseClassification(response string) (Intent, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return "", fmt.Errorf("no JSON found in response")
	}

	var c classification
	if err := json.Unmarshal([]byte(jsonContent), &c); err != nil {
		return "", fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	resolved := Intent(strings.ToLower(strings.TrimSpace(c.Intent)))
	if !resolved.Valid() {
		return "", fmt.Errorf("intent %q outside the closed set", c.Intent)
	}
	return resolved, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return response[startIdx : endIdx+1]
}
