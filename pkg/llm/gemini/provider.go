package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ai-assistant-be/pkg/llm"
)

// GeminiProvider implements LLMProvider on the official genai SDK.
type GeminiProvider struct {
	ApiKey    string
	ModelName string
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
	}
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	client, model, contents, config, err := g.prepare(ctx, history, opts)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return resp.Text(), nil
}

// ChatStream forwards each streamed candidate text as one delta.
func (g *GeminiProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta llm.StreamHandler, opts ...llm.Option) error {
	client, model, contents, config, err := g.prepare(ctx, history, opts)
	if err != nil {
		return err
	}

	for chunk, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		if text := chunk.Text(); text != "" {
			if err := onDelta(text); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (g *GeminiProvider) prepare(
	ctx context.Context,
	history []llm.Message,
	opts []llm.Option,
) (*genai.Client, string, []*genai.Content, *genai.GenerateContentConfig, error) {

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, "", nil, nil, fmt.Errorf("gemini client init failed: %w", err)
	}

	options := llm.ApplyOptions(llm.Options{Temperature: 0.7}, opts)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(options.Temperature)),
	}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}

	var contents []*genai.Content
	for _, msg := range history {
		switch msg.Role {
		case "system":
			// Gemini models system text as a separate instruction, not a turn.
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: msg.Content}},
			}
		case "assistant", "model":
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	return client, model, contents, config, nil
}
