package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// NewGeminiClient opens a generative-ai-go client authenticated with apiKey.
// Extra options go after the key, so tests can swap the HTTP client.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*genai.Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// GeminiTextModel is an llms.Model over a Gemini text model. A request
// carries the model, the user message and the temperature; every other
// generation setting is left to the model's own defaults.
type GeminiTextModel struct {
	client *genai.Client
	model  string
}

var _ llms.Model = (*GeminiTextModel)(nil)

func NewGeminiTextModel(client *genai.Client, model string) *GeminiTextModel {
	return &GeminiTextModel{client: client, model: model}
}

func (g *GeminiTextModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}

// GenerateContent sends a single human message made of text parts. Only
// llms.WithModel and llms.WithTemperature are honored.
func (g *GeminiTextModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{Model: g.model}
	for _, opt := range options {
		opt(&opts)
	}

	if len(messages) != 1 || messages[0].Role != schema.ChatMessageTypeHuman {
		return nil, errors.New("expected exactly one human message")
	}
	parts := make([]genai.Part, 0, len(messages[0].Parts))
	for _, part := range messages[0].Parts {
		tc, ok := part.(llms.TextContent)
		if !ok {
			return nil, fmt.Errorf("unsupported message part %T", part)
		}
		parts = append(parts, genai.Text(tc.Text))
	}

	m := g.client.GenerativeModel(opts.Model)
	m.SetTemperature(float32(opts.Temperature))

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}

	var choices []*llms.ContentChoice
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		choices = append(choices, &llms.ContentChoice{
			Content:    text.String(),
			StopReason: candidate.FinishReason.String(),
		})
	}
	if len(choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// GeminiImageModel calls a Gemini image model through the same client.
type GeminiImageModel struct {
	client *genai.Client
	model  string
}

func NewGeminiImageModel(client *genai.Client, model string) *GeminiImageModel {
	return &GeminiImageModel{client: client, model: model}
}

// GenerateImage returns the first inline image part of the response.
func (g *GeminiImageModel) GenerateImage(ctx context.Context, prompt string, temperature float32) ([]byte, string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, "", err
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, blob.MIMEType, nil
			}
		}
	}
	return nil, "", ErrNoImage
}
