// Package summary wraps the text-generation collaborator behind a single
// Summarize call. The core treats it as opaque: one prompt plus optional
// context in, generated text or an error out. No streaming, no retries.
package summary

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Summarizer generates report text using Google's Gemini API.
type Summarizer struct {
	client *genai.Client
	model  string
}

// NewSummarizer creates a summarizer. The API key is required; an empty model
// gets a sensible default.
func NewSummarizer(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("summary: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("summary: create client: %w", err)
	}
	return &Summarizer{client: client, model: model}, nil
}

// Summarize runs one generation call over the prompt and optional context
// string and returns the generated text.
func (s *Summarizer) Summarize(ctx context.Context, prompt, contextText string) (string, error) {
	full := prompt
	if strings.TrimSpace(contextText) != "" {
		full = prompt + "\n\nContext:\n" + contextText
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(full), nil)
	if err != nil {
		return "", fmt.Errorf("summary: generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("summary: empty response")
	}
	return text, nil
}
