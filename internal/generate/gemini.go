// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// GeminiBackend generates text through the Google Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini backend from the generation config.
func NewGemini(ctx context.Context, cfg types.GenerationConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	temperature := float32(cfg.Temperature)
	gc := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	return &GeminiBackend{
		client: client,
		model:  cfg.Model,
		config: gc,
	}, nil
}

// Name returns the provider tag.
func (b *GeminiBackend) Name() string { return "gemini" }

// Generate sends prompt to the configured Gemini model and returns the
// reply text.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, b.config)
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Gemini returned an empty response")
	}
	return text, nil
}
