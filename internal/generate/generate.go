// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate calls hosted text-generation APIs behind a single
// Backend interface. The pipeline treats generation as opaque: prompt in,
// text out, error when the provider fails or returns nothing.
package generate

import (
	"context"
	"fmt"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Backend generates text from a prompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// New returns the backend selected by cfg.Provider.
func New(ctx context.Context, cfg types.GenerationConfig) (Backend, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg)
	case "claude":
		return NewClaude(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
