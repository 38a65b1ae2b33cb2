// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/answer-engine/pkg/types"
)

func TestNewSelectsClaude(t *testing.T) {
	b, err := New(context.Background(), types.GenerationConfig{
		Provider: "claude",
		Model:    "claude-sonnet-4-5",
		APIKey:   "k",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Name() != "claude" {
		t.Errorf("Name() = %q, want claude", b.Name())
	}
	if _, ok := b.(*ClaudeBackend); !ok {
		t.Errorf("backend type = %T, want *ClaudeBackend", b)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), types.GenerationConfig{Provider: "gpt2"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unsupported generation provider") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), types.GenerationConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
	})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %q", err.Error())
	}
}
