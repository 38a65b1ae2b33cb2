// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-and-answer session",
	Long: `Chat opens a terminal session where questions are answered one at a
time by the full pipeline. Press Ctrl+C to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	// The TUI owns the terminal; keep log noise out of it.
	logger := newLogger().Level(zerolog.Disabled)

	eng, err := newEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	program := tea.NewProgram(tui.New(eng.coordinator), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat session: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
