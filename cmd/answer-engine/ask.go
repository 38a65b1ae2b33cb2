// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Long: `Ask runs the full three-stage pipeline for a single question and prints
the final answer to stdout. The question is taken from the arguments, joined
with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	ctx := context.Background()
	logger := newLogger()

	eng, err := newEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	result := eng.coordinator.Run(ctx, question)
	if !result.Success {
		return fmt.Errorf("answering failed: %s", result.ErrorMessage)
	}

	fmt.Println(result.Content)
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
