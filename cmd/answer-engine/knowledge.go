// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/knowledge"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the local knowledge base (load, count, query, export)",
	Long: `Knowledge manages the local knowledge base the research stage searches
first. Use subcommands to load source text files, count indexed blocks,
try a similarity query, or export the stored blocks.`,
}

// --- load subcommand ---

var knowledgeLoadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Load knowledge blocks from a directory of text files",
	Long: `Load reads every .txt file in the directory, splits file contents on
"---" separator lines, and indexes each block of at least 20 characters.
Loading is idempotent: a store that already holds blocks is left unchanged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKnowledgeLoad,
}

func runKnowledgeLoad(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	sourceDir := cfg.Knowledge.SourceDir
	if len(args) > 0 {
		sourceDir = args[0]
	}

	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Load(context.Background(), sourceDir, os.Stdout)
	return err
}

// --- count subcommand ---

var knowledgeCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of indexed knowledge blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

// --- query subcommand ---

var knowledgeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Run a similarity query against the knowledge base",
	Long: `Query scores the indexed blocks against the given text and prints the
closest matches with their distances. Lower distances are better matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeQuery,
}

func runKnowledgeQuery(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		content := r.Content
		if len(content) > 120 {
			content = content[:117] + "..."
		}
		fmt.Printf("%-4d  %-8s  %6.3f  %s\n", i+1, r.ID, r.Distance, content)
	}
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	RunE:  runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := loadConfig()
	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.Knowledge.IndexDir)
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.Knowledge.IndexDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// openStore opens the knowledge store with the configured index location.
func openStore() (*knowledge.Store, error) {
	cfg := loadConfig()
	return knowledge.NewStore(cfg.Knowledge)
}

func init() {
	knowledgeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use configured top_n)")
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	knowledgeCmd.AddCommand(knowledgeLoadCmd)
	knowledgeCmd.AddCommand(knowledgeCountCmd)
	knowledgeCmd.AddCommand(knowledgeQueryCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
