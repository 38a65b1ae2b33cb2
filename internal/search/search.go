// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search answers queries from two providers: the local knowledge
// store and the live web through the Serper API. Both satisfy the same Tool
// contract but score on different scales: local results carry a vector
// distance, web results carry fixed tiers. The Source field tells them
// apart; the scores are not comparable across providers.
package search

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// KnowledgeStore is the slice of the knowledge layer the local tool queries.
type KnowledgeStore interface {
	Query(ctx context.Context, text string, topN int) (content string, best float64)
}

// Tool is a single search provider. Search returns found content and a
// relevance score; failures surface as descriptive content with an infinite
// score, never as errors.
type Tool interface {
	Name() types.Source
	Search(ctx context.Context, query string) (content string, score float64)
}

// Run executes tool and wraps its outcome in a SearchResult carrying query
// metadata. A panicking tool yields a failed result instead of unwinding
// into the caller.
func Run(ctx context.Context, tool Tool, query string) (result types.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			result = types.SearchResult{
				Content:  "Search failed: " + msg,
				Score:    math.Inf(1),
				Source:   tool.Name(),
				Metadata: map[string]string{"error": msg},
			}
		}
	}()

	content, score := tool.Search(ctx, query)
	return types.SearchResult{
		Content: content,
		Score:   score,
		Source:  tool.Name(),
		Metadata: map[string]string{
			"query":     query,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// LocalTool searches the on-disk knowledge store.
type LocalTool struct {
	Store KnowledgeStore
	TopN  int
	// Threshold is the largest distance still considered a relevant match.
	Threshold float64
}

// Name returns the provider identifier.
func (t *LocalTool) Name() types.Source { return types.SourceLocal }

// Search queries the knowledge store and passes real matches through with
// their distance. Empty or trivially short content reports no results.
func (t *LocalTool) Search(ctx context.Context, query string) (string, float64) {
	content, best := t.Store.Query(ctx, query, t.TopN)
	if len(strings.TrimSpace(content)) > 10 {
		return content, best
	}
	return "No relevant information found in local database.", math.Inf(1)
}

// Relevant reports whether score clears the distance threshold. Lower
// scores are closer matches.
func (t *LocalTool) Relevant(score float64) bool {
	return score <= t.Threshold
}

// WebTool searches the web through Serper and scrapes the first hit.
type WebTool struct {
	Client  *SerperClient
	Fetcher *Fetcher
	// Qualifier is prepended to every query to keep results on topic.
	Qualifier string
	MaxURLs   int
	Excluded  []string
}

// Name returns the provider identifier.
func (t *WebTool) Name() types.Source { return types.SourceWeb }

// Search runs the qualified query through Serper and scrapes the first
// non-excluded result. A clean scrape scores 1.0; a degraded one (scraper
// failure or near-empty page) scores 2.0 so callers can retry; search-level
// failures score infinite.
func (t *WebTool) Search(ctx context.Context, query string) (string, float64) {
	qualified := query
	if t.Qualifier != "" {
		qualified = t.Qualifier + " " + query
	}

	urls, err := t.Client.SearchURLs(ctx, qualified, t.MaxURLs, t.Excluded)
	if err != nil {
		return "Web search service unavailable. Please rely on local database information.", math.Inf(1)
	}
	if len(urls) == 0 {
		return "No web search results found.", math.Inf(1)
	}

	scraped := t.Fetcher.Fetch(ctx, urls[0])
	if strings.Contains(scraped, scraperErrorPrefix) || strings.Contains(scraped, scrapeFailedPrefix) {
		return "Web scraping temporarily unavailable due to service issues.", 2.0
	}
	if len(strings.TrimSpace(scraped)) < 20 {
		return fmt.Sprintf("Limited web results found for: %s", query), 2.0
	}
	return scraped, 1.0
}
