// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared configuration and data structures passed
// between the knowledge, search, pipeline, and API layers.
package types

// Source identifies which search provider produced a result.
type Source string

const (
	// SourceLocal marks results from the local knowledge store.
	SourceLocal Source = "local_database"

	// SourceWeb marks results from the web search path.
	SourceWeb Source = "web_search"
)

// SearchResult is the uniform output of every search provider.
//
// Score semantics depend on the source. Local results carry a vector distance
// where lower is better and +Inf means nothing usable was found. Web results
// use fixed tiers: 1.0 for a successful fetch, 2.0 for degraded service, and
// +Inf for total failure.
type SearchResult struct {
	// Content is the retrieved text, or a fixed sentinel message when the
	// provider could not produce real content.
	Content string `json:"content" yaml:"content"`

	// Score is the provider-specific relevance score for Content.
	Score float64 `json:"relevance_score" yaml:"relevance_score"`

	// Source identifies the provider that produced this result.
	Source Source `json:"source" yaml:"source"`

	// Metadata records the query and an RFC 3339 timestamp on success, or the
	// failure text under "error" when the provider failed unexpectedly.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
