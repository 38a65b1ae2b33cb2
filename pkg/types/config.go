// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// UserAgent identifies this tool in outbound requests.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// KnowledgeConfig configures the local knowledge store.
type KnowledgeConfig struct {
	// SourceDir is the directory of plain-text knowledge files. Each file may
	// contain several blocks separated by a "---" line.
	SourceDir string `yaml:"source_dir" json:"source_dir"`
	// IndexDir is where the SQLite index database lives.
	IndexDir string `yaml:"index_dir" json:"index_dir"`
	// TopN is the number of blocks returned per similarity query.
	TopN int `yaml:"top_n" json:"top_n"`
}

// SearchConfig configures the web search path.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// SerperAPIKey authenticates against the Serper search and scrape APIs.
	// Loaded from secrets, never from config files.
	SerperAPIKey string `yaml:"-" json:"-"`
	// MaxURLs caps how many candidate result links one search returns.
	MaxURLs int `yaml:"max_urls" json:"max_urls"`
	// ExcludedDomains lists domain substrings whose links are dropped from
	// search results.
	ExcludedDomains []string `yaml:"excluded_domains" json:"excluded_domains"`
	// DomainQualifier is prepended to every web query to keep results on
	// topic, e.g. "Red Dead Redemption 2".
	DomainQualifier string `yaml:"domain_qualifier" json:"domain_qualifier"`
	// RelevanceThreshold is the local-store distance above which a result is
	// considered not relevant. Lower distances are better.
	RelevanceThreshold float64 `yaml:"relevance_threshold" json:"relevance_threshold"`
}

// GenerationConfig holds settings for text-generation calls.
type GenerationConfig struct {
	// Provider selects the backend: "gemini" or "claude".
	Provider string `yaml:"provider" json:"provider"`
	// Model is the provider-specific model identifier.
	Model string `yaml:"model" json:"model"`
	// APIKey for the selected provider. Loaded from secrets or environment.
	APIKey      string  `yaml:"-" json:"-"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

// PipelineConfig bounds the research stage.
type PipelineConfig struct {
	// LocalSearchBudget is the maximum number of local store lookups per query.
	LocalSearchBudget int `yaml:"local_search_budget" json:"local_search_budget"`
	// WebSearchBudget is the maximum number of web search attempts per query.
	WebSearchBudget int `yaml:"web_search_budget" json:"web_search_budget"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

// CacheConfig configures the answer cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
	// TTL is how long a cached answer stays valid. Zero means no expiry.
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// Config is the root configuration grouping all components.
type Config struct {
	Knowledge  KnowledgeConfig  `yaml:"knowledge" json:"knowledge"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Generation GenerationConfig `yaml:"generation" json:"generation"`
	Pipeline   PipelineConfig   `yaml:"pipeline" json:"pipeline"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
}

// DefaultConfig returns the configuration used when no overrides are given.
func DefaultConfig() Config {
	return Config{
		Knowledge: KnowledgeConfig{
			SourceDir: "info",
			IndexDir:  "index",
			TopN:      5,
		},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "answer-engine/1.0",
			},
			MaxURLs:            3,
			ExcludedDomains:    []string{"reddit.com", "quora.com", "youtube.com", "steamcommunity.com"},
			DomainQualifier:    "Red Dead Redemption 2",
			RelevanceThreshold: 2.2,
		},
		Generation: GenerationConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.0,
			MaxTokens:   4096,
		},
		Pipeline: PipelineConfig{
			LocalSearchBudget: 1,
			WebSearchBudget:   2,
		},
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     "cache",
			TTL:     30 * time.Minute,
		},
	}
}
