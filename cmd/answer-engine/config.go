// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/answer-engine/internal/secrets"
	"github.com/pdiddy/answer-engine/pkg/types"
)

func init() {
	defaults := types.DefaultConfig()

	viper.SetDefault("knowledge.source_dir", defaults.Knowledge.SourceDir)
	viper.SetDefault("knowledge.index_dir", defaults.Knowledge.IndexDir)
	viper.SetDefault("knowledge.top_n", defaults.Knowledge.TopN)

	viper.SetDefault("search.timeout", defaults.Search.Timeout)
	viper.SetDefault("search.user_agent", defaults.Search.UserAgent)
	viper.SetDefault("search.max_urls", defaults.Search.MaxURLs)
	viper.SetDefault("search.excluded_domains", defaults.Search.ExcludedDomains)
	viper.SetDefault("search.domain_qualifier", defaults.Search.DomainQualifier)
	viper.SetDefault("search.relevance_threshold", defaults.Search.RelevanceThreshold)

	viper.SetDefault("generation.provider", defaults.Generation.Provider)
	viper.SetDefault("generation.model", defaults.Generation.Model)
	viper.SetDefault("generation.temperature", defaults.Generation.Temperature)
	viper.SetDefault("generation.max_tokens", defaults.Generation.MaxTokens)

	viper.SetDefault("pipeline.local_search_budget", defaults.Pipeline.LocalSearchBudget)
	viper.SetDefault("pipeline.web_search_budget", defaults.Pipeline.WebSearchBudget)

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	viper.SetDefault("server.idle_timeout", defaults.Server.IdleTimeout)

	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.dir", defaults.Cache.Dir)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
}

// loadConfig builds the runtime configuration from viper (config file plus
// ANSWER_ENGINE_* environment overrides) and resolves API keys from the
// environment or the .secrets/ directory.
func loadConfig() types.Config {
	cfg := types.Config{
		Knowledge: types.KnowledgeConfig{
			SourceDir: viper.GetString("knowledge.source_dir"),
			IndexDir:  viper.GetString("knowledge.index_dir"),
			TopN:      viper.GetInt("knowledge.top_n"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxURLs:            viper.GetInt("search.max_urls"),
			ExcludedDomains:    viper.GetStringSlice("search.excluded_domains"),
			DomainQualifier:    viper.GetString("search.domain_qualifier"),
			RelevanceThreshold: viper.GetFloat64("search.relevance_threshold"),
		},
		Generation: types.GenerationConfig{
			Provider:    viper.GetString("generation.provider"),
			Model:       viper.GetString("generation.model"),
			Temperature: viper.GetFloat64("generation.temperature"),
			MaxTokens:   viper.GetInt("generation.max_tokens"),
		},
		Pipeline: types.PipelineConfig{
			LocalSearchBudget: viper.GetInt("pipeline.local_search_budget"),
			WebSearchBudget:   viper.GetInt("pipeline.web_search_budget"),
		},
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
		},
		Cache: types.CacheConfig{
			Enabled: viper.GetBool("cache.enabled"),
			Dir:     viper.GetString("cache.dir"),
			TTL:     viper.GetDuration("cache.ttl"),
		},
	}

	cfg.Search.SerperAPIKey = secrets.Resolve(loadedSecrets, "SERPER_API_KEY", "serper-api-key")
	switch cfg.Generation.Provider {
	case "claude":
		cfg.Generation.APIKey = secrets.Resolve(loadedSecrets, "ANTHROPIC_API_KEY", "anthropic-api-key")
	default:
		cfg.Generation.APIKey = secrets.Resolve(loadedSecrets, "GEMINI_API_KEY", "gemini-api-key")
	}

	return cfg
}
