// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/answer-engine/internal/generate"
	"github.com/pdiddy/answer-engine/internal/knowledge"
	"github.com/pdiddy/answer-engine/internal/pipeline"
	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// engine bundles the long-lived handles every answering command needs: the
// knowledge store, the assembled pipeline coordinator, and the config that
// produced them.
type engine struct {
	cfg         types.Config
	store       *knowledge.Store
	coordinator *pipeline.Coordinator
	webEnabled  bool
	logger      zerolog.Logger
}

// newLogger returns the console logger used by the answering commands. The
// level drops to debug when ANSWER_ENGINE_DEBUG is set.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("ANSWER_ENGINE_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// newEngine constructs the knowledge store, search tools, generation
// backend, and pipeline coordinator from the loaded configuration. A missing
// generation key is fatal; a missing Serper key only disables web search. An
// unloadable knowledge directory is logged and tolerated so the pipeline can
// still answer from the web, or answer honestly that it knows nothing.
func newEngine(ctx context.Context, logger zerolog.Logger) (*engine, error) {
	cfg := loadConfig()

	if cfg.Generation.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for generation provider %q", cfg.Generation.Provider)
	}

	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return nil, err
	}

	if _, err := store.Load(ctx, cfg.Knowledge.SourceDir, os.Stderr); err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Knowledge.SourceDir).
			Msg("knowledge base not loaded, continuing without local documents")
	}

	backend, err := generate.New(ctx, cfg.Generation)
	if err != nil {
		store.Close()
		return nil, err
	}

	local := &search.LocalTool{
		Store:     store,
		TopN:      cfg.Knowledge.TopN,
		Threshold: cfg.Search.RelevanceThreshold,
	}

	var web search.Tool
	webEnabled := cfg.Search.SerperAPIKey != ""
	if webEnabled {
		client := &http.Client{Timeout: cfg.Search.Timeout}
		web = &search.WebTool{
			Client:    &search.SerperClient{APIKey: cfg.Search.SerperAPIKey, Client: client},
			Fetcher:   search.NewFetcher(cfg.Search.SerperAPIKey, client),
			Qualifier: cfg.Search.DomainQualifier,
			MaxURLs:   cfg.Search.MaxURLs,
			Excluded:  cfg.Search.ExcludedDomains,
		}
	} else {
		logger.Warn().Msg("no Serper API key configured, web search disabled")
	}

	return &engine{
		cfg:         cfg,
		store:       store,
		coordinator: pipeline.New(backend, local, web, cfg, logger),
		webEnabled:  webEnabled,
		logger:      logger,
	}, nil
}

// Close releases the engine's store handle.
func (e *engine) Close() error {
	return e.store.Close()
}
