// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the fixed three-stage answer workflow over one
// query: analyze the question, research it through the search tools, and
// compose the final answer. Stages run strictly in order, each consuming
// the outputs of the stages before it. Runs are independent: no state
// carries over from one query to the next.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/answer-engine/internal/generate"
	"github.com/pdiddy/answer-engine/internal/sanitize"
	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// errorMarkers are lowercase substrings of internal failure text that must
// never reach the user verbatim.
var errorMarkers = []string{
	"scraper api error",
	"scraping failed",
	"500",
	"invalid response",
	"none or empty response",
	"llm call",
}

// Coordinator owns the generation backend and search tools for the
// three-stage pipeline. Construct one at startup and share it across
// queries; Run is safe for concurrent use.
type Coordinator struct {
	backend generate.Backend
	local   *search.LocalTool
	web     search.Tool
	domain  string
	budgets types.PipelineConfig
	logger  zerolog.Logger
}

// New assembles a Coordinator. web may be nil when web search is disabled;
// the research stage then relies on the local store alone.
func New(backend generate.Backend, local *search.LocalTool, web search.Tool, cfg types.Config, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		backend: backend,
		local:   local,
		web:     web,
		domain:  cfg.Search.DomainQualifier,
		budgets: cfg.Pipeline,
		logger:  logger,
	}
}

// Run executes the full pipeline for one query. It never panics and never
// returns an error: failures come back as a TaskResult with Success false
// and empty Content.
func (c *Coordinator) Run(ctx context.Context, query string) (result types.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.TaskResult{
				Success:      false,
				Role:         types.RoleComposer,
				ErrorMessage: fmt.Sprint(r),
			}
		}
	}()

	started := time.Now()
	c.logger.Info().Str("query", query).Msg("pipeline started")

	analysisPrompt, err := renderPrompt(analyzeTmpl, promptData{Domain: c.domain, Query: query})
	if err != nil {
		return c.failed(err)
	}
	analysis, err := c.runStage(ctx, types.RoleAnalyzer, analysisPrompt)
	if err != nil {
		return c.failed(err)
	}

	research, err := c.research(ctx, query, analysis)
	if err != nil {
		return c.failed(err)
	}

	composePrompt, err := renderPrompt(composeTmpl, promptData{
		Domain: c.domain,
		Query:  query,
		Context: []StageContext{
			{Role: types.RoleAnalyzer, Output: analysis},
			{Role: types.RoleResearcher, Output: research},
		},
	})
	if err != nil {
		return c.failed(err)
	}
	answer, err := c.runStage(ctx, types.RoleComposer, composePrompt)
	if err != nil {
		return c.failed(err)
	}

	answer = c.finalize(query, answer)

	c.logger.Info().Dur("elapsed", time.Since(started)).Msg("pipeline finished")
	return types.TaskResult{Content: answer, Success: true, Role: types.RoleComposer}
}

// research gathers evidence from the search tools and has the model curate
// it. When nothing useful comes back it answers with the honest
// no-information sentinel instead of calling the model on empty input.
func (c *Coordinator) research(ctx context.Context, query, analysis string) (string, error) {
	evidence := c.gatherEvidence(ctx, query)
	if evidence == "" {
		return fmt.Sprintf("No relevant information found for %s in available sources", query), nil
	}

	prompt, err := renderPrompt(researchTmpl, promptData{
		Domain:   c.domain,
		Query:    query,
		Context:  []StageContext{{Role: types.RoleAnalyzer, Output: analysis}},
		Evidence: evidence,
	})
	if err != nil {
		return "", err
	}
	return c.runStage(ctx, types.RoleResearcher, prompt)
}

// gatherEvidence applies the research decision rule: the local store is
// asked first and wins outright when its best distance clears the
// relevance threshold. Otherwise the web tool gets up to WebSearchBudget
// attempts; a clean hit (score 1.0) wins immediately, a degraded one
// (score 2.0) is retried and kept as a last resort. Returns "" when no
// source produced anything.
func (c *Coordinator) gatherEvidence(ctx context.Context, query string) string {
	if c.local != nil && c.budgets.LocalSearchBudget > 0 {
		r := search.Run(ctx, c.local, query)
		c.logger.Debug().Str("source", string(r.Source)).Float64("score", r.Score).Msg("local search done")
		if c.local.Relevant(r.Score) {
			return fmt.Sprintf("Local Database Result (Similarity Score: %.2f):\n\n%s", r.Score, r.Content)
		}
	}

	if c.web == nil {
		return ""
	}

	var degraded string
	for attempt := 1; attempt <= c.budgets.WebSearchBudget; attempt++ {
		r := search.Run(ctx, c.web, query)
		c.logger.Debug().Int("attempt", attempt).Float64("score", r.Score).Msg("web search done")
		if math.IsInf(r.Score, 1) {
			continue
		}
		if r.Score <= 1.0 {
			return "Web Search Result:\n\n" + r.Content
		}
		degraded = r.Content
	}
	if degraded != "" {
		return "Web Search Result:\n\n" + degraded
	}
	return ""
}

// runStage makes one generation call. Empty output is not an error here:
// finalize substitutes the apology fallback when the compose stage comes
// back blank.
func (c *Coordinator) runStage(ctx context.Context, role types.Role, prompt string) (string, error) {
	c.logger.Debug().Str("stage", string(role)).Msg("stage started")
	out, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", role, err)
	}
	return out, nil
}

// finalize applies the coordinator-level response checks before
// sanitizing: degenerate model output and surfaced internal error text are
// both replaced with user-facing fallbacks.
func (c *Coordinator) finalize(query, content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.ToLower(trimmed) == "none" {
		c.logger.Warn().Msg("empty or degenerate response, substituting fallback")
		content = fmt.Sprintf("I apologize, but I encountered a technical issue while processing your question: '%s'. Please try asking your question in a different way, or contact support if the issue persists.", query)
	}

	lowered := strings.ToLower(content)
	for _, marker := range errorMarkers {
		if strings.Contains(lowered, marker) {
			c.logger.Warn().Str("marker", marker).Msg("internal error text in response, substituting fallback")
			content = fmt.Sprintf("I encountered some technical difficulties while gathering additional information about '%s'. However, I can still provide you with helpful information based on my comprehensive %s knowledge base. Please try your question again if you'd like me to attempt another search.", query, c.domain)
			break
		}
	}

	return sanitize.Clean(content)
}

func (c *Coordinator) failed(err error) types.TaskResult {
	c.logger.Error().Err(err).Msg("pipeline failed")
	return types.TaskResult{
		Success:      false,
		Role:         types.RoleComposer,
		ErrorMessage: err.Error(),
	}
}
