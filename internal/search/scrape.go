// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/internal/httputil"
)

// serperScrapeBase is the Serper page scraping endpoint. Declared as a var
// so tests can substitute an httptest server.
var serperScrapeBase = "https://scrape.serper.dev"

// Sentinel prefixes in scrape output that WebTool and answer validation
// recognize as scraper failures.
const (
	scraperErrorPrefix = "Scraper API error"
	scrapeFailedPrefix = "Scraping failed"
)

// Fetcher extracts readable page text through the Serper scraping API.
type Fetcher struct {
	APIKey string
	Client *http.Client
	Policy httputil.RetryPolicy
}

// NewFetcher returns a Fetcher with the standard scraping retry policy: two
// attempts with a per-failure-class delay between them.
func NewFetcher(apiKey string, client *http.Client) *Fetcher {
	return &Fetcher{
		APIKey: apiKey,
		Client: client,
		Policy: httputil.RetryPolicy{
			MaxAttempts: 2,
			Delays: map[httputil.FailureClass]time.Duration{
				httputil.FailServer:       3 * time.Second,
				httputil.FailPayload:      2 * time.Second,
				httputil.FailShortContent: time.Second,
				httputil.FailTimeout:      3 * time.Second,
				httputil.FailNetwork:      2 * time.Second,
				httputil.FailOther:        2 * time.Second,
			},
		},
	}
}

// Fetch scrapes pageURL and returns the extracted text. It never returns an
// error: every failure mode maps to a sentinel message, so callers can pass
// the outcome downstream as content either way.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) string {
	var last string
	class := f.Policy.Do(ctx, func() httputil.FailureClass {
		var cls httputil.FailureClass
		last, cls = f.attempt(ctx, pageURL)
		return cls
	})

	switch class {
	case httputil.FailNone, httputil.FailTerminal:
		// Page text, or the terminal API error message from attempt.
		return last
	case httputil.FailServer:
		return "Scraper API error: 500 - Service temporarily unavailable after retries"
	case httputil.FailPayload:
		return fmt.Sprintf("Scraping failed for %s after retries", pageURL)
	case httputil.FailShortContent:
		return fmt.Sprintf("No content extracted from %s after retries", pageURL)
	case httputil.FailTimeout:
		return fmt.Sprintf("Timeout error while scraping %s after retries", pageURL)
	case httputil.FailNetwork:
		return fmt.Sprintf("Network error while scraping %s after retries", pageURL)
	default:
		return fmt.Sprintf("Unexpected error while scraping %s after retries", pageURL)
	}
}

// attempt performs one scrape call. For FailNone the returned string is the
// page text; for FailTerminal it is the final error message.
func (f *Fetcher) attempt(ctx context.Context, pageURL string) (string, httputil.FailureClass) {
	payload, err := json.Marshal(serperScrapeRequest{URL: pageURL})
	if err != nil {
		return "", httputil.FailOther
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperScrapeBase, bytes.NewReader(payload))
	if err != nil {
		return "", httputil.FailOther
	}
	req.Header.Set("X-API-KEY", f.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", httputil.ClassifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusInternalServerError {
		return "", httputil.FailServer
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Sprintf("%s: %d %s", scraperErrorPrefix, resp.StatusCode, body), httputil.FailTerminal
	}

	var sr serperScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", httputil.FailOther
	}
	if strings.Contains(sr.Message, scrapeFailedPrefix) {
		return "", httputil.FailPayload
	}
	if len(strings.TrimSpace(sr.Text)) < 10 {
		return "", httputil.FailShortContent
	}
	return sr.Text, httputil.FailNone
}

// Serper scraping API JSON structures.
type serperScrapeRequest struct {
	URL string `json:"url"`
}

type serperScrapeResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}
