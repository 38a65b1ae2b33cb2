// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// serperSearchBase is the Serper web search endpoint. Declared as a var so
// tests can substitute an httptest server.
var serperSearchBase = "https://google.serper.dev/search"

// SerperClient issues search requests against the Serper API.
type SerperClient struct {
	APIKey string
	Client *http.Client
}

// SearchURLs returns up to maxURLs organic result links for query, skipping
// any link that contains an excluded domain substring.
func (c *SerperClient) SearchURLs(ctx context.Context, query string, maxURLs int, excluded []string) ([]string, error) {
	if maxURLs <= 0 {
		maxURLs = 3
	}

	payload, err := json.Marshal(serperSearchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperSearchBase, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Serper API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Serper API returned HTTP %d", resp.StatusCode)
	}

	var sr serperSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Serper response: %w", err)
	}

	var urls []string
	for _, result := range sr.Organic {
		if result.Link == "" || excludedDomain(result.Link, excluded) {
			continue
		}
		urls = append(urls, result.Link)
		if len(urls) == maxURLs {
			break
		}
	}
	return urls, nil
}

// excludedDomain reports whether link contains any of the excluded domain
// substrings.
func excludedDomain(link string, excluded []string) bool {
	for _, domain := range excluded {
		if strings.Contains(link, domain) {
			return true
		}
	}
	return false
}

// Serper search API JSON structures.
type serperSearchRequest struct {
	Query string `json:"q"`
}

type serperSearchResponse struct {
	Organic []serperOrganicResult `json:"organic"`
}

type serperOrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}
