// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/answer-engine/internal/httputil"
)

const scrapeTarget = "https://wiki.example.com/guide"

// testScrapePolicy keeps the production attempt count but collapses the
// inter-attempt delays so retry tests finish quickly.
func testScrapePolicy() httputil.RetryPolicy {
	return httputil.RetryPolicy{
		MaxAttempts: 2,
		Delays: map[httputil.FailureClass]time.Duration{
			httputil.FailServer:       time.Millisecond,
			httputil.FailPayload:      time.Millisecond,
			httputil.FailShortContent: time.Millisecond,
			httputil.FailTimeout:      time.Millisecond,
			httputil.FailNetwork:      time.Millisecond,
			httputil.FailOther:        time.Millisecond,
		},
	}
}

func scrapeTestServer(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := serperScrapeBase
	serperScrapeBase = ts.URL
	t.Cleanup(func() { serperScrapeBase = old })

	f := NewFetcher("test-key", ts.Client())
	f.Policy = testScrapePolicy()
	return f
}

// --- Fetch ---

func TestFetchReturnsPageText(t *testing.T) {
	var gotKey string
	var gotReq serperScrapeRequest

	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		if err := jsonDecode(r, &gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"text":"Arthur can buy the Cattleman Revolver for 50 dollars."}`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	if got != "Arthur can buy the Cattleman Revolver for 50 dollars." {
		t.Errorf("Fetch = %q", got)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-KEY = %q", gotKey)
	}
	if gotReq.URL != scrapeTarget {
		t.Errorf("scrape request url = %q", gotReq.URL)
	}
}

func TestFetchRetriesServerError(t *testing.T) {
	attempts := 0
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"text":"The second attempt pulled the full page text just fine."}`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got != "The second attempt pulled the full page text just fine." {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFetchPersistentServerError(t *testing.T) {
	attempts := 0
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got != "Scraper API error: 500 - Service temporarily unavailable after retries" {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFetchTerminalAPIError(t *testing.T) {
	attempts := 0
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Forbidden")
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	// Non-500 API errors are not retried.
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if got != "Scraper API error: 403 Forbidden" {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFetchPayloadFailure(t *testing.T) {
	attempts := 0
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"message":"Scraping failed: site blocked the crawler"}`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	want := fmt.Sprintf("Scraping failed for %s after retries", scrapeTarget)
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestFetchShortContentRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			fmt.Fprint(w, `{"text":"tiny"}`)
			return
		}
		fmt.Fprint(w, `{"text":"A retried scrape that finally produced enough page text."}`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if got != "A retried scrape that finally produced enough page text." {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFetchNoContent(t *testing.T) {
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"text":""}`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	want := fmt.Sprintf("No content extracted from %s after retries", scrapeTarget)
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestFetchTimeout(t *testing.T) {
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	f.Client.Timeout = 20 * time.Millisecond

	got := f.Fetch(context.Background(), scrapeTarget)

	want := fmt.Sprintf("Timeout error while scraping %s after retries", scrapeTarget)
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestFetchNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	old := serperScrapeBase
	serperScrapeBase = ts.URL
	defer func() { serperScrapeBase = old }()

	f := NewFetcher("test-key", &http.Client{})
	f.Policy = testScrapePolicy()

	got := f.Fetch(context.Background(), scrapeTarget)

	want := fmt.Sprintf("Network error while scraping %s after retries", scrapeTarget)
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestFetchMalformedResponse(t *testing.T) {
	f := scrapeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not valid json`)
	})

	got := f.Fetch(context.Background(), scrapeTarget)

	want := fmt.Sprintf("Unexpected error while scraping %s after retries", scrapeTarget)
	if got != want {
		t.Errorf("Fetch = %q, want %q", got, want)
	}
}

func TestNewFetcherPolicy(t *testing.T) {
	f := NewFetcher("key", &http.Client{})

	if f.Policy.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want 2", f.Policy.MaxAttempts)
	}
	if got := f.Policy.Delays[httputil.FailServer]; got != 3*time.Second {
		t.Errorf("server delay = %v, want 3s", got)
	}
	if got := f.Policy.Delays[httputil.FailShortContent]; got != time.Second {
		t.Errorf("short content delay = %v, want 1s", got)
	}
}
