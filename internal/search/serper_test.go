// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func serperTestServer(t *testing.T, handler http.HandlerFunc) *SerperClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := serperSearchBase
	serperSearchBase = ts.URL
	t.Cleanup(func() { serperSearchBase = old })

	return &SerperClient{APIKey: "test-key", Client: ts.Client()}
}

// --- SearchURLs ---

func TestSearchURLsSendsKeyAndQuery(t *testing.T) {
	var gotKey, gotContentType string
	var gotReq serperSearchRequest

	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		gotContentType = r.Header.Get("Content-Type")
		if err := jsonDecode(r, &gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, serperJSON("https://wiki.example.com/page"))
	})

	urls, err := c.SearchURLs(context.Background(), "Red Dead Redemption 2 best horse", 3, nil)
	if err != nil {
		t.Fatalf("SearchURLs: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("X-API-KEY = %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotReq.Query != "Red Dead Redemption 2 best horse" {
		t.Errorf("query = %q", gotReq.Query)
	}
	if len(urls) != 1 || urls[0] != "https://wiki.example.com/page" {
		t.Errorf("urls = %v", urls)
	}
}

func TestSearchURLsFiltersAndCaps(t *testing.T) {
	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, serperJSON(
			"https://reddit.com/r/reddeadredemption/post",
			"https://a.example.com/guide",
			"",
			"https://b.example.com/map",
			"https://c.example.com/tips",
			"https://d.example.com/extra",
		))
	})

	urls, err := c.SearchURLs(context.Background(), "horses", 3, []string{"reddit.com"})
	if err != nil {
		t.Fatalf("SearchURLs: %v", err)
	}

	want := []string{
		"https://a.example.com/guide",
		"https://b.example.com/map",
		"https://c.example.com/tips",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestSearchURLsDefaultMax(t *testing.T) {
	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, serperJSON(
			"https://a.example.com",
			"https://b.example.com",
			"https://c.example.com",
			"https://d.example.com",
		))
	})

	urls, err := c.SearchURLs(context.Background(), "horses", 0, nil)
	if err != nil {
		t.Fatalf("SearchURLs: %v", err)
	}
	if len(urls) != 3 {
		t.Errorf("len(urls) = %d, want default cap of 3", len(urls))
	}
}

func TestSearchURLsHTTPError(t *testing.T) {
	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SearchURLs(context.Background(), "horses", 3, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 429") {
		t.Errorf("error = %q, should mention HTTP 429", err.Error())
	}
}

func TestSearchURLsMalformedJSON(t *testing.T) {
	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not valid json`)
	})

	_, err := c.SearchURLs(context.Background(), "horses", 3, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("error = %q, should mention parsing", err.Error())
	}
}

func TestSearchURLsNoOrganicResults(t *testing.T) {
	c := serperTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	urls, err := c.SearchURLs(context.Background(), "horses", 3, nil)
	if err != nil {
		t.Fatalf("SearchURLs: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("urls = %v, want none", urls)
	}
}

// --- excludedDomain ---

func TestExcludedDomain(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		excluded []string
		want     bool
	}{
		{"excluded domain", "https://reddit.com/r/rdr2", []string{"reddit.com"}, true},
		{"subdomain still matches", "https://old.reddit.com/r/rdr2", []string{"reddit.com"}, true},
		{"allowed domain", "https://wiki.example.com/page", []string{"reddit.com", "quora.com"}, false},
		{"no exclusions", "https://reddit.com/r/rdr2", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := excludedDomain(tt.link, tt.excluded); got != tt.want {
				t.Errorf("excludedDomain(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}
