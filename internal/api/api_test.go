// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/answer-engine/internal/api"
	"github.com/pdiddy/answer-engine/internal/api/middleware"
	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/pkg/types"
)

type fakeCoordinator struct {
	result   types.TaskResult
	panics   bool
	gotQuery string
	calls    int
}

func (f *fakeCoordinator) Run(_ context.Context, query string) types.TaskResult {
	if f.panics {
		panic("pipeline exploded")
	}
	f.gotQuery = query
	f.calls++
	return f.result
}

type fakeCounter struct {
	count int
	err   error
}

func (f *fakeCounter) Count(context.Context) (int, error) { return f.count, f.err }

func setupContainer(coordinator api.Coordinator, store api.DocumentCounter, answerCache *cache.Cache) *restful.Container {
	handler := api.NewHandler(coordinator, store, answerCache, true, zerolog.Nop())
	container := restful.NewContainer()
	container.Filter(middleware.Logger(zerolog.Nop()))
	container.Filter(middleware.RecoverPanic(zerolog.Nop()))
	api.RegisterRoutes(container, handler)
	return container
}

func postQuery(t *testing.T, container *restful.Container, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

// --- POST /query ---

func TestQueryAnswersQuestion(t *testing.T) {
	coordinator := &fakeCoordinator{result: types.TaskResult{
		Content: "The white Arabian is found near Lake Isabella.",
		Success: true,
		Role:    types.RoleComposer,
	}}
	container := setupContainer(coordinator, &fakeCounter{count: 4}, nil)

	body, _ := json.Marshal(api.QueryRequest{
		Question:  "Where is the white Arabian?",
		SessionID: "sess-1",
	})
	recorder := postQuery(t, container, string(body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", recorder.Code, recorder.Body.String())
	}

	var response api.QueryResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if !response.Success {
		t.Errorf("Success = false, error: %s", response.ErrorMessage)
	}
	if response.Answer != "The white Arabian is found near Lake Isabella." {
		t.Errorf("Answer = %q", response.Answer)
	}
	if response.SessionID != "sess-1" {
		t.Errorf("SessionID = %q", response.SessionID)
	}
	if _, err := time.Parse(time.RFC3339, response.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC 3339: %v", response.Timestamp, err)
	}
	if response.ProcessingTime < 0 {
		t.Errorf("ProcessingTime = %f", response.ProcessingTime)
	}
	if coordinator.gotQuery != "Where is the white Arabian?" {
		t.Errorf("coordinator received %q", coordinator.gotQuery)
	}
}

func TestQueryEmptyQuestion(t *testing.T) {
	coordinator := &fakeCoordinator{}
	container := setupContainer(coordinator, &fakeCounter{}, nil)

	recorder := postQuery(t, container, `{"question": "   "}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Message != "Question cannot be empty" {
		t.Errorf("Message = %q", response.Message)
	}
	if coordinator.calls != 0 {
		t.Error("coordinator called for an invalid request")
	}
}

func TestQueryTooLong(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{}, nil)

	body, _ := json.Marshal(api.QueryRequest{Question: strings.Repeat("a", 1001)})
	recorder := postQuery(t, container, string(body))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Message != "Question cannot exceed 1000 characters" {
		t.Errorf("Message = %q", response.Message)
	}
}

func TestQueryMalformedBody(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{}, nil)

	recorder := postQuery(t, container, `{"question": `)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestQueryPipelineFailure(t *testing.T) {
	coordinator := &fakeCoordinator{result: types.TaskResult{
		Success:      false,
		Role:         types.RoleComposer,
		ErrorMessage: "analyzer stage: backend down",
	}}
	container := setupContainer(coordinator, &fakeCounter{}, nil)

	recorder := postQuery(t, container, `{"question": "any question"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var response api.QueryResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Success {
		t.Error("Success = true for a failed pipeline run")
	}
	if response.Answer != "I'm sorry, I couldn't process your question at this time. Please try again." {
		t.Errorf("Answer = %q", response.Answer)
	}
	if response.ErrorMessage != "analyzer stage: backend down" {
		t.Errorf("ErrorMessage = %q", response.ErrorMessage)
	}
}

func TestQueryNotInitialized(t *testing.T) {
	container := setupContainer(nil, &fakeCounter{}, nil)

	recorder := postQuery(t, container, `{"question": "any question"}`)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", recorder.Code)
	}
	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Message != "RDR2 Agent system not initialized" {
		t.Errorf("Message = %q", response.Message)
	}
}

func TestQueryPanicRecovered(t *testing.T) {
	container := setupContainer(&fakeCoordinator{panics: true}, &fakeCounter{}, nil)

	recorder := postQuery(t, container, `{"question": "any question"}`)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Error != "InternalServerError" {
		t.Errorf("Error = %q", response.Error)
	}
	if response.Message != "An unexpected error occurred. Please try again later." {
		t.Errorf("Message = %q", response.Message)
	}
	if response.RequestID == "" {
		t.Error("RequestID not set")
	}
}

func TestQueryServesCachedAnswer(t *testing.T) {
	answerCache, err := cache.Open(types.CacheConfig{TTL: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { answerCache.Close() })

	coordinator := &fakeCoordinator{result: types.TaskResult{
		Content: "Fresh answer from the pipeline.",
		Success: true,
		Role:    types.RoleComposer,
	}}
	container := setupContainer(coordinator, &fakeCounter{}, answerCache)

	first := postQuery(t, container, `{"question": "Where is the best fishing spot?"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	if coordinator.calls != 1 {
		t.Fatalf("coordinator called %d times, want 1", coordinator.calls)
	}

	second := postQuery(t, container, `{"question": "where is the BEST fishing spot?"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second request status = %d", second.Code)
	}
	if coordinator.calls != 1 {
		t.Errorf("coordinator called %d times, want second answer served from cache", coordinator.calls)
	}

	var response api.QueryResponse
	if err := json.Unmarshal(second.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Answer != "Fresh answer from the pipeline." {
		t.Errorf("Answer = %q", response.Answer)
	}
}

// --- container filters ---

func TestFiltersLogThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	coordinator := &fakeCoordinator{result: types.TaskResult{
		Content: "Answer.",
		Success: true,
		Role:    types.RoleComposer,
	}}
	handler := api.NewHandler(coordinator, &fakeCounter{}, nil, true, zerolog.Nop())
	container := restful.NewContainer()
	container.Filter(middleware.Logger(logger))
	container.Filter(middleware.RecoverPanic(logger))
	api.RegisterRoutes(container, handler)

	recorder := postQuery(t, container, `{"question": "any question"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	logged := buf.String()
	if !strings.Contains(logged, `"path":"/query"`) || !strings.Contains(logged, `"status":200`) {
		t.Errorf("injected logger missing request line:\n%s", logged)
	}

	buf.Reset()
	coordinator.panics = true
	recorder = postQuery(t, container, `{"question": "any question"}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
	if !strings.Contains(buf.String(), "handler panicked") {
		t.Errorf("injected logger missing panic entry:\n%s", buf.String())
	}
}

// --- GET /health ---

func TestHealth(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{count: 42}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("Status = %q", response.Status)
	}
	if response.Version != "1.0.0" {
		t.Errorf("Version = %q", response.Version)
	}
	info := response.SystemInfo
	if !info.KnowledgeBase.Initialized || info.KnowledgeBase.DocumentCount != 42 {
		t.Errorf("KnowledgeBase = %+v", info.KnowledgeBase)
	}
	if !info.SearchTools.Local || !info.SearchTools.Web {
		t.Errorf("SearchTools = %+v", info.SearchTools)
	}
	if !info.Pipeline.Initialized || info.Pipeline.StageCount != 3 {
		t.Errorf("Pipeline = %+v", info.Pipeline)
	}
}

func TestHealthStoreFailure(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{err: errors.New("database locked")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", recorder.Code)
	}
}

// --- GET /status ---

func TestStatus(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{count: 7}, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", recorder.Code, recorder.Body.String())
	}
	var response api.StatusResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.APIVersion != "1.0.0" {
		t.Errorf("APIVersion = %q", response.APIVersion)
	}
	if response.SystemStatus.KnowledgeBase.DocumentCount != 7 {
		t.Errorf("DocumentCount = %d", response.SystemStatus.KnowledgeBase.DocumentCount)
	}
}

// --- GET / ---

func TestInfo(t *testing.T) {
	container := setupContainer(&fakeCoordinator{}, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var response api.InfoResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if response.Service != "RDR2 Answer Engine API" {
		t.Errorf("Service = %q", response.Service)
	}
	if response.Docs != "/openapi.json" {
		t.Errorf("Docs = %q", response.Docs)
	}
	if response.Health != "/health" {
		t.Errorf("Health = %q", response.Health)
	}
}
