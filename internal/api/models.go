// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"strings"

	"github.com/pdiddy/answer-engine/internal/api/middleware"
)

// maxQuestionLength bounds accepted question text.
const maxQuestionLength = 1000

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question  string `json:"question" description:"The user's question about Red Dead Redemption 2"`
	SessionID string `json:"session_id,omitempty" description:"Optional session ID for tracking user sessions"`
}

// Validate checks the question bounds.
func (q *QueryRequest) Validate() error {
	trimmed := strings.TrimSpace(q.Question)
	if trimmed == "" {
		return middleware.ErrEmptyQuestion
	}
	if len(trimmed) > maxQuestionLength {
		return middleware.ErrQuestionTooLong
	}
	return nil
}

// QueryResponse is the body of a completed POST /query.
type QueryResponse struct {
	Answer         string  `json:"answer" description:"The generated answer to the user's question"`
	Success        bool    `json:"success" description:"Whether the query was processed successfully"`
	ProcessingTime float64 `json:"processing_time" description:"Time taken to process the query in seconds"`
	Timestamp      string  `json:"timestamp" description:"When the response was generated"`
	SessionID      string  `json:"session_id,omitempty" description:"Session ID if provided in the request"`
	ErrorMessage   string  `json:"error_message,omitempty" description:"Error message if the query failed"`
}

// KnowledgeBaseStatus reports the local knowledge store.
type KnowledgeBaseStatus struct {
	Initialized   bool `json:"initialized" description:"Whether the knowledge store is loaded"`
	DocumentCount int  `json:"document_count" description:"Number of indexed knowledge blocks"`
}

// SearchToolsStatus reports which search providers are wired in.
type SearchToolsStatus struct {
	Local bool `json:"local" description:"Local database search available"`
	Web   bool `json:"web" description:"Web search available"`
}

// PipelineStatus reports the answer pipeline.
type PipelineStatus struct {
	Initialized bool `json:"initialized" description:"Whether the pipeline is ready"`
	StageCount  int  `json:"stage_count" description:"Number of pipeline stages"`
}

// SystemInfo groups component status for health and status responses.
type SystemInfo struct {
	KnowledgeBase KnowledgeBaseStatus `json:"knowledge_base"`
	SearchTools   SearchToolsStatus   `json:"search_tools"`
	Pipeline      PipelineStatus      `json:"pipeline"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string     `json:"status" description:"API status"`
	Timestamp  string     `json:"timestamp" description:"Current timestamp"`
	SystemInfo SystemInfo `json:"system_info" description:"System component status information"`
	Version    string     `json:"version" description:"API version"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Timestamp    string     `json:"timestamp" description:"Current timestamp"`
	SystemStatus SystemInfo `json:"system_status" description:"Detailed component status"`
	APIVersion   string     `json:"api_version" description:"API version"`
	UptimeInfo   string     `json:"uptime_info" description:"Where to find uptime details"`
}

// InfoResponse is the body of GET /.
type InfoResponse struct {
	Service     string `json:"service" description:"Service name"`
	Version     string `json:"version" description:"API version"`
	Description string `json:"description" description:"What this API does"`
	Docs        string `json:"docs" description:"OpenAPI document path"`
	Health      string `json:"health" description:"Health endpoint path"`
	Timestamp   string `json:"timestamp" description:"Current timestamp"`
}
