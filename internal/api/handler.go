// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the answer pipeline over REST. Endpoints mirror the
// pipeline surface: POST /query answers a question, GET /health and
// GET /status report component state, GET / describes the service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/answer-engine/internal/api/middleware"
	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/pkg/types"
)

const apiVersion = "1.0.0"

// pipelineStages is the fixed number of stages behind POST /query.
const pipelineStages = 3

// Coordinator runs the full answer pipeline for one question.
type Coordinator interface {
	Run(ctx context.Context, query string) types.TaskResult
}

// DocumentCounter reports how many blocks the knowledge store holds.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

// Handler serves the REST routes.
type Handler struct {
	coordinator Coordinator
	store       DocumentCounter
	cache       *cache.Cache
	webEnabled  bool
	logger      zerolog.Logger
}

// NewHandler wires the handler. cache may be nil to disable answer
// caching; webEnabled only affects the reported status.
func NewHandler(coordinator Coordinator, store DocumentCounter, answerCache *cache.Cache, webEnabled bool, logger zerolog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		store:       store,
		cache:       answerCache,
		webEnabled:  webEnabled,
		logger:      logger,
	}
}

// POST /query
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	started := time.Now()

	var queryRequest QueryRequest
	if err := req.ReadEntity(&queryRequest); err != nil {
		h.logger.Error().Err(err).Msg("failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if err := queryRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if h.coordinator == nil {
		middleware.HandleError(resp, errors.New("RDR2 Agent system not initialized"), http.StatusServiceUnavailable)
		return
	}

	ctx := req.Request.Context()
	question := queryRequest.Question

	if h.cache != nil {
		if entry, ok, err := h.cache.Get(ctx, question); err == nil && ok {
			h.logger.Info().Str("session_id", queryRequest.SessionID).Msg("answer served from cache")
			resp.WriteHeaderAndEntity(http.StatusOK, QueryResponse{
				Answer:         entry.Answer,
				Success:        true,
				ProcessingTime: time.Since(started).Seconds(),
				Timestamp:      time.Now().UTC().Format(time.RFC3339),
				SessionID:      queryRequest.SessionID,
			})
			return
		}
	}

	h.logger.Info().Str("session_id", queryRequest.SessionID).Msg("processing query")
	result := h.coordinator.Run(ctx, question)

	response := QueryResponse{
		Success:        result.Success,
		ProcessingTime: time.Since(started).Seconds(),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		SessionID:      queryRequest.SessionID,
	}
	if result.Success {
		response.Answer = result.Content
		if h.cache != nil {
			if err := h.cache.Put(ctx, question, result.Content); err != nil {
				h.logger.Warn().Err(err).Msg("caching answer failed")
			}
		}
	} else {
		h.logger.Error().Str("error", result.ErrorMessage).Msg("query processing failed")
		response.Answer = "I'm sorry, I couldn't process your question at this time. Please try again."
		response.ErrorMessage = result.ErrorMessage
	}
	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// GET /health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	info, err := h.systemInfo(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		middleware.HandleError(resp, err, http.StatusServiceUnavailable)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		SystemInfo: info,
		Version:    apiVersion,
	})
}

// GET /status
func (h *Handler) Status(req *restful.Request, resp *restful.Response) {
	info, err := h.systemInfo(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("status check failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, StatusResponse{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		SystemStatus: info,
		APIVersion:   apiVersion,
		UptimeInfo:   "Available via health endpoint",
	})
}

// GET /
func (h *Handler) Info(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, InfoResponse{
		Service:     "RDR2 Answer Engine API",
		Version:     apiVersion,
		Description: "Intelligent assistant for Red Dead Redemption 2",
		Docs:        "/openapi.json",
		Health:      "/health",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) systemInfo(ctx context.Context) (SystemInfo, error) {
	documents := 0
	if h.store != nil {
		n, err := h.store.Count(ctx)
		if err != nil {
			return SystemInfo{}, err
		}
		documents = n
	}
	return SystemInfo{
		KnowledgeBase: KnowledgeBaseStatus{
			Initialized:   h.store != nil,
			DocumentCount: documents,
		},
		SearchTools: SearchToolsStatus{
			Local: h.store != nil,
			Web:   h.webEnabled,
		},
		Pipeline: PipelineStatus{
			Initialized: h.coordinator != nil,
			StageCount:  pipelineStages,
		},
	}, nil
}
