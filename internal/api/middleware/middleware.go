// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package middleware holds the container filters and error plumbing shared
// by the REST API routes.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Validation errors returned by request models.
var (
	ErrEmptyQuestion   = errors.New("Question cannot be empty")
	ErrQuestionTooLong = errors.New("Question cannot exceed 1000 characters")
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error" description:"Error type"`
	Message   string `json:"message" description:"Human-readable error message"`
	Timestamp string `json:"timestamp" description:"When the error occurred"`
	RequestID string `json:"request_id,omitempty" description:"Unique request identifier for debugging"`
}

// HandleError writes err as an ErrorResponse with the given status code.
func HandleError(resp *restful.Response, err error, status int) {
	resp.WriteHeaderAndEntity(status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Logger returns a filter that logs one line per handled request through
// the given logger.
func Logger(logger zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)
		logger.Info().
			Str("method", req.Request.Method).
			Str("path", req.Request.URL.Path).
			Int("status", resp.StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

// RecoverPanic returns a filter that converts a panicking handler into a
// 500 response carrying a request ID that can be matched against the log.
func RecoverPanic(logger zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		defer func() {
			if r := recover(); r != nil {
				requestID := uuid.NewString()
				logger.Error().
					Str("request_id", requestID).
					Str("path", req.Request.URL.Path).
					Interface("panic", r).
					Msg("handler panicked")
				resp.WriteHeaderAndEntity(http.StatusInternalServerError, ErrorResponse{
					Error:     "InternalServerError",
					Message:   "An unexpected error occurred. Please try again later.",
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					RequestID: requestID,
				})
			}
		}()
		chain.ProcessFilter(req, resp)
	}
}
