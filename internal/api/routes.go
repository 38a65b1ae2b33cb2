// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/pdiddy/answer-engine/internal/api/middleware"
)

// RegisterRoutes mounts all API routes on the container.
func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("").
			To(handler.Info).
			Doc("API information").
			Metadata(restfulspec.KeyOpenAPITags, []string{"info"}).
			Writes(InfoResponse{}).
			Returns(200, "OK", InfoResponse{}))

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}).
			Returns(503, "Service Unavailable", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("status").
			To(handler.Status).
			Doc("Detailed system status").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(StatusResponse{}).
			Returns(200, "OK", StatusResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("query").
			To(handler.Query).
			Doc("Ask a Red Dead Redemption 2 question").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Reads(QueryRequest{}).
			Writes(QueryResponse{}).
			Returns(200, "OK", QueryResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(503, "Service Unavailable", middleware.ErrorResponse{}))

	container.Add(ws)
}
