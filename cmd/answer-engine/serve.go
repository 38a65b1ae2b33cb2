// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/api"
	"github.com/pdiddy/answer-engine/internal/api/middleware"
	"github.com/pdiddy/answer-engine/internal/cache"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Serve exposes the pipeline over HTTP: POST /query answers a question,
GET /health and GET /status report component state, and /openapi.json
documents the API. Finished answers can be cached between requests when
caching is enabled in the configuration.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	eng, err := newEngine(ctx, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	var answerCache *cache.Cache
	if eng.cfg.Cache.Enabled {
		answerCache, err = cache.Open(eng.cfg.Cache, logger)
		if err != nil {
			return err
		}
		defer answerCache.Close()
	}

	handler := api.NewHandler(eng.coordinator, eng.store, answerCache, eng.webEnabled, logger)

	container := restful.NewContainer()
	container.Filter(middleware.Logger(logger))
	container.Filter(middleware.RecoverPanic(logger))
	api.RegisterRoutes(container, handler)

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	server := http.Server{
		Addr:         eng.cfg.Server.Addr,
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  eng.cfg.Server.ReadTimeout,
		WriteTimeout: eng.cfg.Server.WriteTimeout,
		IdleTimeout:  eng.cfg.Server.IdleTimeout,
	}

	logger.Info().Str("addr", server.Addr).Bool("web_search", eng.webEnabled).
		Msg("starting API server")
	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("API server: %w", err)
	}
	return nil
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Answer Engine API",
			Description: "Question answering over a local knowledge base and the web",
			Version:     version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "info", Description: "Service information"}},
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "query", Description: "Question answering"}},
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
