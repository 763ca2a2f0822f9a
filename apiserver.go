// Copyright 2026 The CXGPARSE authors
//   This file is part of CXGPARSE.
//
//  CXGPARSE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXGPARSE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXGPARSE.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cxgparse/cnf"
	"cxgparse/docs"
	"cxgparse/handlers"
	"cxgparse/monitoring"
	monitoringActions "cxgparse/monitoring/handlers"
	"cxgparse/rdb"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type serverInfo struct {
	Name          string      `json:"name"`
	Version       VersionInfo `json:"version"`
	NumPatterns   int         `json:"numPatterns"`
	Constructions []string    `json:"constructions"`
}

func mkServerInfo(version VersionInfo, app *core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			serverInfo{
				Name:          "CXGPARSE",
				Version:       version,
				NumPatterns:   app.index.Size(),
				Constructions: app.inventory.Names(),
			},
		)
	}
}

type apiServer struct {
	server   *http.Server
	conf     *cnf.Conf
	version  VersionInfo
	app      *core
	radapter *rdb.Adapter
	stats    *monitoring.Collector
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(CORSMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	protected := engine.Group("/tools").Use(AuthRequired(api.conf))

	cxgActions := handlers.NewActions(api.app.pipeline, api.app.index, api.app.store, api.radapter)
	cxgActions.SetParseLogger(api.stats)
	monActions := monitoringActions.NewActions(api.stats)

	engine.GET("/", mkServerInfo(api.version, api.app))

	if api.conf.APIDocsURLPath != "" {
		docs.SwaggerInfo.BasePath = api.conf.APIDocsURLPath
	}
	docs.SwaggerInfo.Version = api.version.Version

	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// also serve the JSON variant of the docs on the legacy URL:
	engine.GET(
		"/openapi",
		func(ctx *gin.Context) {
			uniresp.WriteRawJSONResponse(ctx.Writer, []byte(docs.SwaggerInfo.ReadDoc()))
		},
	)

	engine.POST(
		"/parse", cxgActions.Parse)

	engine.POST(
		"/patterns/compile", cxgActions.CompilePattern)

	engine.POST(
		"/patterns/match", cxgActions.MatchPattern)

	engine.GET(
		"/lexicon/:lemmaId/pattern", cxgActions.LexiconPattern)

	engine.POST(
		"/lexicon/:lemmaId/match", cxgActions.LexiconMatch)

	protected.POST(
		"/lexicon/:lemmaId/regenerate", cxgActions.RegenerateLemma)

	protected.POST(
		"/lexicon/regenerate-all", cxgActions.RegenerateAll)

	engine.GET(
		"/monitoring/worker-load", monActions.WorkersLoad)

	engine.GET(
		"/monitoring/worker-load/:workerId", monActions.SingleWorkerLoad)

	engine.GET(
		"/monitoring/recent-records", monActions.RecentRecords)

	engine.GET(
		"/monitoring/funcs", monActions.FuncsLoad)

	engine.GET(
		"/monitoring/parse-throughput", monActions.ParseThroughput)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down CXGPARSE HTTP API server")
	if err := api.server.Shutdown(ctx); err != nil {
		return err
	}
	return api.radapter.Close()
}

func newStatusWriter(ctx context.Context, conf *cnf.Conf) monitoring.StatusWriter {
	if conf.Monitoring == nil {
		return &monitoring.NullStatusWriter{}
	}
	sw, err := monitoring.NewTimescaleDBWriter(ctx, conf.Monitoring.DB, conf.TimezoneLocation())
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize TimescaleDB writer, regeneration and parse statistics will not be stored")
		return &monitoring.NullStatusWriter{}
	}
	return sw
}

func runApiServer(conf *cnf.Conf, version VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newCore(ctx, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the parser")
		return
	}
	defer app.Close()

	statusWriter := newStatusWriter(ctx, conf)
	stats := monitoring.NewCollector(statusWriter, conf.TimezoneLocation())

	radapter := rdb.NewAdapter(ctx, conf.Redis, stats)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}
	server := &apiServer{
		conf:     conf,
		version:  version,
		app:      app,
		radapter: radapter,
		stats:    stats,
	}

	services := []service{stats, server}
	if sw, ok := statusWriter.(service); ok {
		services = append(services, sw)
	}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")
	shutdownServices(services)
}

func shutdownServices(services []service) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
