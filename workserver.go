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
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"cxgparse/cnf"
	"cxgparse/db"
	"cxgparse/engine"
	"cxgparse/lexicon"
	"cxgparse/parsersvc"
	"cxgparse/rdb"
	"cxgparse/worker"

	"github.com/rs/zerolog/log"
)

func getWorkerID() (workerID string) {
	workerID = getEnv("WORKER_ID")
	if workerID == "" {
		workerID = strconv.Itoa(os.Getpid())
	}
	return
}

type NullLogger struct{}

func (n *NullLogger) Log(rec rdb.JobLog) {}

func runWorker(conf *cnf.Conf) {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := engine.Open(conf.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer sqlDB.Close()
	if err := engine.TestConnection(sqlDB, dbConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	store := db.NewPatternStore(sqlDB)
	parser, err := parsersvc.NewFromConf(conf.Parser)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize parser service client")
	}
	generator := lexicon.NewGenerator(parser, store, lexicon.NewCache(store))

	// job loads are collected by the API server from obtained results,
	// the worker has nothing to report by itself
	radapter := rdb.NewAdapter(ctx, conf.Redis, nil)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	ch := radapter.Subscribe()
	wrk := worker.NewWorker(
		workerID,
		radapter,
		ch,
		generator,
		store,
		conf.Batch.CacheClearInterval,
		&NullLogger{},
	)

	services := []service{wrk}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")
	shutdownServices(services)
	if err := radapter.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close Redis connection")
	}
}
