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
	"database/sql"
	"fmt"

	"cxgparse/cnf"
	"cxgparse/construction"
	"cxgparse/db"
	"cxgparse/engine"
	"cxgparse/lexicon"
	"cxgparse/parsersvc"
	"cxgparse/pipeline"

	"github.com/rs/zerolog/log"
)

// core holds the components shared by the API server
// and the command line batch actions.
type core struct {
	db        *sql.DB
	store     *db.PatternStore
	cache     *lexicon.Cache
	index     *lexicon.Index
	inventory *construction.Inventory
	parser    parsersvc.Parser
	pipeline  *pipeline.Pipeline
}

func (c *core) Close() {
	if err := c.db.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database connection")
	}
}

func (c *core) generator() *lexicon.Generator {
	return lexicon.NewGenerator(c.parser, c.store, c.cache)
}

func loadConstructions(
	ctx context.Context,
	conf cnf.ConstructionsConf,
	store *db.PatternStore,
) (*construction.Inventory, error) {
	var defs []construction.Definition
	if conf.File != "" {
		fileDefs, err := construction.ReadDefinitions(conf.File)
		if err != nil {
			return nil, err
		}
		defs = fileDefs
	}
	if conf.FromDB {
		dbDefs, err := store.LoadConstructions(ctx)
		if err != nil {
			return nil, err
		}
		defs = construction.MergeDefinitions(defs, dbDefs)
	}
	ans := construction.NewInventory(defs)
	log.Info().
		Str("file", conf.File).
		Bool("fromDb", conf.FromDB).
		Int("defined", len(defs)).
		Int("active", ans.Len()).
		Msg("loaded construction inventory")
	return ans, nil
}

func newCore(ctx context.Context, conf *cnf.Conf) (*core, error) {
	sqlDB, err := engine.Open(conf.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := engine.TestConnection(sqlDB, dbConnectionTestTimeout); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := db.NewPatternStore(sqlDB)
	cache := lexicon.NewCache(store)
	index := lexicon.NewIndex(cache, nil)
	if err := index.Reload(ctx, store); err != nil {
		sqlDB.Close()
		return nil, err
	}
	inventory, err := loadConstructions(ctx, conf.Constructions, store)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	parser, err := parsersvc.NewFromConf(conf.Parser)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize parser service client: %w", err)
	}
	pline := pipeline.New(inventory, index, parser).
		WithCacheClearing(cache, conf.Batch.CacheClearInterval)
	return &core{
		db:        sqlDB,
		store:     store,
		cache:     cache,
		index:     index,
		inventory: inventory,
		parser:    parser,
		pipeline:  pline,
	}, nil
}
