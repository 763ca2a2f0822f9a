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

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

const (
	dfltPort               = 3306
	dfltPoolSize           = 10
	dfltConnMaxLifetimeSec = 300
)

type DBConf struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	Name               string `json:"name"`
	User               string `json:"user"`
	Password           string `json:"password"`
	PoolSize           int    `json:"poolSize"`
	ConnMaxLifetimeSec int    `json:"connMaxLifetimeSec"`
}

func (dbc *DBConf) Addr() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

func (dbc *DBConf) ValidateAndDefaults(confContext string) error {
	if dbc == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if dbc.Host == "" {
		return fmt.Errorf("missing `%s.host`", confContext)
	}
	if dbc.Name == "" {
		return fmt.Errorf("missing `%s.name`", confContext)
	}
	if dbc.Port == 0 {
		dbc.Port = dfltPort
		log.Warn().
			Int("value", dbc.Port).
			Msgf("%s.port not set, using default", confContext)
	}
	if dbc.PoolSize == 0 {
		dbc.PoolSize = dfltPoolSize
		log.Warn().
			Int("value", dbc.PoolSize).
			Msgf("%s.poolSize not set, using default", confContext)
	}
	if dbc.ConnMaxLifetimeSec == 0 {
		dbc.ConnMaxLifetimeSec = dfltConnMaxLifetimeSec
	}
	return nil
}

func Open(conf *DBConf) (*sql.DB, error) {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = conf.Addr()
	mconf.User = conf.User
	mconf.Passwd = conf.Password
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	mconf.Params = map[string]string{"autocommit": "true"}
	db, err := sql.Open("mysql", mconf.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(conf.PoolSize)
	db.SetMaxIdleConns(conf.PoolSize)
	db.SetConnMaxLifetime(time.Duration(conf.ConnMaxLifetimeSec) * time.Second)
	return db, nil
}

// TestConnection pings the database until it responds
// or the timeout elapses.
func TestConnection(db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	for {
		err := db.PingContext(ctx)
		if err == nil {
			log.Info().Msg("connection to the database OK")
			return nil
		}
		log.Warn().Err(err).Msg("database not ready, trying again")
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to the database: %w", err)
		case <-tick.C:
		}
	}
}
