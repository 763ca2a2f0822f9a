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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cxgparse/batch"
	"cxgparse/engine"
	"cxgparse/monitoring"
	"cxgparse/parsersvc"
	"cxgparse/rdb"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltServerReadTimeoutSecs  = 15
	dfltListenPort             = 8080
	dfltTimeZone               = "Europe/Prague"
)

// ConstructionsConf specifies where construction definitions come from.
// Definitions from the file and the database are merged; a database
// definition replaces a file one with the same name.
type ConstructionsConf struct {
	File   string `json:"file"`
	FromDB bool   `json:"fromDb"`
}

type BatchConf struct {
	CacheClearInterval int `json:"cacheClearInterval"`
}

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string              `json:"listenAddress"`
	PublicURL              string              `json:"publicUrl"`
	ListenPort             int                 `json:"listenPort"`
	ServerReadTimeoutSecs  int                 `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                 `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string            `json:"corsAllowedOrigins"`
	Redis                  *rdb.Conf           `json:"redis"`
	DB                     *engine.DBConf      `json:"db"`
	Parser                 *parsersvc.Conf     `json:"parser"`
	Constructions          ConstructionsConf   `json:"constructions"`
	Batch                  BatchConf           `json:"batch"`
	Monitoring             *monitoring.Conf    `json:"monitoring"`
	LogFile                string              `json:"logFile"`
	LogLevel               logging.LogLevel    `json:"logLevel"`
	TimeZone               string              `json:"timeZone"`
	AuthHeaderName         string              `json:"authHeaderName"`
	AuthTokens             []string            `json:"authTokens"`
	APIDocsURLPath         string              `json:"apiDocsUrlPath"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call c.Validate()
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

// ResolvePath returns an absolute path of a file referred from
// the config. Relative paths are resolved against the config location.
func (conf *Conf) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(conf.GetSourcePath()), path)
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

// Validate checks the configuration and fills in default values.
// Unlike ValidateAndDefaults, it does not terminate the process.
func (conf *Conf) Validate() error {
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Int("port", conf.ListenPort).Msg("listenPort not specified, using default")
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s", conf.ListenAddress)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}
	if err := conf.Redis.ValidateAndDefaults(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := conf.DB.ValidateAndDefaults("db"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := conf.Parser.ValidateAndDefaults(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if conf.Parser.CacheDir != "" {
		conf.Parser.CacheDir = conf.ResolvePath(conf.Parser.CacheDir)
	}
	if conf.Constructions.File != "" {
		conf.Constructions.File = conf.ResolvePath(conf.Constructions.File)

	} else if !conf.Constructions.FromDB {
		log.Warn().Msg("no source of constructions specified, construction detection disabled")
	}
	if conf.Batch.CacheClearInterval <= 0 {
		conf.Batch.CacheClearInterval = batch.DfltCacheClearInterval
		log.Warn().
			Int("value", conf.Batch.CacheClearInterval).
			Msg("batch.cacheClearInterval not specified, using default")
	}
	if conf.Monitoring == nil {
		log.Warn().Msg("monitoring database not configured, job statistics will not be stored")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	return nil
}

func ValidateAndDefaults(conf *Conf) {
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
