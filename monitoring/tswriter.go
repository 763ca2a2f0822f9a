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

package monitoring

import (
	"context"
	"time"

	"cxgparse/rdb"

	"github.com/czcorpus/hltscl"
	"github.com/rs/zerolog/log"
)

/*
Expected tables:

create table cxg_regeneration_stats (
  "time" timestamp with time zone NOT NULL,
  worker_id text,
  func text,
  num_items int,
  num_failed_items int,
  is_error int,
  duration_secs float
);
select create_hypertable('cxg_regeneration_stats', 'time');

create table cxg_parse_stats (
  "time" timestamp with time zone NOT NULL,
  input text,
  num_sentences int,
  num_tokens int,
  is_error int,
  duration_secs float
);
select create_hypertable('cxg_parse_stats', 'time');

*/

const (
	regenerationStatsTable = "cxg_regeneration_stats"
	parseStatsTable        = "cxg_parse_stats"
	tableWriteTimeout      = 20 * time.Second
)

type Conf struct {
	DB hltscl.PgConf `json:"db"`
}

type tableChannels struct {
	name   string
	writer *hltscl.TableWriter
	data   chan<- hltscl.Entry
	errs   <-chan hltscl.WriteError
}

func activateTable(ctx context.Context, writer *hltscl.TableWriter, name string) tableChannels {
	data, errs := writer.Activate(ctx, hltscl.WithTimeout(tableWriteTimeout))
	return tableChannels{name: name, writer: writer, data: data, errs: errs}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// TimescaleDBWriter stores regeneration jobs and parse requests
// as TimescaleDB time series.
type TimescaleDBWriter struct {
	regeneration tableChannels
	parse        tableChannels
	location     *time.Location
}

func (sw *TimescaleDBWriter) logWriteError(table string, err hltscl.WriteError) {
	log.Error().
		Err(err.Err).
		Str("entry", err.Entry.String()).
		Str("table", table).
		Msg("error writing data to TimescaleDB")
}

func (sw *TimescaleDBWriter) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("about to close TimescaleDB status writer")
				return
			case err := <-sw.regeneration.errs:
				sw.logWriteError(sw.regeneration.name, err)
			case err := <-sw.parse.errs:
				sw.logWriteError(sw.parse.name, err)
			}
		}
	}()
}

func (sw *TimescaleDBWriter) Stop(ctx context.Context) error {
	log.Warn().Msg("stopping TimescaleDB status writer")
	return nil
}

func (sw *TimescaleDBWriter) Write(item rdb.JobLog) {
	if sw.regeneration.writer == nil {
		return
	}
	sw.regeneration.data <- *sw.regeneration.writer.NewEntry(item.End.In(sw.location)).
		Str("worker_id", item.WorkerID).
		Str("func", item.Func).
		Int("num_items", item.NumItems).
		Int("num_failed_items", item.NumFailed).
		Int("is_error", boolToInt(item.Err != nil)).
		Float("duration_secs", item.TimeSpent().Seconds())
}

func (sw *TimescaleDBWriter) WriteParse(item ParseLog) {
	if sw.parse.writer == nil {
		return
	}
	sw.parse.data <- *sw.parse.writer.NewEntry(item.End.In(sw.location)).
		Str("input", item.Input).
		Int("num_sentences", item.NumSentences).
		Int("num_tokens", item.NumTokens).
		Int("is_error", boolToInt(item.Err != nil)).
		Float("duration_secs", item.TimeSpent().Seconds())
}

func NewTimescaleDBWriter(
	ctx context.Context,
	conf hltscl.PgConf,
	tz *time.Location,
) (*TimescaleDBWriter, error) {
	conn, err := hltscl.CreatePool(conf)
	if err != nil {
		return nil, err
	}
	return &TimescaleDBWriter{
		regeneration: activateTable(
			ctx,
			hltscl.NewTableWriter(conn, regenerationStatsTable, "time", tz),
			regenerationStatsTable,
		),
		parse: activateTable(
			ctx,
			hltscl.NewTableWriter(conn, parseStatsTable, "time", tz),
			parseStatsTable,
		),
		location: tz,
	}, nil
}
