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
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cxgparse/batch"
	"cxgparse/ce"
	"cxgparse/cnf"
	"cxgparse/pipeline"
	"cxgparse/ud"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// jsonLinesWriter writes one JSON document per line
type jsonLinesWriter struct {
	w *bufio.Writer
}

func (jw *jsonLinesWriter) Write(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(data); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

func (jw *jsonLinesWriter) Flush() error {
	return jw.w.Flush()
}

func newJSONLinesWriter(w io.Writer) *jsonLinesWriter {
	return &jsonLinesWriter{w: bufio.NewWriter(w)}
}

func logReport(report batch.Report, msg string) {
	evt := log.Info()
	if report.Failed > 0 {
		evt = log.Warn()
	}
	evt.
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Float64("timeSpentSecs", report.TimeSpent).
		Msg(msg)
	for _, item := range report.Errors {
		log.Error().Str("item", item.Item).Str("error", item.Error).Msg("batch item failed")
	}
}

func runRegenerate(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newCore(ctx, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the parser")
		return
	}
	defer app.Close()

	entries, err := app.store.Entries(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load lexicon entries")
		return
	}
	report := batch.RegenerateAll(ctx, app.generator(), entries, conf.Batch.CacheClearInterval)
	logReport(report, "regeneration of lexicon patterns finished")
	out := newJSONLinesWriter(os.Stdout)
	if err := out.Write(report); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}
	if err := out.Flush(); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}
}

func readSentences(conlluPath string) ([]ud.Sentence, bool, error) {
	if conlluPath == "" {
		return nil, false, nil
	}
	f, err := os.Open(conlluPath)
	if err != nil {
		return nil, true, err
	}
	defer f.Close()
	sents, err := ud.ReadConllu(f)
	return sents, true, err
}

func runParse(conf *cnf.Conf, conlluPath, text string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newCore(ctx, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the parser")
		return
	}
	defer app.Close()

	out := newJSONLinesWriter(os.Stdout)
	defer func() {
		if err := out.Flush(); err != nil {
			log.Error().Err(err).Msg("failed to write results")
		}
	}()

	sents, isConllu, err := readSentences(conlluPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", conlluPath).Msg("failed to read CoNLL-U file")
		return
	}
	if isConllu {
		report := batch.ParseCorpus(
			ctx,
			app.pipeline,
			sents,
			func(idx int, sent ud.Sentence, graph *ce.ParseGraph) error {
				return out.Write(pipeline.Result{Text: sent.Text(), NumTokens: len(sent), Graph: graph})
			},
		)
		logReport(report, "corpus processed")
		return
	}

	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read standard input")
			return
		}
		text = string(data)
	}
	results, err := app.pipeline.ProcessText(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse text")
		return
	}
	for _, res := range results {
		if err := out.Write(res); err != nil {
			log.Error().Err(err).Msg("failed to write results")
			return
		}
	}
}
