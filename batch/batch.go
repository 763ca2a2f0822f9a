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

package batch

import (
	"context"
	"fmt"
	"time"

	"cxgparse/ce"
	"cxgparse/lexicon"
	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

const (
	DfltCacheClearInterval = 1000
)

// Regenerator rebuilds lexicon patterns. It is implemented
// by lexicon.Generator.
type Regenerator interface {
	Regenerate(ctx context.Context, entry lexicon.Entry) (*lexicon.Pattern, error)
	Cache() *lexicon.Cache
}

// SentenceProcessor turns a parsed sentence into a parse graph.
// It is implemented by pipeline.Pipeline.
type SentenceProcessor interface {
	Process(ctx context.Context, sent ud.Sentence) (*ce.ParseGraph, error)
}

type ItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// Report summarizes a batch run. Failed items do not stop the run.
type Report struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors"`
	TimeSpent float64     `json:"timeSpentSecs"`
}

func (r *Report) addError(item string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Item: item, Error: err.Error()})
}

func newReport(total int) Report {
	return Report{Total: total, Errors: []ItemError{}}
}

// runProtected calls fn and turns a possible panic into an error
func runProtected(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = merror.RecoveredError{Msg: merror.PanicValueToErr(r).Error()}
		}
	}()
	return fn()
}

// RegenerateAll regenerates patterns of all the entries one by one.
// Lookup caches are cleared after each `clearEvery` processed items
// (a non-positive value means DfltCacheClearInterval). Cancelling
// the context stops the run and the remaining items are reported
// as failed.
func RegenerateAll(
	ctx context.Context,
	gen Regenerator,
	entries []lexicon.Entry,
	clearEvery int,
) Report {
	t0 := time.Now()
	if clearEvery <= 0 {
		clearEvery = DfltCacheClearInterval
	}
	ans := newReport(len(entries))
	for i, entry := range entries {
		if ctx.Err() != nil {
			for _, rest := range entries[i:] {
				ans.addError(rest.Lemma, ctx.Err())
			}
			log.Warn().
				Int("remaining", len(entries)-i).
				Msg("regeneration cancelled")
			break
		}
		err := runProtected(func() error {
			_, err := gen.Regenerate(ctx, entry)
			return err
		})
		if err != nil {
			log.Error().
				Err(err).
				Int64("lemmaId", entry.ID).
				Str("lemma", entry.Lemma).
				Msg("failed to regenerate pattern")
			ans.addError(entry.Lemma, err)

		} else {
			ans.Succeeded++
		}
		if (i+1)%clearEvery == 0 {
			gen.Cache().Clear()
			log.Debug().Int("processed", i+1).Msg("lookup cache cleared")
		}
	}
	ans.TimeSpent = time.Since(t0).Seconds()
	log.Info().
		Int("total", ans.Total).
		Int("succeeded", ans.Succeeded).
		Int("failed", ans.Failed).
		Float64("timeSpentSecs", ans.TimeSpent).
		Msg("regeneration finished")
	return ans
}

// ParseCorpus processes already parsed sentences one by one and passes
// produced graphs to the `emit` function. Lookup cache clearing is
// up to the processor (see pipeline.Pipeline.WithCacheClearing).
func ParseCorpus(
	ctx context.Context,
	proc SentenceProcessor,
	sentences []ud.Sentence,
	emit func(idx int, sent ud.Sentence, graph *ce.ParseGraph) error,
) Report {
	t0 := time.Now()
	ans := newReport(len(sentences))
	for i, sent := range sentences {
		item := fmt.Sprintf("sentence %d", i+1)
		if ctx.Err() != nil {
			ans.Failed += len(sentences) - i
			ans.Errors = append(ans.Errors, ItemError{Item: item, Error: ctx.Err().Error()})
			break
		}
		err := runProtected(func() error {
			graph, err := proc.Process(ctx, sent)
			if err != nil {
				return err
			}
			if emit != nil {
				return emit(i, sent, graph)
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("item", item).Msg("failed to process sentence")
			ans.addError(item, err)

		} else {
			ans.Succeeded++
		}
	}
	ans.TimeSpent = time.Since(t0).Seconds()
	return ans
}
