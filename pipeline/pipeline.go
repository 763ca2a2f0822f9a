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

package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"cxgparse/ce"
	"cxgparse/construction"
	"cxgparse/folding"
	"cxgparse/merror"
	"cxgparse/transcription"
	"cxgparse/translation"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

// Parser provides dependency parses of raw texts.
type Parser interface {
	Parse(ctx context.Context, text string) ([]ud.Sentence, error)
}

// Result is a parse graph of a single sentence.
type Result struct {
	Text      string         `json:"text"`
	NumTokens int            `json:"numTokens"`
	Graph     *ce.ParseGraph `json:"graph"`
}

// CacheClearer is a lookup cache which can be emptied.
type CacheClearer interface {
	Clear()
}

// Pipeline runs transcription, translation and folding over
// sentences. It holds no per-sentence state so it can be shared
// by concurrent requests.
type Pipeline struct {
	transcriber *transcription.Transcriber
	parser      Parser
	cache       CacheClearer
	clearEvery  int64
	processed   atomic.Int64
}

// WithCacheClearing makes the pipeline clear the cache after
// each `every` processed sentences. A non-positive value disables it.
func (p *Pipeline) WithCacheClearing(cache CacheClearer, every int) *Pipeline {
	p.cache = cache
	p.clearEvery = int64(every)
	return p
}

func (p *Pipeline) countProcessed() {
	n := p.processed.Add(1)
	if p.cache != nil && p.clearEvery > 0 && n%p.clearEvery == 0 {
		p.cache.Clear()
		log.Debug().Int64("processed", n).Msg("lookup cache cleared")
	}
}

// Processed returns the number of sentences the pipeline has attempted.
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

// Process parses a single sentence.
func (p *Pipeline) Process(ctx context.Context, sent ud.Sentence) (*ce.ParseGraph, error) {
	if err := sent.Validate(); err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	defer p.countProcessed()
	t0 := time.Now()
	phrasal, err := p.transcriber.Transcribe(ctx, sent)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	arena, err := translation.Translate(phrasal)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	graph, err := folding.Fold(arena)
	if err != nil {
		return nil, fmt.Errorf("folding failed: %w", err)
	}
	log.Debug().
		Int("tokens", len(sent)).
		Int("nodes", len(graph.Nodes())).
		Float64("procTime", time.Since(t0).Seconds()).
		Msg("sentence processed")
	return graph, nil
}

// ProcessText sends the text to the external parser and
// processes all the returned sentences.
func (p *Pipeline) ProcessText(ctx context.Context, text string) ([]Result, error) {
	if p.parser == nil {
		return nil, merror.InternalError{Msg: "no dependency parser configured"}
	}
	sents, err := p.parser.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	ans := make([]Result, 0, len(sents))
	for i, sent := range sents {
		graph, err := p.Process(ctx, sent)
		if err != nil {
			return nil, fmt.Errorf("failed to process sentence %d: %w", i+1, err)
		}
		ans = append(ans, Result{Text: sent.Text(), NumTokens: len(sent), Graph: graph})
	}
	return ans, nil
}

// New creates a pipeline. The inventory, the lexicon matcher
// and the parser are all optional (nil).
func New(
	inventory *construction.Inventory,
	lex transcription.LexiconMatcher,
	parser Parser,
) *Pipeline {
	return &Pipeline{
		transcriber: transcription.NewTranscriber(inventory, lex),
		parser:      parser,
	}
}
