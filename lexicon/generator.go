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

package lexicon

import (
	"context"
	"fmt"

	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

// Parser obtains dependency parses of a text.
type Parser interface {
	Parse(ctx context.Context, text string) ([]ud.Sentence, error)
}

// Generator performs the offline pattern generation:
// parse the entry text, build the pattern, replace the stored one.
type Generator struct {
	parser  Parser
	store   Store
	cache   *Cache
	builder *Builder
}

func (g *Generator) Cache() *Cache {
	return g.cache
}

func (g *Generator) Regenerate(ctx context.Context, entry Entry) (*Pattern, error) {
	sents, err := g.parser.Parse(ctx, entry.SurfaceText())
	if err != nil {
		return nil, fmt.Errorf("failed to parse text of `%s`: %w", entry.Lemma, err)
	}
	if len(sents) == 0 {
		return nil, merror.NoRootTokenError{Lemma: entry.Lemma}
	}
	if len(sents) > 1 {
		log.Warn().
			Str("lemma", entry.Lemma).
			Int("numSentences", len(sents)).
			Msg("entry text parsed into multiple sentences, using the first one")
	}
	pat, err := g.builder.Build(ctx, entry, sents[0])
	if err != nil {
		return nil, err
	}
	if err := g.store.ReplacePattern(ctx, pat); err != nil {
		return nil, fmt.Errorf("failed to store pattern of `%s`: %w", entry.Lemma, err)
	}
	log.Debug().
		Str("lemma", entry.Lemma).
		Int("nodes", len(pat.Nodes)).
		Int("edges", len(pat.Edges)).
		Msg("regenerated lexicon pattern")
	return pat, nil
}

func NewGenerator(parser Parser, store Store, cache *Cache) *Generator {
	return &Generator{
		parser:  parser,
		store:   store,
		cache:   cache,
		builder: NewBuilder(cache),
	}
}
