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
	"sync"

	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

// Index keeps all the stored lexicon patterns in memory
// and matches them against sentences.
type Index struct {
	cache    *Cache
	matcher  *Matcher
	patterns map[int64]*Pattern
	ordered  []*Pattern
	lock     sync.RWMutex
}

func (idx *Index) rebuildOrder() {
	idx.ordered = make([]*Pattern, 0, len(idx.patterns))
	for _, p := range idx.patterns {
		idx.ordered = append(idx.ordered, p)
	}
	sortPatterns(idx.ordered)
}

func (idx *Index) Cache() *Cache {
	return idx.cache
}

func (idx *Index) Size() int {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	return len(idx.patterns)
}

func (idx *Index) Get(lemmaID int64) *Pattern {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	return idx.patterns[lemmaID]
}

func (idx *Index) clearCache() {
	if idx.cache != nil {
		idx.cache.Clear()
	}
}

// Update replaces (or adds) the pattern of a lemma.
// Cached lookups are dropped as they may contain stale misses.
func (idx *Index) Update(p *Pattern) {
	idx.lock.Lock()
	idx.patterns[p.LemmaID] = p
	idx.rebuildOrder()
	idx.lock.Unlock()
	idx.clearCache()
}

// Reload replaces all the patterns by the ones from the store.
func (idx *Index) Reload(ctx context.Context, store Store) error {
	patterns, err := store.LoadPatterns(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload lexicon patterns: %w", err)
	}
	idx.lock.Lock()
	idx.patterns = make(map[int64]*Pattern, len(patterns))
	for _, p := range patterns {
		idx.patterns[p.LemmaID] = p
	}
	idx.rebuildOrder()
	idx.lock.Unlock()
	idx.clearCache()
	log.Info().Int("numPatterns", len(patterns)).Msg("loaded lexicon patterns")
	return nil
}

// MatchSentence finds all accepted pattern matches in the sentence.
func (idx *Index) MatchSentence(ctx context.Context, sent ud.Sentence) ([]Match, error) {
	rs, err := Resolve(ctx, sent, idx.cache)
	if err != nil {
		return nil, err
	}
	idx.lock.RLock()
	patterns := idx.ordered
	idx.lock.RUnlock()
	return idx.matcher.MatchAll(rs, patterns), nil
}

// MatchPattern matches a single pattern against the sentence.
func (idx *Index) MatchPattern(ctx context.Context, sent ud.Sentence, p *Pattern) (Match, bool, error) {
	rs, err := Resolve(ctx, sent, idx.cache)
	if err != nil {
		return Match{}, false, err
	}
	m, ok := idx.matcher.Match(rs, p)
	return m, ok, nil
}

func NewIndex(cache *Cache, patterns []*Pattern) *Index {
	ans := &Index{
		cache:    cache,
		matcher:  NewMatcher(),
		patterns: make(map[int64]*Pattern, len(patterns)),
	}
	for _, p := range patterns {
		ans.patterns[p.LemmaID] = p
	}
	ans.rebuildOrder()
	return ans
}
