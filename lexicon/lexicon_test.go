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
	"errors"
	"fmt"
	"sync"
	"testing"

	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	parses map[string][]ud.Sentence
	err    error
}

func (fp *fakeParser) Parse(ctx context.Context, text string) ([]ud.Sentence, error) {
	if fp.err != nil {
		return nil, fp.err
	}
	return fp.parses[text], nil
}

func countOnText() ud.Sentence {
	return ud.Sentence{
		{ID: 1, Word: "count", Lemma: "count", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "on", Lemma: "on", POS: "ADP", Head: 1, Deprel: "compound:prt"},
	}
}

func countOnSentence() ud.Sentence {
	return ud.Sentence{
		{ID: 1, Word: "You", Lemma: "you", POS: "PRON", Head: 3, Deprel: "nsubj"},
		{ID: 2, Word: "can", Lemma: "can", POS: "AUX", Head: 3, Deprel: "aux"},
		{ID: 3, Word: "count", Lemma: "count", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 4, Word: "on", Lemma: "on", POS: "ADP", Head: 3, Deprel: "compound:prt"},
		{ID: 5, Word: "me", Lemma: "I", POS: "PRON", Head: 3, Deprel: "obj"},
	}
}

func newTestStore() *MemStore {
	st := NewMemStore()
	for _, lemma := range []string{"count on", "count", "on", "you", "can", "I", "the", "cat", "sit", "mat"} {
		st.AddEntry(Entry{Lemma: lemma})
	}
	return st
}

func TestCacheCachesMisses(t *testing.T) {
	st := newTestStore()
	cache := NewCache(st)
	id, found, err := cache.LemmaID(context.Background(), "Count")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), id)
	_, found, err = cache.LemmaID(context.Background(), "xyz")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, cache.Size())
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCacheConcurrentClear(t *testing.T) {
	cache := NewCache(newTestStore())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, _, err := cache.LemmaID(context.Background(), fmt.Sprintf("w%d-%d", i, j%10))
				assert.NoError(t, err)
				_, _, err = cache.RelationID(context.Background(), "obj")
				assert.NoError(t, err)
				if j%50 == 0 {
					cache.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
	id, found, err := cache.LemmaID(context.Background(), "cat")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(8), id)
}

func TestIndexUpdateDropsStaleMisses(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	idx := NewIndex(cache, nil)
	_, found, err := cache.LemmaID(ctx, "zork")
	require.NoError(t, err)
	require.False(t, found)

	entry := st.AddEntry(Entry{Lemma: "zork"})
	idx.Update(&Pattern{LemmaID: entry.ID, Lemma: "zork"})
	assert.Equal(t, 0, cache.Size())
	id, found, err := cache.LemmaID(ctx, "zork")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry.ID, id)

	_, _, err = cache.POSID(ctx, "NOUN")
	require.NoError(t, err)
	require.NoError(t, idx.Reload(ctx, st))
	assert.Equal(t, 0, cache.Size())
}

func TestBuildPattern(t *testing.T) {
	st := newTestStore()
	b := NewBuilder(NewCache(st))
	entry := st.AddEntry(Entry{Lemma: "count on", ID: 1})
	pat, err := b.Build(context.Background(), entry, countOnText())
	require.NoError(t, err)
	assert.Equal(t, PatternTypeDependency, pat.Type)
	require.Len(t, pat.Nodes, 2)
	require.Len(t, pat.Edges, 1)
	root, ok := pat.Root()
	assert.True(t, ok)
	assert.Equal(t, 1, root.Position)
	assert.Equal(t, 2, pat.RequiredCount())
	relID, _, _ := st.RelationID(context.Background(), "compound")
	assert.Equal(t, relID, pat.Edges[0].RelationID, "relation subtype must be stripped")
	assert.False(t, pat.IsStrictOrder())
}

func TestBuildPatternNoRoot(t *testing.T) {
	st := newTestStore()
	b := NewBuilder(NewCache(st))
	sent := ud.Sentence{
		{ID: 1, Word: "a", Lemma: "a", POS: "X", Head: 2, Deprel: "dep"},
		{ID: 2, Word: "b", Lemma: "b", POS: "X", Head: 1, Deprel: "dep"},
	}
	_, err := b.Build(context.Background(), Entry{ID: 1, Lemma: "a b"}, sent)
	var noRoot merror.NoRootTokenError
	assert.True(t, errors.As(err, &noRoot))
	assert.Equal(t, "a b", noRoot.Lemma)
}

func TestBuildPatternFixedIsStrict(t *testing.T) {
	st := newTestStore()
	b := NewBuilder(NewCache(st))
	sent := ud.Sentence{
		{ID: 1, Word: "because", Lemma: "because", POS: "SCONJ", Head: 0, Deprel: "root"},
		{ID: 2, Word: "of", Lemma: "of", POS: "ADP", Head: 1, Deprel: "fixed"},
	}
	pat, err := b.Build(context.Background(), Entry{ID: 99, Lemma: "because of"}, sent)
	require.NoError(t, err)
	assert.True(t, pat.IsStrictOrder())
	assert.Equal(t, int64(0), pat.Nodes[0].LexiconID, "unknown lemma is unconstrained")
}

func TestBuildPatternUnknownRelationSkipsEdge(t *testing.T) {
	st := newTestStore()
	b := NewBuilder(NewCache(st))
	sent := ud.Sentence{
		{ID: 1, Word: "count", Lemma: "count", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "on", Lemma: "on", POS: "ADP", Head: 1, Deprel: "weirdrel"},
	}
	pat, err := b.Build(context.Background(), Entry{ID: 1, Lemma: "count on"}, sent)
	require.NoError(t, err)
	assert.Len(t, pat.Nodes, 2)
	assert.Len(t, pat.Edges, 0)
}

func TestBuildPatternOptionalNodes(t *testing.T) {
	st := newTestStore()
	b := NewBuilder(NewCache(st))
	sent := ud.Sentence{
		{ID: 1, Word: "the", Lemma: "the", POS: "DET", Head: 2, Deprel: "det"},
		{ID: 2, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 0, Deprel: "root"},
	}
	pat, err := b.Build(context.Background(), Entry{ID: 8, Lemma: "the cat"}, sent)
	require.NoError(t, err)
	assert.False(t, pat.Nodes[0].IsRequired)
	assert.True(t, pat.Nodes[1].IsRequired)
	assert.Equal(t, 1, pat.RequiredCount())
}

func TestMatchCountOn(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 1, Lemma: "count on"}, countOnText())
	require.NoError(t, err)
	rs, err := Resolve(ctx, countOnSentence(), cache)
	require.NoError(t, err)
	match, ok := NewMatcher().Match(rs, pat)
	require.True(t, ok)
	assert.Equal(t, []int{3, 4}, match.TokenIndices)
	assert.Equal(t, 1.0, match.Confidence)
	assert.Equal(t, map[int]int{1: 3, 2: 4}, match.Mapping)
}

func TestMatchSelfMatchFullConfidence(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	sent := countOnSentence()
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 50, Lemma: "you can count on me"}, sent)
	require.NoError(t, err)
	rs, err := Resolve(ctx, sent, cache)
	require.NoError(t, err)
	match, ok := NewMatcher().Match(rs, pat)
	require.True(t, ok)
	assert.Equal(t, 1.0, match.Confidence)
	assert.Len(t, match.Mapping, len(pat.Nodes))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, match.TokenIndices)
}

func TestMatchWrongRelationFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 1, Lemma: "count on"}, countOnText())
	require.NoError(t, err)
	sent := countOnSentence()
	sent[3].Deprel = "obl"
	rs, err := Resolve(ctx, sent, cache)
	require.NoError(t, err)
	_, ok := NewMatcher().Match(rs, pat)
	assert.False(t, ok)
}

func TestMatchMissingOptionalNode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	src := ud.Sentence{
		{ID: 1, Word: "the", Lemma: "the", POS: "DET", Head: 3, Deprel: "det"},
		{ID: 2, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 3, Deprel: "nsubj"},
		{ID: 3, Word: "sat", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
	}
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 77, Lemma: "the cat sat"}, src)
	require.NoError(t, err)
	assert.Equal(t, 2, pat.RequiredCount())

	target := ud.Sentence{
		{ID: 1, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 2, Deprel: "nsubj"},
		{ID: 2, Word: "sat", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
	}
	rs, err := Resolve(ctx, target, cache)
	require.NoError(t, err)
	match, ok := NewMatcher().Match(rs, pat)
	require.True(t, ok)
	assert.GreaterOrEqual(t, match.Confidence, 0.8)
	assert.Equal(t, []int{1, 2}, match.TokenIndices)
}

func TestMatchMissingRequiredNode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 1, Lemma: "count on"}, countOnText())
	require.NoError(t, err)
	target := ud.Sentence{
		{ID: 1, Word: "count", Lemma: "count", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "me", Lemma: "I", POS: "PRON", Head: 1, Deprel: "obj"},
	}
	rs, err := Resolve(ctx, target, cache)
	require.NoError(t, err)
	_, ok := NewMatcher().Match(rs, pat)
	assert.False(t, ok)
}

func TestMatchUnknownSentenceLemmaIsWildcard(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 1, Lemma: "count on"}, countOnText())
	require.NoError(t, err)
	sent := countOnSentence()
	sent[3].Lemma = "onward-unknown"
	rs, err := Resolve(ctx, sent, cache)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rs.Tokens[3].LexiconID)
	match, ok := NewMatcher().Match(rs, pat)
	require.True(t, ok)
	assert.Equal(t, []int{3, 4}, match.TokenIndices)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestMatchUnknownSentenceLemmaKeepsPOS(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 1, Lemma: "count on"}, countOnText())
	require.NoError(t, err)
	sent := countOnSentence()
	sent[3].Lemma = "onward-unknown"
	sent[3].POS = "NOUN"
	rs, err := Resolve(ctx, sent, cache)
	require.NoError(t, err)
	_, ok := NewMatcher().Match(rs, pat)
	assert.False(t, ok)
}

func TestMatchSameRelationSiblings(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	src := ud.Sentence{
		{ID: 1, Word: "sit", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "zork", Lemma: "zork", POS: "NOUN", Head: 1, Deprel: "obl"},
		{ID: 3, Word: "mat", Lemma: "mat", POS: "NOUN", Head: 1, Deprel: "obl"},
	}
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 90, Lemma: "sit zork mat"}, src)
	require.NoError(t, err)
	require.Equal(t, int64(0), pat.Nodes[1].LexiconID)
	require.Len(t, pat.Edges, 2)

	target := ud.Sentence{
		{ID: 1, Word: "sat", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "mat", Lemma: "mat", POS: "NOUN", Head: 1, Deprel: "obl"},
		{ID: 3, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 1, Deprel: "obl"},
	}
	rs, err := Resolve(ctx, target, cache)
	require.NoError(t, err)
	match, ok := NewMatcher().Match(rs, pat)
	require.True(t, ok)
	assert.Equal(t, map[int]int{1: 1, 2: 3, 3: 2}, match.Mapping)
	assert.Equal(t, []int{1, 2, 3}, match.TokenIndices)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestMatchSameRelationSiblingsMissing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	cache := NewCache(st)
	src := ud.Sentence{
		{ID: 1, Word: "sit", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "zork", Lemma: "zork", POS: "NOUN", Head: 1, Deprel: "obl"},
		{ID: 3, Word: "mat", Lemma: "mat", POS: "NOUN", Head: 1, Deprel: "obl"},
	}
	pat, err := NewBuilder(cache).Build(ctx, Entry{ID: 90, Lemma: "sit zork mat"}, src)
	require.NoError(t, err)
	target := ud.Sentence{
		{ID: 1, Word: "sat", Lemma: "sit", POS: "VERB", Head: 0, Deprel: "root"},
		{ID: 2, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 1, Deprel: "obl"},
		{ID: 3, Word: "cat", Lemma: "cat", POS: "NOUN", Head: 1, Deprel: "obl"},
	}
	rs, err := Resolve(ctx, target, cache)
	require.NoError(t, err)
	_, ok := NewMatcher().Match(rs, pat)
	assert.False(t, ok)
}

func TestMatchNilPatternIsInvisible(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(newTestStore())
	rs, err := Resolve(ctx, countOnSentence(), cache)
	require.NoError(t, err)
	_, ok := NewMatcher().Match(rs, nil)
	assert.False(t, ok)
	assert.Len(t, NewMatcher().MatchAll(rs, []*Pattern{nil}), 0)
}

func TestGeneratorReplacesPattern(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	entry, err := st.Entry(ctx, 1)
	require.NoError(t, err)
	parser := &fakeParser{parses: map[string][]ud.Sentence{"count on": {countOnText()}}}
	gen := NewGenerator(parser, st, NewCache(st))

	_, err = gen.Regenerate(ctx, entry)
	require.NoError(t, err)
	_, err = gen.Regenerate(ctx, entry)
	require.NoError(t, err)

	stored, err := st.LoadPattern(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Nodes, 2)
	assert.Len(t, stored.Edges, 1)
	all, err := st.LoadPatterns(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGeneratorEmptyParse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	gen := NewGenerator(&fakeParser{}, st, NewCache(st))
	_, err := gen.Regenerate(ctx, Entry{ID: 1, Lemma: "count on"})
	var noRoot merror.NoRootTokenError
	assert.True(t, errors.As(err, &noRoot))
}

func TestGeneratorParserError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	gen := NewGenerator(&fakeParser{err: errors.New("service down")}, st, NewCache(st))
	_, err := gen.Regenerate(ctx, Entry{ID: 1, Lemma: "count on"})
	assert.Error(t, err)
	p, err := st.LoadPattern(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, p)
}
