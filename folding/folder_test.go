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

package folding

import (
	"testing"

	"cxgparse/ce"
	"cxgparse/translation"
	"cxgparse/ud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pnode(idx int, word, pos string, kind ce.PhrasalKind, head int, deprel string, feats ud.Features) ce.PhrasalNode {
	return ce.PhrasalNode{
		Kind: kind, Word: word, Lemma: word, POS: pos, Features: feats,
		Index: idx, Components: []int{idx}, Activation: 1, Threshold: 1,
		Head: head, Deprel: deprel,
	}
}

var fin = ud.Features{"VerbForm": "Fin"}

func fold(t *testing.T, nodes []ce.PhrasalNode) *ce.ParseGraph {
	arena, err := translation.Translate(nodes)
	require.NoError(t, err)
	g, err := Fold(arena)
	require.NoError(t, err)
	return g
}

func TestFoldSimpleClause(t *testing.T) {
	g := fold(t, []ce.PhrasalNode{
		pnode(1, "the", "DET", ce.PhrasalIndex, 2, "det", nil),
		pnode(2, "cat", "NOUN", ce.PhrasalHead, 3, "nsubj", nil),
		pnode(3, "sat", "VERB", ce.PhrasalHead, 0, "root", fin),
		pnode(4, "on", "ADP", ce.PhrasalAdposition, 6, "case", nil),
		pnode(5, "the", "DET", ce.PhrasalIndex, 6, "det", nil),
		pnode(6, "mat", "NOUN", ce.PhrasalHead, 3, "obl", nil),
	})
	require.Len(t, g.Sentential(), 1)
	assert.Equal(t, ce.SententialMain, g.Sentential()[0].Kind)
	assert.True(t, g.Sentential()[0].IsMain)
	assert.Equal(t, 2, g.Root())
	assert.Len(t, g.NonProjective(), 0)
	assert.True(t, g.IsFullyConnected())
	for _, n := range g.Nodes() {
		assert.Equal(t, ce.StateClassified, n.State())
	}
}

func TestFoldRelativeClause(t *testing.T) {
	// the cat that I saw sat
	g := fold(t, []ce.PhrasalNode{
		pnode(1, "the", "DET", ce.PhrasalIndex, 2, "det", nil),
		pnode(2, "cat", "NOUN", ce.PhrasalHead, 6, "nsubj", nil),
		pnode(3, "that", "PRON", ce.PhrasalLinker, 5, "obj", ud.Features{"PronType": "Rel"}),
		pnode(4, "I", "PRON", ce.PhrasalHead, 5, "nsubj", nil),
		pnode(5, "saw", "VERB", ce.PhrasalHead, 2, "acl:relcl", fin),
		pnode(6, "sat", "VERB", ce.PhrasalHead, 0, "root", fin),
	})
	sent := g.Sentential()
	require.Len(t, sent, 2)
	assert.Equal(t, ce.SententialRelative, sent[0].Kind)
	assert.Equal(t, []int{2, 3, 4}, sent[0].Members)
	assert.Equal(t, ce.SententialMain, sent[1].Kind)
	assert.Equal(t, 5, g.Root())

	var relcl []ce.Dependency
	for _, e := range g.Edges() {
		if e.LongDistance {
			relcl = append(relcl, e)
		}
	}
	require.Len(t, relcl, 1)
	assert.Equal(t, RelRelativeClause, relcl[0].Relation)
	assert.Equal(t, 5, relcl[0].Governor)
	assert.Equal(t, 4, relcl[0].Dependent)
	assert.True(t, relcl[0].NonProjective)
	assert.Equal(t, 1, g.Stats().NonProjectiveCount)
	assert.True(t, g.IsFullyConnected())
}

func TestFoldComplementWithMarker(t *testing.T) {
	// I think that he left
	g := fold(t, []ce.PhrasalNode{
		pnode(1, "I", "PRON", ce.PhrasalHead, 2, "nsubj", nil),
		pnode(2, "think", "VERB", ce.PhrasalHead, 0, "root", fin),
		pnode(3, "that", "SCONJ", ce.PhrasalLinker, 5, "mark", nil),
		pnode(4, "he", "PRON", ce.PhrasalHead, 5, "nsubj", nil),
		pnode(5, "left", "VERB", ce.PhrasalHead, 2, "ccomp", fin),
	})
	sent := g.Sentential()
	require.Len(t, sent, 2)
	assert.Equal(t, ce.SententialMain, sent[0].Kind)
	assert.Equal(t, ce.SententialComplement, sent[1].Kind)
	assert.Equal(t, "that", sent[1].Marker)
	var found bool
	for _, e := range g.Edges() {
		if e.Relation == RelComplementClause {
			found = true
			assert.False(t, e.NonProjective)
			assert.True(t, e.LongDistance)
		}
	}
	assert.True(t, found)
	assert.True(t, g.IsFullyConnected())
}

func TestFoldAdverbialAndCoordinate(t *testing.T) {
	// he left because she came and cried
	g := fold(t, []ce.PhrasalNode{
		pnode(1, "he", "PRON", ce.PhrasalHead, 2, "nsubj", nil),
		pnode(2, "left", "VERB", ce.PhrasalHead, 0, "root", fin),
		pnode(3, "because", "SCONJ", ce.PhrasalLinker, 5, "mark", nil),
		pnode(4, "she", "PRON", ce.PhrasalHead, 5, "nsubj", nil),
		pnode(5, "came", "VERB", ce.PhrasalHead, 2, "advcl", fin),
		pnode(6, "and", "CCONJ", ce.PhrasalConjunction, 7, "cc", nil),
		pnode(7, "cried", "VERB", ce.PhrasalHead, 5, "conj", fin),
	})
	clauses := g.Sentential()
	require.Len(t, clauses, 3)
	assert.Equal(t, ce.SententialMain, clauses[0].Kind)
	assert.Equal(t, ce.SententialAdverbial, clauses[1].Kind)
	assert.Equal(t, "because", clauses[1].Marker)
	assert.Equal(t, ce.SententialCoordinate, clauses[2].Kind)
	assert.True(t, g.IsFullyConnected())
}

func TestGroupClausesCoordinator(t *testing.T) {
	arena, err := translation.Translate([]ce.PhrasalNode{
		pnode(1, "came", "VERB", ce.PhrasalHead, 0, "root", fin),
		pnode(2, "and", "CCONJ", ce.PhrasalConjunction, 3, "cc", nil),
		pnode(3, "went", "VERB", ce.PhrasalHead, 1, "conj", fin),
	})
	require.NoError(t, err)
	clauses, err := GroupClauses(arena)
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	assert.True(t, clauses[0].IsRoot)
	assert.Equal(t, "and", clauses[1].Coordinator)
	assert.Equal(t, ce.SententialCoordinate, Classify(arena, clauses[1]))

	_, err = GroupClauses(arena)
	assert.Error(t, err, "nodes cannot be assigned twice")
}

func TestFoldCrossingLocalEdge(t *testing.T) {
	// artificial tree: 1 <- 3 (root), 3 -> 5, 1 -> 4 crossing 3 -> 5 is fine,
	// while node 2 hangs on 5 and sits between 1 and 4
	g := fold(t, []ce.PhrasalNode{
		pnode(1, "a", "NOUN", ce.PhrasalHead, 3, "obl", nil),
		pnode(2, "b", "ADV", ce.PhrasalAdjunct, 5, "advmod", nil),
		pnode(3, "c", "VERB", ce.PhrasalHead, 0, "root", fin),
		pnode(4, "d", "ADJ", ce.PhrasalModifier, 1, "amod", nil),
		pnode(5, "e", "NOUN", ce.PhrasalHead, 3, "obj", nil),
	})
	assert.NotEmpty(t, g.NonProjective())
	var crossing bool
	for _, idx := range g.NonProjective() {
		e := g.Edges()[idx]
		if e.Governor == 0 && e.Dependent == 3 {
			crossing = true
		}
	}
	assert.True(t, crossing)
}

func TestFoldEmpty(t *testing.T) {
	g, err := Fold(ce.NewArena(0))
	require.NoError(t, err)
	assert.Equal(t, -1, g.Root())
	assert.Len(t, g.Sentential(), 0)
}

func TestIsClausalRelation(t *testing.T) {
	assert.True(t, IsClausalRelation("acl:relcl"))
	assert.False(t, IsClausalRelation("nsubj"))
}
