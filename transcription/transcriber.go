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

package transcription

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cxgparse/ce"
	"cxgparse/construction"
	"cxgparse/lexicon"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

// LexiconMatcher finds stored lexicon patterns in a sentence.
type LexiconMatcher interface {
	MatchSentence(ctx context.Context, sent ud.Sentence) ([]lexicon.Match, error)
}

// Transcriber turns sentence tokens into phrasal nodes. Both
// the construction inventory and the lexicon matcher are optional.
type Transcriber struct {
	inventory *construction.Inventory
	lexicon   LexiconMatcher
}

type mweGroup struct {
	match lexicon.Match
	// tokens in sentence order
	tokens []int
}

// sortMatches orders candidates for merging: larger matches first,
// then more confident ones, then the leftmost ones.
func sortMatches(matches []lexicon.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		li, lj := len(matches[i].TokenIndices), len(matches[j].TokenIndices)
		if li != lj {
			return li > lj
		}
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].TokenIndices[0] < matches[j].TokenIndices[0]
	})
}

// isStrictlyOrdered tells whether the matched tokens are contiguous
// and follow the order of pattern positions.
func isStrictlyOrdered(m lexicon.Match) bool {
	positions := make([]int, 0, len(m.Mapping))
	for p := range m.Mapping {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	for i := 1; i < len(positions); i++ {
		if m.Mapping[positions[i]] != m.Mapping[positions[i-1]]+1 {
			return false
		}
	}
	return true
}

func (t *Transcriber) selectGroups(matches []lexicon.Match) ([]mweGroup, map[int]int64) {
	sortMatches(matches)
	claimed := make(map[int]bool)
	groups := make([]mweGroup, 0, len(matches))
	singles := make(map[int]int64)
	for _, m := range matches {
		if len(m.TokenIndices) == 0 {
			continue
		}
		if len(m.TokenIndices) == 1 {
			if _, ok := singles[m.TokenIndices[0]]; !ok {
				singles[m.TokenIndices[0]] = m.LemmaID
			}
			continue
		}
		var conflict bool
		for _, tk := range m.TokenIndices {
			if claimed[tk] {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		if m.Pattern != nil && m.Pattern.IsStrictOrder() && !isStrictlyOrdered(m) {
			log.Debug().
				Str("lemma", m.Lemma).
				Ints("tokens", m.TokenIndices).
				Msg("strict word order not satisfied, not merging")
			continue
		}
		for _, tk := range m.TokenIndices {
			claimed[tk] = true
		}
		groups = append(groups, mweGroup{match: m, tokens: m.TokenIndices})
	}
	return groups, singles
}

func mergeGroup(sent ud.Sentence, g mweGroup) ce.PhrasalNode {
	words := make([]string, len(g.tokens))
	lemmas := make([]string, len(g.tokens))
	for i, tk := range g.tokens {
		tok, _ := sent.ByID(tk)
		words[i] = tok.Word
		lemmas[i] = tok.Lemma
	}
	first, _ := sent.ByID(g.tokens[0])
	root := first
	if g.match.Pattern != nil {
		if pr, ok := g.match.Pattern.Root(); ok {
			if tk, ok := g.match.Mapping[pr.Position]; ok {
				root, _ = sent.ByID(tk)
			}
		}
	}
	pos := first.POS
	threshold := len(g.tokens)
	if g.match.Pattern != nil {
		if g.match.Pattern.POSOverride != "" {
			pos = g.match.Pattern.POSOverride
		}
		threshold = g.match.Pattern.RequiredCount()
	}
	return ce.PhrasalNode{
		Kind:       PhrasalKindOf(pos, root.Morph, root.Deprel),
		Word:       strings.Join(words, ce.MWESeparator),
		Lemma:      strings.Join(lemmas, ce.MWESeparator),
		POS:        pos,
		Features:   LexicalBundle(root.Morph),
		Derived:    make(map[string]string),
		Index:      g.tokens[0],
		Components: append([]int{}, g.tokens...),
		Activation: len(g.tokens),
		Threshold:  threshold,
		IsMWE:      true,
		LemmaID:    g.match.LemmaID,
		Head:       root.Head,
		Deprel:     root.Deprel,
	}
}

// spanHead finds the node of the span [start, end) (token ids)
// whose head lies outside of the span.
func spanHead(nodes []ce.PhrasalNode, start, end int) int {
	firstInSpan := -1
	for i, n := range nodes {
		var inSpan bool
		for _, c := range n.Components {
			if c >= start && c < end {
				inSpan = true
				break
			}
		}
		if !inSpan {
			continue
		}
		if firstInSpan < 0 {
			firstInSpan = i
		}
		if n.Head < start || n.Head >= end {
			return i
		}
	}
	return firstInSpan
}

func (t *Transcriber) annotateConstructions(sent ud.Sentence, nodes []ce.PhrasalNode) {
	if t.inventory == nil {
		return
	}
	for _, det := range t.inventory.Detect(sent) {
		idx := spanHead(nodes, det.Start+1, det.End+1)
		if idx < 0 || nodes[idx].Construction() != "" {
			continue
		}
		nodes[idx].SetDerived(ce.FeatConstruction, det.Name)
		if det.SemanticValue != "" {
			nodes[idx].SetDerived(ce.FeatSemanticValue, det.SemanticValue)
		}
	}
}

// Transcribe creates phrasal nodes in sentence order. Tokens of
// accepted multi-word lexicon matches are merged into single nodes.
func (t *Transcriber) Transcribe(ctx context.Context, sent ud.Sentence) ([]ce.PhrasalNode, error) {
	var matches []lexicon.Match
	if t.lexicon != nil {
		var err error
		matches, err = t.lexicon.MatchSentence(ctx, sent)
		if err != nil {
			return nil, fmt.Errorf("failed to match lexicon patterns: %w", err)
		}
	}
	groups, singles := t.selectGroups(matches)
	groupOf := make(map[int]int)
	for i, g := range groups {
		for _, tk := range g.tokens {
			groupOf[tk] = i
		}
	}
	ans := make([]ce.PhrasalNode, 0, len(sent))
	for _, tok := range sent {
		if gi, ok := groupOf[tok.ID]; ok {
			if groups[gi].tokens[0] == tok.ID {
				ans = append(ans, mergeGroup(sent, groups[gi]))
			}
			continue
		}
		node := singleNode(tok)
		node.LemmaID = singles[tok.ID]
		ans = append(ans, node)
	}
	t.annotateConstructions(sent, ans)
	return ans, nil
}

func NewTranscriber(inventory *construction.Inventory, lex LexiconMatcher) *Transcriber {
	return &Transcriber{inventory: inventory, lexicon: lex}
}
