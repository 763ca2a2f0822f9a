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
	"sort"

	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMinConfidence = 0.8
)

// ResolvedToken is a sentence token with its lemma, POS and
// relation translated to database ids. Zero id means a lookup miss.
type ResolvedToken struct {
	ID         int
	Word       string
	LexiconID  int64
	POSID      int64
	Head       int
	RelationID int64
}

// ResolvedSentence is a sentence prepared for subgraph matching.
type ResolvedSentence struct {
	Tokens   []ResolvedToken
	children map[int][]int
}

func (rs *ResolvedSentence) token(id int) ResolvedToken {
	return rs.Tokens[id-1]
}

// Resolve translates sentence tokens to lexicon, POS and relation ids.
// Unknown lemmas and relations are logged and left as zero ids.
func Resolve(ctx context.Context, sent ud.Sentence, lookup *Cache) (*ResolvedSentence, error) {
	ans := &ResolvedSentence{
		Tokens:   make([]ResolvedToken, len(sent)),
		children: sent.Children(),
	}
	for i, tok := range sent {
		lexID, found, err := lookup.LemmaID(ctx, tok.Lemma)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sentence: %w", err)
		}
		if !found {
			log.Warn().
				Err(merror.MissingLexiconEntryWarning{Lemma: tok.Lemma, Token: tok.ID}).
				Int("token", tok.ID).
				Msg("token lemma not in lexicon, treated as unconstrained")
		}
		posID, _, err := lookup.POSID(ctx, tok.POS)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sentence: %w", err)
		}
		var relID int64
		if tok.Head > 0 {
			relID, found, err = lookup.RelationID(ctx, tok.BaseRel())
			if err != nil {
				return nil, fmt.Errorf("failed to resolve sentence: %w", err)
			}
			if !found {
				log.Warn().
					Err(merror.UnknownRelationWarning{Relation: tok.Deprel, Token: tok.ID}).
					Int("token", tok.ID).
					Msg("relation treated as unmatched")
			}
		}
		ans.Tokens[i] = ResolvedToken{
			ID:         tok.ID,
			Word:       tok.Word,
			LexiconID:  lexID,
			POSID:      posID,
			Head:       tok.Head,
			RelationID: relID,
		}
	}
	return ans, nil
}

// Match is an accepted occurrence of a lexicon pattern in a sentence.
type Match struct {
	LemmaID int64  `json:"lemmaId"`
	Lemma   string `json:"lemma"`

	// TokenIndices contains sorted 1-based ids of the matched tokens
	TokenIndices []int `json:"tokenIndices"`

	// Mapping maps pattern node positions to token ids
	Mapping    map[int]int `json:"mapping"`
	Confidence float64     `json:"confidence"`
	Pattern    *Pattern    `json:"-"`
}

// Matcher finds lexicon patterns in sentence dependency graphs.
type Matcher struct {
	MinConfidence float64
}

// satisfies tests node constraints. A sentence token with an unknown
// lemma (zero LexiconID) matches any lexical constraint, POS must still fit.
func satisfies(node Node, tok ResolvedToken) bool {
	if node.LexiconID != 0 && tok.LexiconID != 0 && tok.LexiconID != node.LexiconID {
		return false
	}
	if node.POSID != 0 && tok.POSID != node.POSID {
		return false
	}
	return true
}

// maxSearchSteps bounds the backtracking search of a single root candidate
const maxSearchSteps = 10000

// skipNode is a choice of leaving an optional node unmapped
const skipNode = 0

type matchStep struct {
	edge Edge
	node Node
}

// matchPlan orders non-root pattern nodes breadth-first from the root
// so each node is assigned only after its head.
func matchPlan(p *Pattern, root Node) ([]matchStep, bool) {
	visited := map[int]bool{root.Position: true}
	queue := []int{root.Position}
	steps := make([]matchStep, 0, len(p.Edges))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, edge := range p.Outgoing(curr) {
			if visited[edge.Dependent] {
				continue
			}
			node, ok := p.NodeAt(edge.Dependent)
			if !ok {
				return nil, false
			}
			visited[edge.Dependent] = true
			steps = append(steps, matchStep{edge: edge, node: node})
			queue = append(queue, edge.Dependent)
		}
	}
	return steps, true
}

// candidateTokens lists unused children of the mapped head token which
// fit the step. Optional nodes get skipNode as the last choice.
func candidateTokens(sent *ResolvedSentence, step matchStep, mapping map[int]int, used map[int]bool) []int {
	ans := make([]int, 0, 2)
	if headTok, ok := mapping[step.edge.Head]; ok {
		for _, child := range sent.children[headTok] {
			if used[child] {
				continue
			}
			ctok := sent.token(child)
			if ctok.RelationID != 0 && ctok.RelationID == step.edge.RelationID && satisfies(step.node, ctok) {
				ans = append(ans, child)
			}
		}
	}
	if !step.node.IsRequired {
		ans = append(ans, skipNode)
	}
	return ans
}

// matchFrom tries to map the pattern onto the sentence with the
// pattern root placed at the token rootTok. Node assignments are
// searched with an explicit choice stack, so a node taking a token
// its sibling needs is undone and the next candidate is tried.
func (m *Matcher) matchFrom(sent *ResolvedSentence, p *Pattern, root Node, rootTok int) (map[int]int, bool) {
	steps, ok := matchPlan(p, root)
	if !ok {
		return nil, false
	}
	mapping := map[int]int{root.Position: rootTok}
	used := map[int]bool{rootTok: true}
	choices := make([][]int, len(steps))
	chosen := make([]int, len(steps))
	if len(steps) > 0 {
		choices[0] = candidateTokens(sent, steps[0], mapping, used)
		chosen[0] = -1
	}
	depth := 0
	for budget := maxSearchSteps; budget > 0; budget-- {
		if depth == len(steps) {
			if verifyEdges(sent, p, mapping) {
				return mapping, true
			}
			depth--
			if depth < 0 {
				return nil, false
			}
			continue
		}
		step := steps[depth]
		if c := chosen[depth]; c >= 0 {
			if tok := choices[depth][c]; tok != skipNode {
				delete(mapping, step.node.Position)
				delete(used, tok)
			}
		}
		chosen[depth]++
		if chosen[depth] >= len(choices[depth]) {
			depth--
			if depth < 0 {
				return nil, false
			}
			continue
		}
		if tok := choices[depth][chosen[depth]]; tok != skipNode {
			mapping[step.node.Position] = tok
			used[tok] = true
		}
		depth++
		if depth < len(steps) {
			choices[depth] = candidateTokens(sent, steps[depth], mapping, used)
			chosen[depth] = -1
		}
	}
	log.Warn().
		Int64("lemmaId", p.LemmaID).
		Int("rootToken", rootTok).
		Msg("lexicon pattern search exhausted, candidate rejected")
	return nil, false
}

// verifyEdges checks every pattern edge with both endpoints
// mapped corresponds to a real sentence edge with the same relation.
// Edges touching an unmapped node are acceptable only if
// the node is optional.
func verifyEdges(sent *ResolvedSentence, p *Pattern, mapping map[int]int) bool {
	for _, edge := range p.Edges {
		headTok, hasHead := mapping[edge.Head]
		depTok, hasDep := mapping[edge.Dependent]
		if !hasHead || !hasDep {
			for _, pos := range []int{edge.Head, edge.Dependent} {
				if _, ok := mapping[pos]; ok {
					continue
				}
				if n, ok := p.NodeAt(pos); !ok || n.IsRequired {
					return false
				}
			}
			continue
		}
		tok := sent.token(depTok)
		if tok.Head != headTok || tok.RelationID != edge.RelationID {
			return false
		}
	}
	return true
}

func (m *Matcher) confidence(p *Pattern, mapping map[int]int) float64 {
	var required, matched int
	for _, n := range p.Nodes {
		if !n.IsRequired {
			continue
		}
		required++
		if _, ok := mapping[n.Position]; ok {
			matched++
		}
	}
	if required == 0 {
		return 1
	}
	return float64(matched) / float64(required)
}

// Match searches for the best accepted occurrence of the pattern.
// Candidates are tried in sentence order, the first one with
// the highest confidence wins. A nil pattern never matches.
func (m *Matcher) Match(sent *ResolvedSentence, p *Pattern) (Match, bool) {
	if p == nil {
		return Match{}, false
	}
	root, ok := p.Root()
	if !ok {
		log.Warn().Int64("lemmaId", p.LemmaID).Msg("lexicon pattern without root node")
		return Match{}, false
	}
	var best Match
	var found bool
	for _, tok := range sent.Tokens {
		if !satisfies(root, tok) {
			continue
		}
		mapping, ok := m.matchFrom(sent, p, root, tok.ID)
		if !ok || !verifyEdges(sent, p, mapping) {
			continue
		}
		conf := m.confidence(p, mapping)
		if conf < m.MinConfidence {
			continue
		}
		if !found || conf > best.Confidence {
			indices := make([]int, 0, len(mapping))
			for _, t := range mapping {
				indices = append(indices, t)
			}
			sort.Ints(indices)
			best = Match{
				LemmaID:      p.LemmaID,
				Lemma:        p.Lemma,
				TokenIndices: indices,
				Mapping:      mapping,
				Confidence:   conf,
				Pattern:      p,
			}
			found = true
		}
	}
	return best, found
}

// MatchAll matches all the patterns against the sentence,
// returning accepted matches in the order of patterns.
func (m *Matcher) MatchAll(sent *ResolvedSentence, patterns []*Pattern) []Match {
	ans := make([]Match, 0, 4)
	for _, p := range patterns {
		if match, ok := m.Match(sent, p); ok {
			ans = append(ans, match)
		}
	}
	return ans
}

func NewMatcher() *Matcher {
	return &Matcher{MinConfidence: DefaultMinConfidence}
}
