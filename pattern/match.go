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

package pattern

import (
	"errors"

	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

const (
	DefaultStepBudget = 100000
)

var (
	ErrStepBudgetExceeded = errors.New("pattern matching step budget exceeded")
)

// Match is a single occurrence of a pattern within a token sequence.
// Start and End are 0-based token offsets, End is exclusive.
type Match struct {
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Tokens   []string          `json:"tokens"`
	Bindings map[string]string `json:"bindings"`
}

func (m Match) Len() int {
	return m.End - m.Start
}

type binding struct {
	name  string
	value string
}

// frame is a choice point of the backtracking search.
type frame struct {
	node int

	// pos is a position right after the node consumed its tokens
	pos int

	// next is an index of the next outgoing edge to try
	next int

	// wildFrom is a position where a wildcard started consuming
	wildFrom int

	// bindMark is len(bindings) before the node bound its value
	bindMark int

	noLoop bool
}

func (p *Pattern) repeatedWithoutProgress(stack []frame, node, pos int) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].node == node {
			return stack[i].pos == pos
		}
	}
	return false
}

func (p *Pattern) mkMatch(tokens []ud.Token, start, end int, bindings []binding) Match {
	ans := Match{
		Start:    start,
		End:      end,
		Tokens:   make([]string, 0, end-start),
		Bindings: make(map[string]string),
	}
	for _, t := range tokens[start:end] {
		ans.Tokens = append(ans.Tokens, t.Word)
	}
	for _, b := range bindings {
		ans.Bindings[b.name] = b.value
	}
	return ans
}

// MatchAt tries to match the pattern starting exactly at the `start`
// offset. The search walks the graph depth-first using an explicit stack
// of choice points. The first path reaching END wins. Wildcards are
// greedy and give back tokens one by one on failure, REP-CHECK nodes
// prefer another iteration of their repeatable part.
func (p *Pattern) MatchAt(tokens []ud.Token, start int, budget int) (Match, bool, error) {
	if len(p.Nodes) < 2 || start < 0 || start > len(tokens) {
		return Match{}, false, nil
	}
	stack := make([]frame, 1, 16)
	stack[0] = frame{node: p.Start(), pos: start}
	bindings := make([]binding, 0, 8)
	var steps int
	for len(stack) > 0 {
		steps++
		if budget > 0 && steps > budget {
			return Match{}, false, ErrStepBudgetExceeded
		}
		top := &stack[len(stack)-1]
		out := p.out[top.node]
		if top.next < len(out) {
			edge := p.Edges[out[top.next]]
			top.next++
			if edge.Loop && top.noLoop {
				continue
			}
			pos := top.pos
			target := p.Nodes[edge.To]
			switch target.Type {
			case NodeEnd:
				if pos > start {
					return p.mkMatch(tokens, start, pos, bindings), true, nil
				}
			case NodeLiteral:
				if pos < len(tokens) && target.matchesLiteral(tokens[pos]) {
					stack = append(stack, frame{node: edge.To, pos: pos + 1, bindMark: len(bindings)})
				}
			case NodeSlot:
				if pos < len(tokens) && target.Slot.Matches(tokens[pos]) {
					mark := len(bindings)
					bindings = append(bindings, binding{name: target.Slot.Var, value: tokens[pos].Word})
					stack = append(stack, frame{node: edge.To, pos: pos + 1, bindMark: mark})
				}
			case NodeWildcard:
				stack = append(
					stack,
					frame{node: edge.To, pos: len(tokens), wildFrom: pos, bindMark: len(bindings)},
				)
			case NodeRepCheck:
				noLoop := p.repeatedWithoutProgress(stack, edge.To, pos)
				stack = append(
					stack,
					frame{node: edge.To, pos: pos, bindMark: len(bindings), noLoop: noLoop},
				)
			}
			continue
		}
		bindings = bindings[:top.bindMark]
		if p.Nodes[top.node].Type == NodeWildcard && top.pos > top.wildFrom {
			top.pos--
			top.next = 0
			continue
		}
		stack = stack[:len(stack)-1]
	}
	return Match{}, false, nil
}

// FindAll returns all non-overlapping matches scanning the tokens
// from left to right. No match produces an empty list.
func (p *Pattern) FindAll(tokens []ud.Token) []Match {
	return p.FindAllWithBudget(tokens, DefaultStepBudget)
}

// FindAllWithBudget is like FindAll but with a custom number of
// search steps allowed per start offset. Offsets exceeding the
// budget are logged and skipped.
func (p *Pattern) FindAllWithBudget(tokens []ud.Token, budget int) []Match {
	ans := make([]Match, 0, 2)
	for i := 0; i < len(tokens); {
		m, ok, err := p.MatchAt(tokens, i, budget)
		if err != nil {
			log.Warn().
				Err(err).
				Str("pattern", p.Source).
				Int("offset", i).
				Msg("skipping offset in pattern matching")
			i++
			continue
		}
		if ok {
			ans = append(ans, m)
			i = m.End
			continue
		}
		i++
	}
	return ans
}
