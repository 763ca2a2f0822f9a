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
	"encoding/json"
	"sort"
	"strings"

	"cxgparse/ud"
)

const (
	NodeStart NodeType = iota
	NodeEnd
	NodeLiteral
	NodeSlot
	NodeWildcard
	NodeRepCheck
)

const (
	// AnyPOS is a slot POS accepting all tags
	AnyPOS = "ANY"
)

type NodeType int

func (nt NodeType) String() string {
	switch nt {
	case NodeStart:
		return "START"
	case NodeEnd:
		return "END"
	case NodeLiteral:
		return "LITERAL"
	case NodeSlot:
		return "SLOT"
	case NodeWildcard:
		return "WILDCARD"
	case NodeRepCheck:
		return "REP-CHECK"
	default:
		return "UNKNOWN"
	}
}

func (nt NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(nt.String())
}

// Consumes tells whether entering a node of the type
// consumes exactly one token.
func (nt NodeType) Consumes() bool {
	return nt == NodeLiteral || nt == NodeSlot
}

// ---------------------

// Slot describes a positional constraint with a variable
// the matched surface form is bound to.
type Slot struct {
	POS      string            `json:"pos"`
	Var      string            `json:"var"`
	Lemma    string            `json:"lemma,omitempty"`
	Word     string            `json:"word,omitempty"`
	Deprel   string            `json:"deprel,omitempty"`
	Features map[string]string `json:"features,omitempty"`
}

func (s *Slot) Matches(tok ud.Token) bool {
	if s.POS != AnyPOS && !strings.EqualFold(s.POS, tok.POS) {
		return false
	}
	if s.Lemma != "" && !strings.EqualFold(s.Lemma, tok.Lemma) {
		return false
	}
	if s.Word != "" && !strings.EqualFold(s.Word, tok.Word) {
		return false
	}
	if s.Deprel != "" && !strings.EqualFold(s.Deprel, tok.Deprel) && s.Deprel != tok.BaseRel() {
		return false
	}
	for k, v := range s.Features {
		if tok.Morph.Get(k) != v {
			return false
		}
	}
	return true
}

// ---------------------

// Node is a variant type - only the fields relevant
// for the Type are set: LITERAL carries Literal, SLOT carries Slot.
type Node struct {
	ID      int      `json:"id"`
	Type    NodeType `json:"type"`
	Literal string   `json:"literal,omitempty"`
	Slot    *Slot    `json:"slot,omitempty"`
}

func (n Node) matchesLiteral(tok ud.Token) bool {
	return strings.EqualFold(n.Literal, tok.Word) || strings.EqualFold(n.Literal, tok.Lemma)
}

// Edge connects two nodes. Bypass edges skip an optional
// part of a pattern, Loop edges return from a REP-CHECK node
// to the beginning of a repeatable part.
type Edge struct {
	From   int  `json:"from"`
	To     int  `json:"to"`
	Bypass bool `json:"bypass,omitempty"`
	Loop   bool `json:"loop,omitempty"`
}

func (e Edge) priority() int {
	if e.Loop {
		return 0
	}
	if e.Bypass {
		return 2
	}
	return 1
}

// ---------------------

// Pattern is a compiled construction pattern. The first node
// is always START, the last one is always END.
// Once created, a pattern is never modified.
type Pattern struct {
	Source string `json:"source"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`

	// out contains edge indices per node in the order
	// the matching engine tries them
	out [][]int

	notes []string
}

// NewPattern creates a pattern from already prepared nodes and edges.
func NewPattern(source string, nodes []Node, edges []Edge) *Pattern {
	ans := &Pattern{
		Source: source,
		Nodes:  nodes,
		Edges:  edges,
		out:    make([][]int, len(nodes)),
	}
	for i, e := range edges {
		ans.out[e.From] = append(ans.out[e.From], i)
	}
	for _, idxs := range ans.out {
		sort.SliceStable(idxs, func(i, j int) bool {
			return edges[idxs[i]].priority() < edges[idxs[j]].priority()
		})
	}
	return ans
}

func (p *Pattern) Start() int {
	return 0
}

func (p *Pattern) End() int {
	return len(p.Nodes) - 1
}

func (p *Pattern) NumNodes() int {
	return len(p.Nodes)
}

func (p *Pattern) NumEdges() int {
	return len(p.Edges)
}

// Outgoing returns edges leaving a node in the order
// they are tried by the matching engine (loop edges first,
// bypass edges last).
func (p *Pattern) Outgoing(node int) []Edge {
	ans := make([]Edge, len(p.out[node]))
	for i, idx := range p.out[node] {
		ans[i] = p.Edges[idx]
	}
	return ans
}

// TraversalOrder returns node ids in breadth-first order
// starting from START.
func (p *Pattern) TraversalOrder() []int {
	if len(p.Nodes) == 0 {
		return []int{}
	}
	visited := make([]bool, len(p.Nodes))
	queue := []int{p.Start()}
	visited[p.Start()] = true
	ans := make([]int, 0, len(p.Nodes))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		ans = append(ans, curr)
		for _, idx := range p.out[curr] {
			nxt := p.Edges[idx].To
			if !visited[nxt] {
				visited[nxt] = true
				queue = append(queue, nxt)
			}
		}
	}
	return ans
}

// TypeSequence returns node types in traversal order.
func (p *Pattern) TypeSequence() []NodeType {
	order := p.TraversalOrder()
	ans := make([]NodeType, len(order))
	for i, v := range order {
		ans[i] = p.Nodes[v].Type
	}
	return ans
}

// Variables lists all the slot variables in node order.
func (p *Pattern) Variables() []string {
	ans := make([]string, 0, 4)
	seen := make(map[string]bool)
	for _, n := range p.Nodes {
		if n.Type == NodeSlot && !seen[n.Slot.Var] {
			seen[n.Slot.Var] = true
			ans = append(ans, n.Slot.Var)
		}
	}
	return ans
}
