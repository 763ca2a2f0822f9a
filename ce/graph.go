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

package ce

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Stats summarizes a parse graph.
type Stats struct {
	NodeCount           int     `json:"nodeCount"`
	EdgeCount           int     `json:"edgeCount"`
	NonProjectiveCount  int     `json:"nonProjectiveCount"`
	LongDistanceCount   int     `json:"longDistanceCount"`
	MWECount            int     `json:"mweCount"`
	SententialCount     int     `json:"sententialCount"`
	AvgDependencyLength float64 `json:"avgDependencyLength"`
	MaxDependencyLength int     `json:"maxDependencyLength"`
	FullyConnected      bool    `json:"fullyConnected"`
}

// ParseGraph is the final read-only result of parsing a sentence.
type ParseGraph struct {
	arena      *Arena
	sentential []SententialNode
	root       int
}

func (g *ParseGraph) Nodes() []*ClausalNode {
	return g.arena.Nodes
}

func (g *ParseGraph) Edges() []Dependency {
	return g.arena.Edges
}

func (g *ParseGraph) Sentential() []SententialNode {
	return g.sentential
}

// Root returns the index of the root node (-1 for an empty graph).
func (g *ParseGraph) Root() int {
	return g.root
}

func (g *ParseGraph) RootNode() *ClausalNode {
	if g.root < 0 {
		return nil
	}
	return g.arena.Nodes[g.root]
}

// NonProjective returns indices of non-projective edges.
func (g *ParseGraph) NonProjective() []int {
	ans := make([]int, 0, 2)
	for i, e := range g.arena.Edges {
		if e.NonProjective {
			ans = append(ans, i)
		}
	}
	return ans
}

// DependencyLength is the distance between token indices
// of the edge endpoints.
func (g *ParseGraph) DependencyLength(e Dependency) int {
	v := g.arena.Nodes[e.Governor].Phrasal.Index - g.arena.Nodes[e.Dependent].Phrasal.Index
	if v < 0 {
		return -v
	}
	return v
}

// IsFullyConnected tells whether a depth-first walk from the root
// over governor -> dependent edges visits every node.
func (g *ParseGraph) IsFullyConnected() bool {
	if g.root < 0 {
		return false
	}
	visited := make([]bool, len(g.arena.Nodes))
	var numVisited int
	stack := []int{g.root}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[curr] {
			continue
		}
		visited[curr] = true
		numVisited++
		deps := g.arena.Dependents(curr)
		for i := len(deps) - 1; i >= 0; i-- {
			if !visited[deps[i]] {
				stack = append(stack, deps[i])
			}
		}
	}
	return numVisited == len(g.arena.Nodes)
}

func (g *ParseGraph) Stats() Stats {
	ans := Stats{
		NodeCount:       len(g.arena.Nodes),
		EdgeCount:       len(g.arena.Edges),
		SententialCount: len(g.sentential),
		FullyConnected:  g.IsFullyConnected(),
	}
	var total int
	for _, e := range g.arena.Edges {
		if e.NonProjective {
			ans.NonProjectiveCount++
		}
		if e.LongDistance {
			ans.LongDistanceCount++
		}
		dl := g.DependencyLength(e)
		total += dl
		if dl > ans.MaxDependencyLength {
			ans.MaxDependencyLength = dl
		}
	}
	if len(g.arena.Edges) > 0 {
		ans.AvgDependencyLength = float64(total) / float64(len(g.arena.Edges))
	}
	for _, n := range g.arena.Nodes {
		if n.Phrasal.IsMWE {
			ans.MWECount++
		}
	}
	return ans
}

func intsToList(v []int) []any {
	ans := make([]any, len(v))
	for i, x := range v {
		ans[i] = x
	}
	return ans
}

func nodeToMap(n *ClausalNode) map[string]any {
	feats := make(map[string]any, len(n.Phrasal.Features))
	for k, v := range n.Phrasal.Features {
		feats[k] = v
	}
	ans := map[string]any{
		"index":      n.Phrasal.Index,
		"word":       n.Phrasal.Word,
		"lemma":      n.Phrasal.Lemma,
		"pos":        n.Phrasal.POS,
		"phrasalCE":  n.Phrasal.Kind.String(),
		"clausalCE":  n.Kind.String(),
		"deprel":     n.Phrasal.Deprel,
		"head":       n.Phrasal.Head,
		"isMWE":      n.Phrasal.IsMWE,
		"components": intsToList(n.Phrasal.Components),
		"features":   feats,
		"state":      n.State().String(),
	}
	if n.Phrasal.IsMWE {
		ans["activation"] = n.Phrasal.Activation
		ans["threshold"] = n.Phrasal.Threshold
		ans["lemmaId"] = n.Phrasal.LemmaID
	}
	if v := n.Phrasal.Construction(); v != "" {
		ans["construction"] = v
	}
	if v := n.Phrasal.SemanticValue(); v != "" {
		ans["semanticValue"] = v
	}
	return ans
}

// ToMap exports the graph as nested primitive maps and lists.
func (g *ParseGraph) ToMap() map[string]any {
	nodes := make([]any, len(g.arena.Nodes))
	for i, n := range g.arena.Nodes {
		nodes[i] = nodeToMap(n)
	}
	edges := make([]any, len(g.arena.Edges))
	for i, e := range g.arena.Edges {
		edges[i] = map[string]any{
			"governor":      e.Governor,
			"dependent":     e.Dependent,
			"relation":      e.Relation,
			"strength":      e.Strength,
			"nonProjective": e.NonProjective,
			"longDistance":  e.LongDistance,
		}
	}
	sent := make([]any, len(g.sentential))
	for i, s := range g.sentential {
		sent[i] = map[string]any{
			"kind":        s.Kind.String(),
			"isMain":      s.IsMain,
			"marker":      s.Marker,
			"clauseIndex": s.ClauseIndex,
			"predicate":   s.Predicate,
			"members":     intsToList(s.Members),
		}
	}
	st := g.Stats()
	return map[string]any{
		"root":       g.root,
		"nodes":      nodes,
		"edges":      edges,
		"sentential": sent,
		"stats": map[string]any{
			"nodeCount":           st.NodeCount,
			"edgeCount":           st.EdgeCount,
			"nonProjectiveCount":  st.NonProjectiveCount,
			"longDistanceCount":   st.LongDistanceCount,
			"mweCount":            st.MWECount,
			"sententialCount":     st.SententialCount,
			"avgDependencyLength": st.AvgDependencyLength,
			"maxDependencyLength": st.MaxDependencyLength,
			"fullyConnected":      st.FullyConnected,
		},
	}
}

func (g *ParseGraph) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(g.ToMap())
}

// NewParseGraph wraps the arena. It fails if any edge or sentential
// node refers to a node outside of the arena.
func NewParseGraph(arena *Arena, sentential []SententialNode, root int) (*ParseGraph, error) {
	for i, e := range arena.Edges {
		if !arena.hasNode(e.Governor) || !arena.hasNode(e.Dependent) {
			return nil, fmt.Errorf("edge %d refers to a node outside of the graph", i)
		}
	}
	for i, s := range sentential {
		for _, m := range s.Members {
			if !arena.hasNode(m) {
				return nil, fmt.Errorf("sentential node %d refers to a node outside of the graph", i)
			}
		}
	}
	if len(arena.Nodes) > 0 && !arena.hasNode(root) {
		return nil, fmt.Errorf("invalid root node %d", root)
	}
	if len(arena.Nodes) == 0 {
		root = -1
	}
	return &ParseGraph{arena: arena, sentential: sentential, root: root}, nil
}
