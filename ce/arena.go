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
)

// Arena owns clausal nodes and dependencies of one sentence.
// Nodes are referenced by their index, never by pointer identity.
type Arena struct {
	Nodes []*ClausalNode
	Edges []Dependency
}

func (a *Arena) AddNode(n *ClausalNode) int {
	a.Nodes = append(a.Nodes, n)
	return len(a.Nodes) - 1
}

func (a *Arena) hasNode(idx int) bool {
	return idx >= 0 && idx < len(a.Nodes)
}

// AddEdge stores a dependency and registers it with both endpoints.
func (a *Arena) AddEdge(d Dependency) (int, error) {
	if !a.hasNode(d.Governor) || !a.hasNode(d.Dependent) {
		return -1, fmt.Errorf(
			"dependency %d -> %d refers to a node outside of the graph", d.Governor, d.Dependent)
	}
	if d.Governor == d.Dependent {
		return -1, fmt.Errorf("dependency of node %d on itself", d.Governor)
	}
	a.Edges = append(a.Edges, d)
	idx := len(a.Edges) - 1
	a.Nodes[d.Governor].Edges = append(a.Nodes[d.Governor].Edges, idx)
	a.Nodes[d.Dependent].Edges = append(a.Nodes[d.Dependent].Edges, idx)
	return idx, nil
}

// NodeByToken finds the node containing the token id.
func (a *Arena) NodeByToken(tokenID int) (int, bool) {
	for i, n := range a.Nodes {
		if n.Phrasal.Contains(tokenID) {
			return i, true
		}
	}
	return -1, false
}

// Dependents returns indices of nodes governed by the node.
func (a *Arena) Dependents(idx int) []int {
	ans := make([]int, 0, 3)
	for _, e := range a.Nodes[idx].Edges {
		if a.Edges[e].Governor == idx {
			ans = append(ans, a.Edges[e].Dependent)
		}
	}
	return ans
}

// Dominates tells whether desc is reachable from anc
// over governor -> dependent edges. A node dominates itself.
func (a *Arena) Dominates(anc, desc int) bool {
	if anc == desc {
		return true
	}
	visited := make(map[int]bool)
	stack := []int{anc}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[curr] {
			continue
		}
		visited[curr] = true
		for _, d := range a.Dependents(curr) {
			if d == desc {
				return true
			}
			stack = append(stack, d)
		}
	}
	return false
}

// IsNonProjective tells whether some node with a token index strictly
// between the edge's endpoints is dominated by neither endpoint.
func (a *Arena) IsNonProjective(d Dependency) bool {
	lo := a.Nodes[d.Governor].Phrasal.Index
	hi := a.Nodes[d.Dependent].Phrasal.Index
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo < 2 {
		return false
	}
	for i, n := range a.Nodes {
		if i == d.Governor || i == d.Dependent {
			continue
		}
		if n.Phrasal.Index <= lo || n.Phrasal.Index >= hi {
			continue
		}
		if !a.Dominates(d.Governor, i) && !a.Dominates(d.Dependent, i) {
			return true
		}
	}
	return false
}

func NewArena(capacity int) *Arena {
	return &Arena{
		Nodes: make([]*ClausalNode, 0, capacity),
		Edges: make([]Dependency, 0, capacity),
	}
}
