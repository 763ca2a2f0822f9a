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

import "fmt"

func (p *Pattern) reachableFromStart() []bool {
	ans := make([]bool, len(p.Nodes))
	for _, v := range p.TraversalOrder() {
		ans[v] = true
	}
	return ans
}

func (p *Pattern) reachingEnd() []bool {
	ans := make([]bool, len(p.Nodes))
	if len(p.Nodes) == 0 {
		return ans
	}
	incoming := make([][]int, len(p.Nodes))
	for _, e := range p.Edges {
		incoming[e.To] = append(incoming[e.To], e.From)
	}
	queue := []int{p.End()}
	ans[p.End()] = true
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, prev := range incoming[curr] {
			if !ans[prev] {
				ans[prev] = true
				queue = append(queue, prev)
			}
		}
	}
	return ans
}

// Validate returns structural warnings. It never fails - a pattern
// with warnings can still be used for matching.
func (p *Pattern) Validate() []string {
	ans := make([]string, 0, len(p.notes))
	ans = append(ans, p.notes...)
	if len(p.Nodes) < 2 {
		return append(ans, "pattern has no START/END pair")
	}
	if p.Nodes[p.Start()].Type != NodeStart {
		ans = append(ans, "first node is not START")
	}
	if p.Nodes[p.End()].Type != NodeEnd {
		ans = append(ans, "last node is not END")
	}
	fromStart := p.reachableFromStart()
	toEnd := p.reachingEnd()
	for i, n := range p.Nodes {
		if !fromStart[i] {
			ans = append(ans, fmt.Sprintf("node %d (%s) is unreachable", i, n.Type))

		} else if !toEnd[i] {
			ans = append(ans, fmt.Sprintf("node %d (%s) cannot reach END", i, n.Type))
		}
	}
	for _, e := range p.Edges {
		if e.From == p.Start() && e.To == p.End() {
			ans = append(ans, "pattern accepts an empty token sequence")
		}
		if p.Nodes[e.From].Type == NodeWildcard && p.Nodes[e.To].Type == NodeWildcard {
			ans = append(ans, fmt.Sprintf("adjacent wildcards %d and %d", e.From, e.To))
		}
		if e.From == p.Start() && p.Nodes[e.To].Type == NodeWildcard {
			ans = append(ans, "pattern starts with a wildcard")
		}
	}
	return ans
}
