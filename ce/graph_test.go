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
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkArena(indices ...int) *Arena {
	a := NewArena(len(indices))
	for _, idx := range indices {
		a.AddNode(&ClausalNode{
			Phrasal: PhrasalNode{Index: idx, Word: "w", Components: []int{idx}},
		})
	}
	return a
}

func TestPhrasalThreshold(t *testing.T) {
	n := PhrasalNode{Activation: 2, Threshold: 2, IsMWE: true}
	assert.True(t, n.HasReachedThreshold())
	n.Threshold = 3
	assert.False(t, n.HasReachedThreshold())
	n.Activation = 4
	assert.True(t, n.HasReachedThreshold())
}

func TestNodeStateTransitions(t *testing.T) {
	n := &ClausalNode{}
	assert.Equal(t, StateUnassigned, n.State())
	assert.Error(t, n.Classify())
	require.NoError(t, n.AssignToClause())
	assert.Equal(t, StateInClause, n.State())
	assert.Error(t, n.AssignToClause())
	require.NoError(t, n.Classify())
	assert.Equal(t, StateClassified, n.State())
	assert.Error(t, n.AssignToClause())
	assert.Error(t, n.Classify())
}

func TestAddEdgeOutsideArena(t *testing.T) {
	a := mkArena(1, 2)
	_, err := a.AddEdge(Dependency{Governor: 0, Dependent: 5})
	assert.Error(t, err)
	_, err = a.AddEdge(Dependency{Governor: 1, Dependent: 1})
	assert.Error(t, err)
	idx, err := a.AddEdge(Dependency{Governor: 0, Dependent: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{idx}, a.Nodes[0].Edges)
	assert.Equal(t, []int{idx}, a.Nodes[1].Edges)
}

func TestNonProjectiveCrossing(t *testing.T) {
	// nodes at token indices 1, 3, 5; node 3 unrelated to 1 and 5
	a := mkArena(1, 3, 5)
	e := Dependency{Governor: 0, Dependent: 2, Relation: "X"}
	_, err := a.AddEdge(e)
	require.NoError(t, err)
	assert.True(t, a.IsNonProjective(e))
}

func TestNonProjectiveDominatedNodeIsFine(t *testing.T) {
	a := mkArena(1, 3, 5)
	e := Dependency{Governor: 0, Dependent: 2}
	_, err := a.AddEdge(e)
	require.NoError(t, err)
	_, err = a.AddEdge(Dependency{Governor: 2, Dependent: 1})
	require.NoError(t, err)
	assert.False(t, a.IsNonProjective(e))
}

func TestNonProjectiveAdjacentNeverFlagged(t *testing.T) {
	a := mkArena(1, 2, 7)
	e := Dependency{Governor: 1, Dependent: 0}
	_, err := a.AddEdge(e)
	require.NoError(t, err)
	assert.False(t, a.IsNonProjective(e))
}

func TestParseGraphConnectivity(t *testing.T) {
	a := mkArena(1, 2, 3)
	_, err := a.AddEdge(Dependency{Governor: 1, Dependent: 0})
	require.NoError(t, err)
	g, err := NewParseGraph(a, nil, 1)
	require.NoError(t, err)
	assert.False(t, g.IsFullyConnected())

	_, err = a.AddEdge(Dependency{Governor: 1, Dependent: 2})
	require.NoError(t, err)
	g, err = NewParseGraph(a, nil, 1)
	require.NoError(t, err)
	assert.True(t, g.IsFullyConnected())
}

func TestParseGraphInvariant(t *testing.T) {
	a := mkArena(1, 2)
	a.Edges = append(a.Edges, Dependency{Governor: 0, Dependent: 9})
	_, err := NewParseGraph(a, nil, 0)
	assert.Error(t, err)

	_, err = NewParseGraph(mkArena(1), []SententialNode{{Members: []int{3}}}, 0)
	assert.Error(t, err)

	_, err = NewParseGraph(mkArena(1), nil, 4)
	assert.Error(t, err)

	g, err := NewParseGraph(NewArena(0), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, g.Root())
	assert.Nil(t, g.RootNode())
	assert.False(t, g.IsFullyConnected())
}

func TestParseGraphStats(t *testing.T) {
	a := mkArena(1, 2, 5)
	_, err := a.AddEdge(Dependency{Governor: 1, Dependent: 0, Strength: 1})
	require.NoError(t, err)
	_, err = a.AddEdge(Dependency{Governor: 1, Dependent: 2, Strength: 1, LongDistance: true, NonProjective: true})
	require.NoError(t, err)
	a.Nodes[2].Phrasal.IsMWE = true
	g, err := NewParseGraph(a, []SententialNode{{Members: []int{0, 1, 2}, IsMain: true}}, 1)
	require.NoError(t, err)
	st := g.Stats()
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 2, st.EdgeCount)
	assert.Equal(t, 1, st.NonProjectiveCount)
	assert.Equal(t, 1, st.LongDistanceCount)
	assert.Equal(t, 1, st.MWECount)
	assert.Equal(t, 3, st.MaxDependencyLength)
	assert.InDelta(t, 2.0, st.AvgDependencyLength, 0.0001)
	assert.True(t, st.FullyConnected)
	assert.Equal(t, []int{1}, g.NonProjective())
}

func TestParseGraphToMap(t *testing.T) {
	a := mkArena(1, 2)
	a.Nodes[0].Phrasal.SetDerived(FeatConstruction, "det-noun")
	a.Nodes[0].Phrasal.SetDerived(FeatSemanticValue, "x")
	a.Nodes[1].Kind = ClausalPredicate
	_, err := a.AddEdge(Dependency{Governor: 1, Dependent: 0, Relation: "SUBJ", Strength: 1})
	require.NoError(t, err)
	g, err := NewParseGraph(a, []SententialNode{{Members: []int{0, 1}, Kind: SententialMain, IsMain: true}}, 1)
	require.NoError(t, err)
	m := g.ToMap()
	nodes := m["nodes"].([]any)
	require.Len(t, nodes, 2)
	first := nodes[0].(map[string]any)
	assert.Equal(t, "det-noun", first["construction"])
	assert.Equal(t, "x", first["semanticValue"])
	assert.Equal(t, "Predicate", nodes[1].(map[string]any)["clausalCE"])
	sent := m["sentential"].([]any)
	assert.Equal(t, "Main", sent[0].(map[string]any)["kind"])

	data, err := sonic.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"relation":"SUBJ"`)
}
