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
	"fmt"
	"sort"
	"strings"

	"cxgparse/ce"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

const (
	RelRelativeClause   = "RELCL"
	RelComplementClause = "CCOMP"
	RelAdverbialClause  = "ADVCL"
)

var longDistanceLabels = map[string]string{
	"acl":   RelRelativeClause,
	"ccomp": RelComplementClause,
	"csubj": RelComplementClause,
	"xcomp": RelComplementClause,
	"advcl": RelAdverbialClause,
}

// parents maps every arena node to the node containing its head
// token (-1 for root nodes).
func parents(arena *ce.Arena) []int {
	ans := make([]int, len(arena.Nodes))
	for i, n := range arena.Nodes {
		ans[i] = -1
		if n.Phrasal.Head == 0 {
			continue
		}
		if p, ok := arena.NodeByToken(n.Phrasal.Head); ok && p != i {
			ans[i] = p
		}
	}
	return ans
}

// nearestPredicate walks up the head chain to the closest predicate
// (the node itself included). It returns -1 if there is none.
func nearestPredicate(arena *ce.Arena, parent []int, idx int) int {
	curr := idx
	for steps := 0; curr >= 0 && steps <= len(arena.Nodes); steps++ {
		if arena.Nodes[curr].IsPredicate() {
			return curr
		}
		curr = parent[curr]
	}
	return -1
}

func rootNode(arena *ce.Arena) int {
	for i, n := range arena.Nodes {
		if n.Phrasal.Head == 0 {
			return i
		}
	}
	return -1
}

// GroupClauses splits nodes into clauses by their nearest predicate
// ancestor. Nodes without such an ancestor join the matrix clause.
// Clauses are ordered by the position of their predicate, each node
// becomes a member of exactly one clause.
func GroupClauses(arena *ce.Arena) ([]ce.Clause, error) {
	if len(arena.Nodes) == 0 {
		return []ce.Clause{}, nil
	}
	parent := parents(arena)
	root := rootNode(arena)
	matrixPred := -1
	if root >= 0 {
		matrixPred = nearestPredicate(arena, parent, root)
	}
	byPred := make(map[int]*ce.Clause)
	order := make([]int, 0, 4)
	getClause := func(pred int) *ce.Clause {
		cl, ok := byPred[pred]
		if !ok {
			cl = &ce.Clause{Predicate: pred, Members: make([]int, 0, 8), IsRoot: pred == matrixPred}
			byPred[pred] = cl
			order = append(order, pred)
		}
		return cl
	}
	for i := range arena.Nodes {
		pred := nearestPredicate(arena, parent, i)
		if pred < 0 {
			pred = matrixPred
		}
		cl := getClause(pred)
		cl.Members = append(cl.Members, i)
		if err := arena.Nodes[i].AssignToClause(); err != nil {
			return nil, err
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i] < 0 || order[j] < 0 {
			return order[i] < order[j]
		}
		return arena.Nodes[order[i]].Phrasal.Index < arena.Nodes[order[j]].Phrasal.Index
	})
	ans := make([]ce.Clause, 0, len(order))
	for _, pred := range order {
		cl := byPred[pred]
		if pred >= 0 {
			for _, m := range cl.Members {
				if parent[m] != pred {
					continue
				}
				n := arena.Nodes[m]
				switch n.Phrasal.BaseRel() {
				case "mark":
					if cl.Marker == "" {
						cl.Marker = strings.ToLower(n.Phrasal.Word)
					}
				case "cc":
					if cl.Coordinator == "" {
						cl.Coordinator = strings.ToLower(n.Phrasal.Word)
					}
				}
			}
		}
		ans = append(ans, *cl)
	}
	return ans, nil
}

// Classify determines the sentential kind of a clause.
func Classify(arena *ce.Arena, cl ce.Clause) ce.SententialKind {
	if cl.IsRoot || cl.Predicate < 0 {
		return ce.SententialMain
	}
	switch arena.Nodes[cl.Predicate].Phrasal.BaseRel() {
	case "conj", "parataxis":
		return ce.SententialCoordinate
	case "acl":
		return ce.SententialRelative
	case "ccomp", "csubj", "xcomp":
		return ce.SententialComplement
	case "advcl":
		return ce.SententialAdverbial
	}
	if cl.Marker != "" {
		return ce.SententialAdverbial
	}
	return ce.SententialCoordinate
}

func clauseOf(clauses []ce.Clause, node int) int {
	for i, cl := range clauses {
		for _, m := range cl.Members {
			if m == node {
				return i
			}
		}
	}
	return -1
}

// addLongDistanceEdges connects predicates of subordinate clauses
// to the predicate of the clause they are attached to.
func addLongDistanceEdges(arena *ce.Arena, clauses []ce.Clause) error {
	for _, cl := range clauses {
		if cl.IsRoot || cl.Predicate < 0 {
			continue
		}
		pred := arena.Nodes[cl.Predicate]
		label, ok := longDistanceLabels[pred.Phrasal.BaseRel()]
		if !ok || pred.Phrasal.Head == 0 {
			continue
		}
		attach, ok := arena.NodeByToken(pred.Phrasal.Head)
		if !ok {
			return fmt.Errorf("predicate %d attached to a missing token %d", pred.Phrasal.Index, pred.Phrasal.Head)
		}
		gov := attach
		if ci := clauseOf(clauses, attach); ci >= 0 && clauses[ci].Predicate >= 0 {
			gov = clauses[ci].Predicate
		}
		if gov == cl.Predicate {
			continue
		}
		if _, err := arena.AddEdge(ce.Dependency{
			Governor:      gov,
			Dependent:     cl.Predicate,
			Relation:      label,
			Strength:      1.0,
			LongDistance:  true,
			NonProjective: label == RelRelativeClause,
		}); err != nil {
			return fmt.Errorf("failed to add long-distance edge: %w", err)
		}
	}
	return nil
}

func markNonProjective(arena *ce.Arena) {
	for i, e := range arena.Edges {
		if e.Relation == RelRelativeClause && e.LongDistance {
			continue
		}
		if arena.IsNonProjective(e) {
			arena.Edges[i].NonProjective = true
			log.Debug().
				Int("governor", arena.Nodes[e.Governor].Phrasal.Index).
				Int("dependent", arena.Nodes[e.Dependent].Phrasal.Index).
				Str("relation", e.Relation).
				Msg("non-projective dependency")
		}
	}
}

// Fold groups clausal nodes into clauses, classifies them, adds
// long-distance dependencies and assembles the final parse graph.
func Fold(arena *ce.Arena) (*ce.ParseGraph, error) {
	clauses, err := GroupClauses(arena)
	if err != nil {
		return nil, err
	}
	if err := addLongDistanceEdges(arena, clauses); err != nil {
		return nil, err
	}
	markNonProjective(arena)
	sentential := make([]ce.SententialNode, 0, len(clauses))
	root := -1
	for i, cl := range clauses {
		kind := Classify(arena, cl)
		for _, m := range cl.Members {
			if err := arena.Nodes[m].Classify(); err != nil {
				return nil, err
			}
		}
		sentential = append(sentential, ce.SententialNode{
			Members:     cl.Members,
			Kind:        kind,
			IsMain:      cl.IsRoot,
			Marker:      cl.Marker,
			ClauseIndex: i,
			Predicate:   cl.Predicate,
		})
		if cl.IsRoot && cl.Predicate >= 0 {
			root = cl.Predicate
		}
	}
	if root < 0 {
		root = rootNode(arena)
	}
	if root < 0 && len(arena.Nodes) > 0 {
		root = 0
	}
	return ce.NewParseGraph(arena, sentential, root)
}

// IsClausalRelation tells whether the relation introduces
// a long-distance clause attachment.
func IsClausalRelation(rel string) bool {
	_, ok := longDistanceLabels[ud.BaseRelation(rel)]
	return ok
}
