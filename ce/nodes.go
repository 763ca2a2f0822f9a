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

	"cxgparse/ud"
)

const (
	MWESeparator = "^"

	FeatConstruction  = "construction"
	FeatSemanticValue = "semantic_value"
)

// PhrasalNode is a single word or a merged multi-word expression.
// Index and Components refer to 1-based sentence token ids.
// For an MWE, Head and Deprel are taken from its root token.
type PhrasalNode struct {
	Kind       PhrasalKind
	Word       string
	Lemma      string
	POS        string
	Features   ud.Features
	Derived    map[string]string
	Index      int
	Components []int
	Activation int
	Threshold  int
	IsMWE      bool
	LemmaID    int64
	Head       int
	Deprel     string
}

// HasReachedThreshold tells whether enough MWE components
// have been found.
func (pn *PhrasalNode) HasReachedThreshold() bool {
	return pn.Activation >= pn.Threshold
}

func (pn *PhrasalNode) BaseRel() string {
	return ud.BaseRelation(pn.Deprel)
}

func (pn *PhrasalNode) Construction() string {
	return pn.Derived[FeatConstruction]
}

func (pn *PhrasalNode) SemanticValue() string {
	return pn.Derived[FeatSemanticValue]
}

// SetDerived sets a derived feature. This is the only
// mutation allowed after a node is created in Stage 1.
func (pn *PhrasalNode) SetDerived(key, value string) {
	if pn.Derived == nil {
		pn.Derived = make(map[string]string)
	}
	pn.Derived[key] = value
}

// Contains tells whether the token id is one of the node's components.
func (pn *PhrasalNode) Contains(tokenID int) bool {
	for _, c := range pn.Components {
		if c == tokenID {
			return true
		}
	}
	return false
}

// ClausalNode wraps a phrasal node with its clause level role.
// Edges contains indices of the dependencies the node takes
// part in (as governor or dependent).
type ClausalNode struct {
	Phrasal PhrasalNode
	Kind    ClausalKind
	Edges   []int
	state   NodeState
}

func (cn *ClausalNode) State() NodeState {
	return cn.state
}

// AssignToClause performs the UNASSIGNED -> IN-CLAUSE transition.
func (cn *ClausalNode) AssignToClause() error {
	if cn.state != StateUnassigned {
		return fmt.Errorf("cannot assign node %d to a clause: state is %s", cn.Phrasal.Index, cn.state)
	}
	cn.state = StateInClause
	return nil
}

// Classify performs the IN-CLAUSE -> CLASSIFIED transition.
func (cn *ClausalNode) Classify() error {
	if cn.state != StateInClause {
		return fmt.Errorf("cannot classify node %d: state is %s", cn.Phrasal.Index, cn.state)
	}
	cn.state = StateClassified
	return nil
}

func (cn *ClausalNode) IsPredicate() bool {
	return cn.Kind == ClausalPredicate
}

// Dependency is a directed edge between two node indices of an arena.
type Dependency struct {
	Governor      int
	Dependent     int
	Relation      string
	Strength      float64
	NonProjective bool
	LongDistance  bool
}

// Clause groups clausal nodes around a predicate. Predicate
// is -1 for a clause without a predicate (verbless sentences).
type Clause struct {
	Members     []int
	Predicate   int
	Marker      string
	Coordinator string
	IsRoot      bool
}

// SententialNode is the sentence level classification of a clause.
type SententialNode struct {
	Members     []int
	Kind        SententialKind
	IsMain      bool
	Marker      string
	ClauseIndex int
	Predicate   int
}
