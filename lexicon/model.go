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
	"errors"
	"sort"
)

const (
	PatternTypeDependency = "dependency"

	ConstraintWordOrder = "word_order"
	WordOrderStrict     = "strict"
)

var (
	ErrEntryNotFound = errors.New("lexicon entry not found")
)

// Entry is a lexicon item a pattern can be generated for.
// Text is the canonical surface form sent to the dependency parser
// (if empty, Lemma is used). POS, if set, overrides the POS of
// merged multi-word nodes.
type Entry struct {
	ID    int64  `json:"id"`
	Lemma string `json:"lemma"`
	Text  string `json:"text,omitempty"`
	POS   string `json:"pos,omitempty"`
}

func (e Entry) SurfaceText() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Lemma
}

// Node is a pattern node. Zero LexiconID or POSID means
// the respective property is not constrained.
type Node struct {
	Position   int   `json:"position"`
	LexiconID  int64 `json:"lexiconId,omitempty"`
	POSID      int64 `json:"posId,omitempty"`
	IsRoot     bool  `json:"isRoot"`
	IsRequired bool  `json:"isRequired"`
}

// Edge connects nodes by their positions.
type Edge struct {
	Head       int   `json:"head"`
	Dependent  int   `json:"dependent"`
	RelationID int64 `json:"relationId"`
}

type Constraint struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Pattern is a canonical dependency tree of a lexicon entry.
type Pattern struct {
	ID          int64        `json:"id,omitempty"`
	LemmaID     int64        `json:"lemmaId"`
	Lemma       string       `json:"lemma"`
	Type        string       `json:"type"`
	POSOverride string       `json:"posOverride,omitempty"`
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	Constraints []Constraint `json:"constraints"`
}

func (p *Pattern) Root() (Node, bool) {
	for _, n := range p.Nodes {
		if n.IsRoot {
			return n, true
		}
	}
	return Node{}, false
}

func (p *Pattern) NodeAt(position int) (Node, bool) {
	for _, n := range p.Nodes {
		if n.Position == position {
			return n, true
		}
	}
	return Node{}, false
}

// RequiredCount returns number of nodes which must be matched.
// This is also the activation threshold of merged MWE nodes.
func (p *Pattern) RequiredCount() int {
	var ans int
	for _, n := range p.Nodes {
		if n.IsRequired {
			ans++
		}
	}
	return ans
}

// Outgoing returns edges whose head is the node at the position.
func (p *Pattern) Outgoing(position int) []Edge {
	ans := make([]Edge, 0, 2)
	for _, e := range p.Edges {
		if e.Head == position {
			ans = append(ans, e)
		}
	}
	return ans
}

func (p *Pattern) HasConstraint(tp, value string) bool {
	for _, c := range p.Constraints {
		if c.Type == tp && c.Value == value {
			return true
		}
	}
	return false
}

// IsStrictOrder tells whether the pattern tokens must
// appear contiguously and in the original order.
func (p *Pattern) IsStrictOrder() bool {
	return p.HasConstraint(ConstraintWordOrder, WordOrderStrict)
}

// Positions returns sorted node positions.
func (p *Pattern) Positions() []int {
	ans := make([]int, len(p.Nodes))
	for i, n := range p.Nodes {
		ans[i] = n.Position
	}
	sort.Ints(ans)
	return ans
}

func sortPatterns(items []*Pattern) {
	sort.Slice(items, func(i, j int) bool { return items[i].LemmaID < items[j].LemmaID })
}
