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

package translation

import (
	"strings"

	"cxgparse/ce"
	"cxgparse/ud"
)

// ClausalRelations attach subordinate clauses. If their dependent
// is a predicate, the edge is created during folding.
var ClausalRelations = map[string]bool{
	"acl":   true,
	"ccomp": true,
	"csubj": true,
	"xcomp": true,
	"advcl": true,
}

var predicateRelations = map[string]bool{
	"root":      true,
	"conj":      true,
	"parataxis": true,
	"acl":       true,
	"ccomp":     true,
	"csubj":     true,
	"xcomp":     true,
	"advcl":     true,
}

var argumentRelations = map[string]bool{
	"nsubj": true,
	"obj":   true,
	"iobj":  true,
	"csubj": true,
	"expl":  true,
}

type rule struct {
	name  string
	kind  ce.ClausalKind
	match func(n *ce.PhrasalNode) bool
}

// rules are evaluated in order, the first matching one wins
var rules = []rule{
	{
		name: "finite-verb",
		kind: ce.ClausalPredicate,
		match: func(n *ce.PhrasalNode) bool {
			return ud.IsVerbal(n.POS) && n.Kind == ce.PhrasalHead &&
				n.Features.Get("VerbForm") == "Fin"
		},
	},
	{
		name: "clausal-verb",
		kind: ce.ClausalPredicate,
		match: func(n *ce.PhrasalNode) bool {
			return ud.IsVerbal(n.POS) && predicateRelations[n.BaseRel()] &&
				n.Kind != ce.PhrasalModifier
		},
	},
	{
		name: "nonverbal-root",
		kind: ce.ClausalPredicate,
		match: func(n *ce.PhrasalNode) bool {
			return n.BaseRel() == ud.RelRoot
		},
	},
	{
		name: "core-argument",
		kind: ce.ClausalArgument,
		match: func(n *ce.PhrasalNode) bool {
			isRelPron := n.Features.Get("PronType") == "Rel"
			return (n.Kind == ce.PhrasalHead || isRelPron) && argumentRelations[n.BaseRel()]
		},
	},
	{
		name: "connector",
		kind: ce.ClausalConnector,
		match: func(n *ce.PhrasalNode) bool {
			return n.Kind == ce.PhrasalAdposition || n.Kind == ce.PhrasalConjunction ||
				n.Kind == ce.PhrasalLinker
		},
	},
	{
		name: "adverbial",
		kind: ce.ClausalAdjunct,
		match: func(n *ce.PhrasalNode) bool {
			return n.Kind == ce.PhrasalAdjunct && n.BaseRel() == "advmod"
		},
	},
	{
		name: "oblique",
		kind: ce.ClausalModifier,
		match: func(n *ce.PhrasalNode) bool {
			return n.BaseRel() == "obl"
		},
	},
}

// ClausalKindOf applies the rule table. The name of the
// matching rule is returned along with the kind ("default"
// if no rule matched).
func ClausalKindOf(n *ce.PhrasalNode) (ce.ClausalKind, string) {
	for _, r := range rules {
		if r.match(n) {
			return r.kind, r.name
		}
	}
	return ce.ClausalModifier, "default"
}

// LocalRelation maps a UD relation to a local dependency label
// and its strength.
func LocalRelation(deprel string) (string, float64) {
	switch ud.BaseRelation(deprel) {
	case "nsubj", "csubj":
		return "SUBJ", 1.0
	case "obj", "iobj":
		return "OBJ", 1.0
	case "advmod", "obl":
		return "ADV", 0.8
	case "amod", "nmod", "det", "case", "nummod", "compound", "appos", "acl":
		return "MOD", 0.9
	}
	return strings.ToUpper(ud.BaseRelation(deprel)), 1.0
}
