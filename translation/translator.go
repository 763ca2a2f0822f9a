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
	"fmt"

	"cxgparse/ce"

	"github.com/rs/zerolog/log"
)

// Translate wraps each phrasal node into exactly one clausal node
// and connects them with local dependencies. Subordinate clause
// attachments of predicates are left for folding.
func Translate(nodes []ce.PhrasalNode) (*ce.Arena, error) {
	arena := ce.NewArena(len(nodes))
	for _, pn := range nodes {
		kind, ruleName := ClausalKindOf(&pn)
		log.Debug().
			Int("index", pn.Index).
			Str("word", pn.Word).
			Str("rule", ruleName).
			Str("kind", kind.String()).
			Msg("translated phrasal node")
		arena.AddNode(&ce.ClausalNode{Phrasal: pn, Kind: kind})
	}
	for i, cn := range arena.Nodes {
		if cn.Phrasal.Head == 0 {
			continue
		}
		gov, ok := arena.NodeByToken(cn.Phrasal.Head)
		if !ok {
			return nil, fmt.Errorf(
				"node %d refers to a missing head token %d", cn.Phrasal.Index, cn.Phrasal.Head)
		}
		if gov == i {
			continue
		}
		if cn.IsPredicate() && ClausalRelations[cn.Phrasal.BaseRel()] {
			continue
		}
		label, strength := LocalRelation(cn.Phrasal.Deprel)
		if _, err := arena.AddEdge(ce.Dependency{
			Governor:  gov,
			Dependent: i,
			Relation:  label,
			Strength:  strength,
		}); err != nil {
			return nil, fmt.Errorf("failed to translate node %d: %w", cn.Phrasal.Index, err)
		}
	}
	return arena, nil
}
