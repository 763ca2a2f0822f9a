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
	"context"
	"fmt"

	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
)

// Builder converts a parsed lemma text into a dependency Pattern.
type Builder struct {
	lookup *Cache
}

func isOptionalPOS(pos string) bool {
	return pos == "PUNCT" || pos == "DET"
}

// Build creates a pattern for the entry out of its parsed canonical
// text. Every token becomes a node, every head-dependent pair an edge
// labeled with the base UD relation. Missing root token is fatal
// (merror.NoRootTokenError), unknown relations and lemmas are only logged.
func (b *Builder) Build(ctx context.Context, entry Entry, sent ud.Sentence) (*Pattern, error) {
	root, ok := sent.Root()
	if !ok {
		return nil, merror.NoRootTokenError{Lemma: entry.Lemma}
	}
	ans := &Pattern{
		LemmaID:     entry.ID,
		Lemma:       entry.Lemma,
		Type:        PatternTypeDependency,
		POSOverride: entry.POS,
		Nodes:       make([]Node, 0, len(sent)),
		Edges:       make([]Edge, 0, len(sent)),
		Constraints: make([]Constraint, 0, 1),
	}
	var strict bool
	for _, tok := range sent {
		lexID, found, err := b.lookup.LemmaID(ctx, tok.Lemma)
		if err != nil {
			return nil, fmt.Errorf("failed to build pattern for `%s`: %w", entry.Lemma, err)
		}
		if !found {
			log.Warn().
				Err(merror.MissingLexiconEntryWarning{Lemma: tok.Lemma, Token: tok.ID}).
				Str("entry", entry.Lemma).
				Int("token", tok.ID).
				Msg("pattern node left unconstrained")
		}
		posID, _, err := b.lookup.POSID(ctx, tok.POS)
		if err != nil {
			return nil, fmt.Errorf("failed to build pattern for `%s`: %w", entry.Lemma, err)
		}
		isRoot := tok.ID == root.ID
		ans.Nodes = append(ans.Nodes, Node{
			Position:   tok.ID,
			LexiconID:  lexID,
			POSID:      posID,
			IsRoot:     isRoot,
			IsRequired: isRoot || !isOptionalPOS(tok.POS),
		})
		if tok.BaseRel() == ud.RelFixed {
			strict = true
		}
		if isRoot || tok.Head == 0 {
			continue
		}
		relID, found, err := b.lookup.RelationID(ctx, tok.BaseRel())
		if err != nil {
			return nil, fmt.Errorf("failed to build pattern for `%s`: %w", entry.Lemma, err)
		}
		if !found {
			log.Warn().
				Err(merror.UnknownRelationWarning{Relation: tok.Deprel, Lemma: entry.Lemma, Token: tok.ID}).
				Str("entry", entry.Lemma).
				Int("token", tok.ID).
				Msg("skipping pattern edge")
			continue
		}
		ans.Edges = append(ans.Edges, Edge{Head: tok.Head, Dependent: tok.ID, RelationID: relID})
	}
	if strict {
		ans.Constraints = append(
			ans.Constraints,
			Constraint{Type: ConstraintWordOrder, Value: WordOrderStrict},
		)
	}
	return ans, nil
}

func NewBuilder(lookup *Cache) *Builder {
	return &Builder{lookup: lookup}
}
