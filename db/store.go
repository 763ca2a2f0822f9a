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

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cxgparse/construction"
	"cxgparse/lexicon"

	"github.com/rs/zerolog/log"
)

/*
Expected tables:

create table cxg_lemma (
  id int not null auto_increment primary key,
  lemma varchar(255) not null,
  text varchar(255),
  pos varchar(20),
  unique key (lemma)
);

create table cxg_pos (
  id int not null auto_increment primary key,
  tag varchar(20) not null unique
);

create table cxg_udrelation (
  id int not null auto_increment primary key,
  name varchar(30) not null unique
);

create table cxg_lexicon_pattern (
  id int not null auto_increment primary key,
  lemma_id int not null,
  pattern_type varchar(30) not null,
  pos_override varchar(20),
  foreign key (lemma_id) references cxg_lemma(id)
);

create table cxg_lexicon_pattern_node (
  id int not null auto_increment primary key,
  pattern_id int not null,
  position int not null,
  lexicon_id int,
  pos_id int,
  is_root tinyint not null default 0,
  is_required tinyint not null default 1,
  foreign key (pattern_id) references cxg_lexicon_pattern(id)
);

create table cxg_lexicon_pattern_edge (
  id int not null auto_increment primary key,
  pattern_id int not null,
  head_position int not null,
  dependent_position int not null,
  relation_id int not null,
  foreign key (pattern_id) references cxg_lexicon_pattern(id)
);

create table cxg_lexicon_pattern_constraint (
  id int not null auto_increment primary key,
  pattern_id int not null,
  constraint_type varchar(30) not null,
  value varchar(255) not null,
  foreign key (pattern_id) references cxg_lexicon_pattern(id)
);

create table cxg_construction (
  id int not null auto_increment primary key,
  name varchar(100) not null unique,
  pattern text not null,
  semantics text,
  priority int not null default 0,
  enabled tinyint not null default 1
);
*/

// PatternStore is a MySQL implementation of lexicon.Store
// and lexicon.Lookup.
type PatternStore struct {
	db *sql.DB
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v > 0}
}

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (ps *PatternStore) lookupID(ctx context.Context, query, value string) (int64, bool, error) {
	var id int64
	err := ps.db.QueryRowContext(ctx, query, value).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil

	} else if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (ps *PatternStore) LemmaID(ctx context.Context, lemma string) (int64, bool, error) {
	return ps.lookupID(ctx, "SELECT id FROM cxg_lemma WHERE lemma = ? LIMIT 1", lemma)
}

func (ps *PatternStore) POSID(ctx context.Context, pos string) (int64, bool, error) {
	return ps.lookupID(ctx, "SELECT id FROM cxg_pos WHERE tag = ? LIMIT 1", pos)
}

func (ps *PatternStore) RelationID(ctx context.Context, rel string) (int64, bool, error) {
	return ps.lookupID(ctx, "SELECT id FROM cxg_udrelation WHERE name = ? LIMIT 1", rel)
}

func scanEntry(row interface{ Scan(...any) error }) (lexicon.Entry, error) {
	var ans lexicon.Entry
	var text, pos sql.NullString
	if err := row.Scan(&ans.ID, &ans.Lemma, &text, &pos); err != nil {
		return ans, err
	}
	ans.Text = text.String
	ans.POS = pos.String
	return ans, nil
}

func (ps *PatternStore) Entry(ctx context.Context, id int64) (lexicon.Entry, error) {
	row := ps.db.QueryRowContext(
		ctx, "SELECT id, lemma, text, pos FROM cxg_lemma WHERE id = ?", id)
	ans, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return ans, lexicon.ErrEntryNotFound

	} else if err != nil {
		return ans, fmt.Errorf("failed to load lexicon entry %d: %w", id, err)
	}
	return ans, nil
}

func (ps *PatternStore) Entries(ctx context.Context) ([]lexicon.Entry, error) {
	rows, err := ps.db.QueryContext(
		ctx, "SELECT id, lemma, text, pos FROM cxg_lemma ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon entries: %w", err)
	}
	defer rows.Close()
	ans := make([]lexicon.Entry, 0, 1000)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon entries: %w", err)
		}
		ans = append(ans, e)
	}
	return ans, rows.Err()
}

// loadParts fills in nodes, edges and constraints of patterns.
// The `where` clause is applied to the cxg_lexicon_pattern table
// aliased as `p`.
func (ps *PatternStore) loadParts(
	ctx context.Context,
	byID map[int64]*lexicon.Pattern,
	where string,
	args ...any,
) error {
	rows, err := ps.db.QueryContext(
		ctx,
		"SELECT n.pattern_id, n.position, n.lexicon_id, n.pos_id, n.is_root, n.is_required "+
			"FROM cxg_lexicon_pattern_node AS n "+
			"JOIN cxg_lexicon_pattern AS p ON n.pattern_id = p.id "+
			where+" ORDER BY n.pattern_id, n.position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load pattern nodes: %w", err)
	}
	for rows.Next() {
		var patternID int64
		var lexID, posID sql.NullInt64
		var node lexicon.Node
		if err := rows.Scan(
			&patternID, &node.Position, &lexID, &posID, &node.IsRoot, &node.IsRequired); err != nil {
			rows.Close()
			return fmt.Errorf("failed to load pattern nodes: %w", err)
		}
		node.LexiconID = lexID.Int64
		node.POSID = posID.Int64
		if p, ok := byID[patternID]; ok {
			p.Nodes = append(p.Nodes, node)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to load pattern nodes: %w", err)
	}
	rows.Close()

	rows, err = ps.db.QueryContext(
		ctx,
		"SELECT e.pattern_id, e.head_position, e.dependent_position, e.relation_id "+
			"FROM cxg_lexicon_pattern_edge AS e "+
			"JOIN cxg_lexicon_pattern AS p ON e.pattern_id = p.id "+
			where+" ORDER BY e.pattern_id, e.id",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load pattern edges: %w", err)
	}
	for rows.Next() {
		var patternID int64
		var edge lexicon.Edge
		if err := rows.Scan(&patternID, &edge.Head, &edge.Dependent, &edge.RelationID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to load pattern edges: %w", err)
		}
		if p, ok := byID[patternID]; ok {
			p.Edges = append(p.Edges, edge)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to load pattern edges: %w", err)
	}
	rows.Close()

	rows, err = ps.db.QueryContext(
		ctx,
		"SELECT c.pattern_id, c.constraint_type, c.value "+
			"FROM cxg_lexicon_pattern_constraint AS c "+
			"JOIN cxg_lexicon_pattern AS p ON c.pattern_id = p.id "+
			where+" ORDER BY c.pattern_id, c.id",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to load pattern constraints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var patternID int64
		var cnstr lexicon.Constraint
		if err := rows.Scan(&patternID, &cnstr.Type, &cnstr.Value); err != nil {
			return fmt.Errorf("failed to load pattern constraints: %w", err)
		}
		if p, ok := byID[patternID]; ok {
			p.Constraints = append(p.Constraints, cnstr)
		}
	}
	return rows.Err()
}

func (ps *PatternStore) loadHeaders(
	ctx context.Context,
	where string,
	args ...any,
) ([]*lexicon.Pattern, map[int64]*lexicon.Pattern, error) {
	rows, err := ps.db.QueryContext(
		ctx,
		"SELECT p.id, p.lemma_id, l.lemma, p.pattern_type, p.pos_override "+
			"FROM cxg_lexicon_pattern AS p "+
			"JOIN cxg_lemma AS l ON p.lemma_id = l.id "+
			where+" ORDER BY p.lemma_id",
		args...,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	defer rows.Close()
	items := make([]*lexicon.Pattern, 0, 100)
	byID := make(map[int64]*lexicon.Pattern)
	for rows.Next() {
		var posOverride sql.NullString
		p := &lexicon.Pattern{
			Nodes:       []lexicon.Node{},
			Edges:       []lexicon.Edge{},
			Constraints: []lexicon.Constraint{},
		}
		if err := rows.Scan(&p.ID, &p.LemmaID, &p.Lemma, &p.Type, &posOverride); err != nil {
			return nil, nil, fmt.Errorf("failed to load patterns: %w", err)
		}
		p.POSOverride = posOverride.String
		items = append(items, p)
		byID[p.ID] = p
	}
	return items, byID, rows.Err()
}

func (ps *PatternStore) LoadPattern(ctx context.Context, lemmaID int64) (*lexicon.Pattern, error) {
	items, byID, err := ps.loadHeaders(ctx, "WHERE p.lemma_id = ?", lemmaID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > 1 {
		log.Warn().
			Int64("lemmaId", lemmaID).
			Int("numPatterns", len(items)).
			Msg("multiple patterns stored for a lemma, using the first one")
	}
	if err := ps.loadParts(ctx, byID, "WHERE p.lemma_id = ?", lemmaID); err != nil {
		return nil, err
	}
	return items[0], nil
}

func (ps *PatternStore) LoadPatterns(ctx context.Context) ([]*lexicon.Pattern, error) {
	items, byID, err := ps.loadHeaders(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	if err := ps.loadParts(ctx, byID, ""); err != nil {
		return nil, err
	}
	return items, nil
}

func (ps *PatternStore) replacePattern(ctx context.Context, tx *sql.Tx, p *lexicon.Pattern) error {
	for _, tbl := range []string{
		"cxg_lexicon_pattern_constraint",
		"cxg_lexicon_pattern_edge",
		"cxg_lexicon_pattern_node",
	} {
		_, err := tx.ExecContext(
			ctx,
			fmt.Sprintf(
				"DELETE t FROM %s AS t JOIN cxg_lexicon_pattern AS p ON t.pattern_id = p.id "+
					"WHERE p.lemma_id = ?",
				tbl,
			),
			p.LemmaID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete rows of %s: %w", tbl, err)
		}
	}
	if _, err := tx.ExecContext(
		ctx, "DELETE FROM cxg_lexicon_pattern WHERE lemma_id = ?", p.LemmaID); err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO cxg_lexicon_pattern (lemma_id, pattern_type, pos_override) VALUES (?, ?, ?)",
		p.LemmaID, p.Type, nullStr(p.POSOverride),
	)
	if err != nil {
		return fmt.Errorf("failed to insert pattern: %w", err)
	}
	patternID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to insert pattern: %w", err)
	}
	for _, n := range p.Nodes {
		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO cxg_lexicon_pattern_node "+
				"(pattern_id, position, lexicon_id, pos_id, is_root, is_required) "+
				"VALUES (?, ?, ?, ?, ?, ?)",
			patternID, n.Position, nullInt(n.LexiconID), nullInt(n.POSID), n.IsRoot, n.IsRequired,
		); err != nil {
			return fmt.Errorf("failed to insert pattern node: %w", err)
		}
	}
	for _, e := range p.Edges {
		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO cxg_lexicon_pattern_edge "+
				"(pattern_id, head_position, dependent_position, relation_id) VALUES (?, ?, ?, ?)",
			patternID, e.Head, e.Dependent, e.RelationID,
		); err != nil {
			return fmt.Errorf("failed to insert pattern edge: %w", err)
		}
	}
	for _, c := range p.Constraints {
		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO cxg_lexicon_pattern_constraint "+
				"(pattern_id, constraint_type, value) VALUES (?, ?, ?)",
			patternID, c.Type, c.Value,
		); err != nil {
			return fmt.Errorf("failed to insert pattern constraint: %w", err)
		}
	}
	p.ID = patternID
	return nil
}

// ReplacePattern stores the pattern in a single transaction. All the
// previously stored rows of the lemma are removed first. On success,
// the pattern's ID is set to the new database id.
func (ps *PatternStore) ReplacePattern(ctx context.Context, p *lexicon.Pattern) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := ps.replacePattern(ctx, tx, p); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		log.Error().Err(err).Int64("lemmaId", p.LemmaID).Msg("failed to store pattern")
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pattern of lemma %d: %w", p.LemmaID, err)
	}
	return nil
}

// LoadConstructions returns all the stored construction definitions
// (including the disabled ones).
func (ps *PatternStore) LoadConstructions(ctx context.Context) ([]construction.Definition, error) {
	rows, err := ps.db.QueryContext(
		ctx,
		"SELECT name, pattern, semantics, priority, enabled FROM cxg_construction "+
			"ORDER BY priority DESC, name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load constructions: %w", err)
	}
	defer rows.Close()
	ans := make([]construction.Definition, 0, 50)
	for rows.Next() {
		var def construction.Definition
		var semantics sql.NullString
		var enabled bool
		if err := rows.Scan(&def.Name, &def.Pattern, &semantics, &def.Priority, &enabled); err != nil {
			return nil, fmt.Errorf("failed to load constructions: %w", err)
		}
		def.Semantics = semantics.String
		def.Enabled = &enabled
		ans = append(ans, def)
	}
	return ans, rows.Err()
}

func NewPatternStore(db *sql.DB) *PatternStore {
	return &PatternStore{db: db}
}
