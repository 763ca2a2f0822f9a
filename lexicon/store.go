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
	"sort"
	"strings"
	"sync"

	"cxgparse/ud"
)

// Store persists lexicon entries and their patterns.
// LoadPattern returns nil (and no error) for a lemma
// without a stored pattern.
type Store interface {
	Entry(ctx context.Context, id int64) (Entry, error)
	Entries(ctx context.Context) ([]Entry, error)
	LoadPattern(ctx context.Context, lemmaID int64) (*Pattern, error)
	LoadPatterns(ctx context.Context) ([]*Pattern, error)

	// ReplacePattern removes all the previous nodes, edges and
	// constraints of the lemma and stores the new pattern. The
	// operation is all-or-nothing.
	ReplacePattern(ctx context.Context, p *Pattern) error
}

// MemStore is an in-memory Store and Lookup. POS tags and
// relations are preloaded with the UD v2 tagsets.
type MemStore struct {
	entries   map[int64]Entry
	byLemma   map[string]int64
	patterns  map[int64]*Pattern
	posTags   map[string]int64
	relations map[string]int64
	nextID    int64
	lock      sync.RWMutex
}

// AddEntry registers a new entry and returns it with the assigned id.
// If the entry already carries a non-zero id, the id is kept.
func (ms *MemStore) AddEntry(e Entry) Entry {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if e.ID == 0 {
		ms.nextID++
		e.ID = ms.nextID

	} else if e.ID > ms.nextID {
		ms.nextID = e.ID
	}
	ms.entries[e.ID] = e
	ms.byLemma[strings.ToLower(e.Lemma)] = e.ID
	return e
}

func (ms *MemStore) Entry(ctx context.Context, id int64) (Entry, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	e, ok := ms.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (ms *MemStore) Entries(ctx context.Context) ([]Entry, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	ans := make([]Entry, 0, len(ms.entries))
	for _, e := range ms.entries {
		ans = append(ans, e)
	}
	sort.Slice(ans, func(i, j int) bool { return ans[i].ID < ans[j].ID })
	return ans, nil
}

func (ms *MemStore) LoadPattern(ctx context.Context, lemmaID int64) (*Pattern, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return ms.patterns[lemmaID], nil
}

func (ms *MemStore) LoadPatterns(ctx context.Context) ([]*Pattern, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	ans := make([]*Pattern, 0, len(ms.patterns))
	for _, p := range ms.patterns {
		ans = append(ans, p)
	}
	sortPatterns(ans)
	return ans, nil
}

func (ms *MemStore) ReplacePattern(ctx context.Context, p *Pattern) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	cp := *p
	cp.Nodes = append([]Node{}, p.Nodes...)
	cp.Edges = append([]Edge{}, p.Edges...)
	cp.Constraints = append([]Constraint{}, p.Constraints...)
	ms.patterns[p.LemmaID] = &cp
	return nil
}

func (ms *MemStore) LemmaID(ctx context.Context, lemma string) (int64, bool, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	id, ok := ms.byLemma[strings.ToLower(lemma)]
	return id, ok, nil
}

func (ms *MemStore) POSID(ctx context.Context, pos string) (int64, bool, error) {
	id, ok := ms.posTags[strings.ToUpper(pos)]
	return id, ok, nil
}

func (ms *MemStore) RelationID(ctx context.Context, rel string) (int64, bool, error) {
	id, ok := ms.relations[strings.ToLower(rel)]
	return id, ok, nil
}

func NewMemStore() *MemStore {
	ans := &MemStore{
		entries:   make(map[int64]Entry),
		byLemma:   make(map[string]int64),
		patterns:  make(map[int64]*Pattern),
		posTags:   make(map[string]int64),
		relations: make(map[string]int64),
	}
	for i, v := range ud.UniversalPOS {
		ans.posTags[v] = int64(i + 1)
	}
	for i, v := range ud.UniversalRelations {
		ans.relations[v] = int64(i + 1)
	}
	return ans
}
