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
	"strings"
	"sync"
)

// Lookup resolves lexical items to their database ids.
// The `bool` return value is false if the item is unknown.
type Lookup interface {
	LemmaID(ctx context.Context, lemma string) (int64, bool, error)
	POSID(ctx context.Context, pos string) (int64, bool, error)
	RelationID(ctx context.Context, rel string) (int64, bool, error)
}

type cachedID struct {
	id    int64
	found bool
}

type lookupCache map[string]cachedID

type lookupKind int

const (
	lemmaLookup lookupKind = iota
	posLookup
	relationLookup
)

// Cache is a read-mostly cache in front of a Lookup. Unknown items
// are cached too. The cache can be shared by multiple pipelines.
// To keep memory bounded in long batch runs, callers are expected
// to call Clear on their own cadence.
type Cache struct {
	src       Lookup
	lemmas    lookupCache
	posTags   lookupCache
	relations lookupCache
	lock      sync.RWMutex
}

// table must be called with the lock held as Clear swaps the maps
func (c *Cache) table(kind lookupKind) lookupCache {
	switch kind {
	case posLookup:
		return c.posTags
	case relationLookup:
		return c.relations
	default:
		return c.lemmas
	}
}

func (c *Cache) get(
	ctx context.Context,
	kind lookupKind,
	key string,
	fn func(context.Context, string) (int64, bool, error),
) (int64, bool, error) {
	c.lock.RLock()
	v, ok := c.table(kind)[key]
	c.lock.RUnlock()
	if ok {
		return v.id, v.found, nil
	}
	id, found, err := fn(ctx, key)
	if err != nil {
		return 0, false, err
	}
	c.lock.Lock()
	c.table(kind)[key] = cachedID{id: id, found: found}
	c.lock.Unlock()
	return id, found, nil
}

func (c *Cache) LemmaID(ctx context.Context, lemma string) (int64, bool, error) {
	return c.get(ctx, lemmaLookup, strings.ToLower(lemma), c.src.LemmaID)
}

func (c *Cache) POSID(ctx context.Context, pos string) (int64, bool, error) {
	return c.get(ctx, posLookup, strings.ToUpper(pos), c.src.POSID)
}

func (c *Cache) RelationID(ctx context.Context, rel string) (int64, bool, error) {
	return c.get(ctx, relationLookup, strings.ToLower(rel), c.src.RelationID)
}

// Size returns the total number of cached items.
func (c *Cache) Size() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.lemmas) + len(c.posTags) + len(c.relations)
}

func (c *Cache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lemmas = make(lookupCache)
	c.posTags = make(lookupCache)
	c.relations = make(lookupCache)
}

func NewCache(src Lookup) *Cache {
	return &Cache{
		src:       src,
		lemmas:    make(lookupCache),
		posTags:   make(lookupCache),
		relations: make(lookupCache),
	}
}
