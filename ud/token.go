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

package ud

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	FeaturesSeparator = "|"
	FeatureSeparator  = "="
	EmptyField        = "_"

	RelRoot  = "root"
	RelFixed = "fixed"
)

// Features holds morphological features of a token
// (e.g. Gender=Masc, Number=Sing).
type Features map[string]string

// ParseFeatures decodes a pipe-delimited `Key=Value` string
// as provided by CoNLL-U and most UD parsers. Items without
// a value separator are ignored.
func ParseFeatures(src string) Features {
	ans := make(Features)
	src = strings.TrimSpace(src)
	if src == "" || src == EmptyField {
		return ans
	}
	for _, item := range strings.Split(src, FeaturesSeparator) {
		k, v, ok := strings.Cut(item, FeatureSeparator)
		if !ok || k == "" {
			continue
		}
		ans[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return ans
}

// String encodes features back to the CoNLL-U form with
// keys sorted alphabetically.
func (f Features) String() string {
	if len(f) == 0 {
		return EmptyField
	}
	items := make([]string, 0, len(f))
	for k, v := range f {
		items = append(items, k+FeatureSeparator+v)
	}
	sort.Strings(items)
	return strings.Join(items, FeaturesSeparator)
}

func (f Features) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

func (f Features) Has(name, value string) bool {
	return f.Get(name) == value
}

// UnmarshalJSON accepts both a JSON object and a pipe-delimited
// string.
func (f *Features) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ParseFeatures(s)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("invalid morphological features: %w", err)
	}
	if m == nil {
		m = make(map[string]string)
	}
	*f = Features(m)
	return nil
}

// Token is a single word as produced by the external
// dependency parser. Tokens are never modified once parsed.
type Token struct {
	ID     int      `json:"id"`
	Word   string   `json:"word"`
	Lemma  string   `json:"lemma"`
	POS    string   `json:"pos"`
	Morph  Features `json:"morph"`
	Head   int      `json:"head"`
	Deprel string   `json:"deprel"`
}

// BaseRel returns the dependency relation without subtype.
func (t Token) BaseRel() string {
	return BaseRelation(t.Deprel)
}

// IsRoot tests whether the token is attached to the artificial root.
func (t Token) IsRoot() bool {
	return t.Head == 0 || t.BaseRel() == RelRoot
}

// BaseRelation strips a UD relation subtype (`obl:tmod` -> `obl`).
// The result is always lowercase.
func BaseRelation(rel string) string {
	base, _, _ := strings.Cut(rel, ":")
	return strings.ToLower(strings.TrimSpace(base))
}

// RelationSubtype returns the part after `:` (or an empty string).
func RelationSubtype(rel string) string {
	_, sub, _ := strings.Cut(rel, ":")
	return strings.ToLower(sub)
}

// ------------

// Sentence is an ordered list of tokens with 1-based ids.
type Sentence []Token

// ByID returns a token with a specified 1-based id.
func (s Sentence) ByID(id int) (Token, bool) {
	if id >= 1 && id <= len(s) && s[id-1].ID == id {
		return s[id-1], true
	}
	for _, t := range s {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}

// Children creates a head -> dependents adjacency map.
// Dependents are kept in sentence order.
func (s Sentence) Children() map[int][]int {
	ans := make(map[int][]int)
	for _, t := range s {
		ans[t.Head] = append(ans[t.Head], t.ID)
	}
	return ans
}

// Root returns the first token attached to the artificial root.
func (s Sentence) Root() (Token, bool) {
	for _, t := range s {
		if t.Head == 0 {
			return t, true
		}
	}
	for _, t := range s {
		if t.BaseRel() == RelRoot {
			return t, true
		}
	}
	return Token{}, false
}

// Text joins all the words using a single space.
func (s Sentence) Text() string {
	words := make([]string, len(s))
	for i, t := range s {
		words[i] = t.Word
	}
	return strings.Join(words, " ")
}

// Validate checks the sentence is non-empty, ids form
// the sequence 1..n, heads point inside the sentence and
// the heads form a tree (there is a root and no cycle).
func (s Sentence) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty sentence")
	}
	var hasRoot bool
	for i, t := range s {
		if t.ID != i+1 {
			return fmt.Errorf("unexpected token id %d at position %d", t.ID, i+1)
		}
		if t.Head < 0 || t.Head > len(s) {
			return fmt.Errorf("token %d has head %d outside the sentence", t.ID, t.Head)
		}
		if t.Head == t.ID {
			return fmt.Errorf("token %d depends on itself", t.ID)
		}
		if t.Head == 0 {
			hasRoot = true
		}
	}
	if !hasRoot {
		return fmt.Errorf("no root token (head 0) in sentence")
	}
	reachesRoot := make([]bool, len(s)+1)
	reachesRoot[0] = true
	for _, t := range s {
		path := make([]int, 0, 4)
		curr := t.ID
		for !reachesRoot[curr] {
			if len(path) > len(s) {
				return fmt.Errorf("token %d is part of a dependency cycle", t.ID)
			}
			path = append(path, curr)
			curr = s[curr-1].Head
		}
		for _, v := range path {
			reachesRoot[v] = true
		}
	}
	return nil
}
