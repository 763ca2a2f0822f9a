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

package construction

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"cxgparse/pattern"
	"cxgparse/ud"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Definition describes a named construction. The Semantics
// template may refer to slot variables using $name or ${name}.
type Definition struct {
	Name      string `yaml:"name" json:"name"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Enabled   *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Semantics string `yaml:"semantics,omitempty" json:"semantics,omitempty"`
	Priority  int    `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// IsEnabled returns true unless the construction is explicitly disabled.
func (d Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

type inventoryFile struct {
	Constructions []Definition `yaml:"constructions"`
}

// Construction is a definition with its compiled pattern.
type Construction struct {
	Definition
	Compiled *pattern.Pattern
}

// SemanticValue expands the semantics template using slot bindings.
// Unbound variables expand to an empty string.
func (c *Construction) SemanticValue(bindings map[string]string) string {
	if c.Semantics == "" {
		return ""
	}
	return os.Expand(c.Semantics, func(name string) string {
		return bindings[name]
	})
}

// Detection is a single match of a construction.
type Detection struct {
	Name          string            `json:"name"`
	Start         int               `json:"start"`
	End           int               `json:"end"`
	Bindings      map[string]string `json:"bindings"`
	SemanticValue string            `json:"semanticValue,omitempty"`
}

// Inventory is an immutable set of compiled enabled constructions
// ordered by priority (descending) and name.
type Inventory struct {
	items []*Construction
}

func (inv *Inventory) Len() int {
	return len(inv.items)
}

func (inv *Inventory) Get(name string) (*Construction, bool) {
	for _, c := range inv.items {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (inv *Inventory) Names() []string {
	ans := make([]string, len(inv.items))
	for i, c := range inv.items {
		ans[i] = c.Name
	}
	return ans
}

// Detect runs all the constructions against the tokens.
// Detections are returned in inventory order and for each
// construction from left to right.
func (inv *Inventory) Detect(tokens []ud.Token) []Detection {
	ans := make([]Detection, 0, 4)
	for _, c := range inv.items {
		for _, m := range c.Compiled.FindAll(tokens) {
			ans = append(ans, Detection{
				Name:          c.Name,
				Start:         m.Start,
				End:           m.End,
				Bindings:      m.Bindings,
				SemanticValue: c.SemanticValue(m.Bindings),
			})
		}
	}
	return ans
}

// NewInventory compiles the enabled definitions. A definition which
// fails to compile is logged and left out, other ones are not affected.
func NewInventory(defs []Definition) *Inventory {
	ans := &Inventory{items: make([]*Construction, 0, len(defs))}
	for _, def := range defs {
		if !def.IsEnabled() {
			continue
		}
		if strings.TrimSpace(def.Name) == "" {
			log.Error().Str("pattern", def.Pattern).Msg("skipping construction without a name")
			continue
		}
		comp, err := pattern.Compile(def.Pattern)
		if err != nil {
			log.Error().Err(err).Str("construction", def.Name).Msg("failed to compile construction")
			continue
		}
		for _, w := range comp.Validate() {
			log.Warn().Str("construction", def.Name).Str("warning", w).Msg("suspicious construction pattern")
		}
		ans.items = append(ans.items, &Construction{Definition: def, Compiled: comp})
	}
	sort.SliceStable(ans.items, func(i, j int) bool {
		if ans.items[i].Priority != ans.items[j].Priority {
			return ans.items[i].Priority > ans.items[j].Priority
		}
		return ans.items[i].Name < ans.items[j].Name
	})
	return ans
}

// ParseDefinitions decodes a YAML document with the `constructions` list.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var doc inventoryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse constructions: %w", err)
	}
	return doc.Constructions, nil
}

// ReadDefinitions reads definitions from a YAML file.
func ReadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load constructions from %s: %w", path, err)
	}
	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load constructions from %s: %w", path, err)
	}
	return defs, nil
}

// MergeDefinitions returns base definitions with the ones from
// `override` replacing items of the same name. New names are appended.
func MergeDefinitions(base, override []Definition) []Definition {
	ans := make([]Definition, 0, len(base)+len(override))
	pos := make(map[string]int)
	for _, d := range base {
		if i, ok := pos[d.Name]; ok {
			ans[i] = d
			continue
		}
		pos[d.Name] = len(ans)
		ans = append(ans, d)
	}
	for _, d := range override {
		if i, ok := pos[d.Name]; ok {
			ans[i] = d
			continue
		}
		pos[d.Name] = len(ans)
		ans = append(ans, d)
	}
	return ans
}

// LoadFile reads a YAML construction inventory.
func LoadFile(path string) (*Inventory, error) {
	defs, err := ReadDefinitions(path)
	if err != nil {
		return nil, err
	}
	ans := NewInventory(defs)
	log.Info().
		Str("path", path).
		Int("defined", len(defs)).
		Int("active", ans.Len()).
		Msg("loaded construction inventory")
	return ans, nil
}
