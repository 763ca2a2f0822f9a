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

package pattern

import (
	"fmt"
	"strings"
	"unicode"

	"cxgparse/merror"
)

const (
	tokWord lexKind = iota
	tokQuoted
	tokSlot
	tokStar
	tokPlus
	tokPipe
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokEOF
)

type lexKind int

type lexItem struct {
	kind  lexKind
	value string
	pos   int
}

func syntaxErr(src string, pos int, msg string, args ...any) error {
	return merror.PatternSyntaxError{Pattern: src, Pos: pos, Msg: fmt.Sprintf(msg, args...)}
}

func isSpecial(r rune) bool {
	return strings.ContainsRune("()[]{}|*+\"", r)
}

func tokenize(src string) ([]lexItem, error) {
	ans := make([]lexItem, 0, 16)
	runes := []rune(src)
	byteOffsets := make([]int, len(runes)+1)
	var off int
	for i, r := range runes {
		byteOffsets[i] = off
		off += len(string(r))
	}
	byteOffsets[len(runes)] = off

	for i := 0; i < len(runes); {
		r := runes[i]
		pos := byteOffsets[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			ans = append(ans, lexItem{kind: tokLParen, pos: pos})
			i++
		case r == ')':
			ans = append(ans, lexItem{kind: tokRParen, pos: pos})
			i++
		case r == '[':
			ans = append(ans, lexItem{kind: tokLBrack, pos: pos})
			i++
		case r == ']':
			ans = append(ans, lexItem{kind: tokRBrack, pos: pos})
			i++
		case r == '|':
			ans = append(ans, lexItem{kind: tokPipe, pos: pos})
			i++
		case r == '*':
			ans = append(ans, lexItem{kind: tokStar, pos: pos})
			i++
		case r == '+':
			ans = append(ans, lexItem{kind: tokPlus, pos: pos})
			i++
		case r == '}':
			return nil, syntaxErr(src, pos, "unbalanced '}'")
		case r == '{':
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				if runes[j] == '{' {
					return nil, syntaxErr(src, byteOffsets[j], "nested '{' in slot")
				}
				j++
			}
			if j == len(runes) {
				return nil, syntaxErr(src, pos, "unterminated slot")
			}
			ans = append(ans, lexItem{kind: tokSlot, value: string(runes[i+1 : j]), pos: pos})
			i = j + 1
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j == len(runes) {
				return nil, syntaxErr(src, pos, "unterminated quoted literal")
			}
			if j == i+1 {
				return nil, syntaxErr(src, pos, "empty quoted literal")
			}
			ans = append(ans, lexItem{kind: tokQuoted, value: string(runes[i+1 : j]), pos: pos})
			i = j + 1
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && !isSpecial(runes[j]) {
				j++
			}
			ans = append(ans, lexItem{kind: tokWord, value: string(runes[i:j]), pos: pos})
			i = j
		}
	}
	ans = append(ans, lexItem{kind: tokEOF, pos: len(src)})
	return ans, nil
}

// ---------------------

func isPOSTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(unicode.IsUpper(r) || r == '_') {
			return false
		}
	}
	return true
}

func parseSlot(src string, item lexItem) (*Slot, error) {
	body := strings.TrimSpace(item.value)
	if body == "" {
		return nil, syntaxErr(src, item.pos, "empty slot")
	}
	pos, constr, hasConstr := strings.Cut(body, ":")
	pos = strings.TrimSpace(pos)
	if !isPOSTag(pos) {
		return nil, syntaxErr(src, item.pos, "invalid POS tag `%s`", pos)
	}
	ans := &Slot{POS: pos, Var: strings.ToLower(pos)}
	if !hasConstr {
		return ans, nil
	}
	if strings.TrimSpace(constr) == "" {
		return nil, syntaxErr(src, item.pos, "empty slot constraint")
	}
	for _, c := range strings.Split(constr, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(c), "=")
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, syntaxErr(src, item.pos, "malformed slot constraint `%s`", c)
		}
		switch k {
		case "lemma":
			ans.Lemma = v
		case "word":
			ans.Word = v
		case "deprel":
			ans.Deprel = v
		case "as":
			ans.Var = v
		default:
			if !unicode.IsUpper([]rune(k)[0]) {
				return nil, syntaxErr(src, item.pos, "unknown slot constraint `%s`", k)
			}
			if ans.Features == nil {
				ans.Features = make(map[string]string)
			}
			ans.Features[k] = v
		}
	}
	return ans, nil
}

// ---------------------

const (
	astLiteral astKind = iota
	astSlot
	astWildcard
	astSeq
	astAlt
	astOpt
	astRep
)

type astKind int

type astNode struct {
	kind     astKind
	value    string
	slot     *Slot
	children []*astNode
	pos      int
}

type parser struct {
	src   string
	items []lexItem
	curr  int
	notes []string
}

func (p *parser) peek() lexItem {
	return p.items[p.curr]
}

func (p *parser) next() lexItem {
	ans := p.items[p.curr]
	if ans.kind != tokEOF {
		p.curr++
	}
	return ans
}

func (p *parser) parseAlternation() (*astNode, error) {
	start := p.peek().pos
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	branches := []*astNode{first}
	for p.peek().kind == tokPipe {
		p.next()
		branch, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	if len(branches) == 1 {
		return first, nil
	}
	for i, b := range branches {
		if len(b.children) == 0 {
			p.notes = append(p.notes, fmt.Sprintf("empty alternation branch %d at %d", i+1, start))
		}
	}
	return &astNode{kind: astAlt, children: branches, pos: start}, nil
}

func (p *parser) parseSequence() (*astNode, error) {
	ans := &astNode{kind: astSeq, pos: p.peek().pos}
	for {
		switch p.peek().kind {
		case tokPipe, tokRParen, tokRBrack, tokEOF:
			return ans, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		ans.children = append(ans.children, item)
	}
}

func (p *parser) parseItem() (*astNode, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokPlus {
		plus := p.next()
		if p.peek().kind == tokPlus {
			return nil, syntaxErr(p.src, p.peek().pos, "repeated '+'")
		}
		if atom.kind == astWildcard {
			p.notes = append(p.notes, fmt.Sprintf("repeated wildcard at %d", plus.pos))
		}
		return &astNode{kind: astRep, children: []*astNode{atom}, pos: plus.pos}, nil
	}
	return atom, nil
}

func (p *parser) parseGroup(open lexItem, closing lexKind, kind astKind) (*astNode, error) {
	inner, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != closing {
		return nil, syntaxErr(p.src, open.pos, "unterminated group")
	}
	p.next()
	if inner.kind == astSeq && len(inner.children) == 0 {
		p.notes = append(p.notes, fmt.Sprintf("empty group at %d", open.pos))
	}
	if kind == astOpt {
		return &astNode{kind: astOpt, children: []*astNode{inner}, pos: open.pos}, nil
	}
	return inner, nil
}

func (p *parser) parseAtom() (*astNode, error) {
	item := p.next()
	switch item.kind {
	case tokWord, tokQuoted:
		return &astNode{kind: astLiteral, value: item.value, pos: item.pos}, nil
	case tokSlot:
		slot, err := parseSlot(p.src, item)
		if err != nil {
			return nil, err
		}
		return &astNode{kind: astSlot, slot: slot, pos: item.pos}, nil
	case tokStar:
		return &astNode{kind: astWildcard, pos: item.pos}, nil
	case tokLParen:
		return p.parseGroup(item, tokRParen, astSeq)
	case tokLBrack:
		return p.parseGroup(item, tokRBrack, astOpt)
	case tokPlus:
		return nil, syntaxErr(p.src, item.pos, "'+' without operand")
	default:
		return nil, syntaxErr(p.src, item.pos, "unexpected token")
	}
}

// ---------------------

type endpoint struct {
	node   int
	bypass bool
}

type fragment struct {
	entries  []endpoint
	exits    []endpoint
	nullable bool
}

func markBypass(items []endpoint) []endpoint {
	ans := make([]endpoint, len(items))
	for i, v := range items {
		ans[i] = endpoint{node: v.node, bypass: true}
	}
	return ans
}

type graphBuilder struct {
	nodes []Node
	edges []Edge
	seen  map[[2]int]bool
}

func (b *graphBuilder) addNode(n Node) int {
	n.ID = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return n.ID
}

func (b *graphBuilder) addEdge(e Edge) {
	key := [2]int{e.From, e.To}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.edges = append(b.edges, e)
}

func (b *graphBuilder) connect(exits, entries []endpoint) {
	for _, x := range exits {
		for _, e := range entries {
			b.addEdge(Edge{From: x.node, To: e.node, Bypass: x.bypass || e.bypass})
		}
	}
}

func (b *graphBuilder) single(n Node) fragment {
	id := b.addNode(n)
	return fragment{
		entries: []endpoint{{node: id}},
		exits:   []endpoint{{node: id}},
	}
}

func (b *graphBuilder) build(ast *astNode) fragment {
	switch ast.kind {
	case astLiteral:
		return b.single(Node{Type: NodeLiteral, Literal: ast.value})
	case astSlot:
		return b.single(Node{Type: NodeSlot, Slot: ast.slot})
	case astWildcard:
		return b.single(Node{Type: NodeWildcard})
	case astSeq:
		ans := fragment{nullable: true}
		for i, ch := range ast.children {
			f := b.build(ch)
			if i == 0 {
				ans = f
				continue
			}
			b.connect(ans.exits, f.entries)
			if ans.nullable {
				ans.entries = append(ans.entries, markBypass(f.entries)...)
			}
			if f.nullable {
				ans.exits = append(f.exits, markBypass(ans.exits)...)

			} else {
				ans.exits = f.exits
			}
			ans.nullable = ans.nullable && f.nullable
		}
		return ans
	case astAlt:
		var ans fragment
		for _, ch := range ast.children {
			f := b.build(ch)
			ans.entries = append(ans.entries, f.entries...)
			ans.exits = append(ans.exits, f.exits...)
			ans.nullable = ans.nullable || f.nullable
		}
		return ans
	case astOpt:
		f := b.build(ast.children[0])
		f.nullable = true
		return f
	case astRep:
		f := b.build(ast.children[0])
		rep := b.addNode(Node{Type: NodeRepCheck})
		b.connect(f.exits, []endpoint{{node: rep}})
		for _, e := range f.entries {
			b.addEdge(Edge{From: rep, To: e.node, Loop: true})
		}
		ans := fragment{
			entries: f.entries,
			exits:   []endpoint{{node: rep}},
		}
		if f.nullable {
			ans.entries = append(ans.entries, endpoint{node: rep, bypass: true})
		}
		return ans
	default:
		panic(fmt.Sprintf("unknown pattern AST node kind %d", ast.kind))
	}
}

// Compile parses a construction pattern and converts it into
// a graph with a single START and END node. In case of invalid
// syntax, merror.PatternSyntaxError is returned.
func Compile(src string) (*Pattern, error) {
	if strings.TrimSpace(src) == "" {
		return nil, syntaxErr(src, 0, "empty pattern")
	}
	items, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, items: items}
	ast, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if rest := p.peek(); rest.kind != tokEOF {
		switch rest.kind {
		case tokRParen:
			return nil, syntaxErr(src, rest.pos, "unbalanced ')'")
		case tokRBrack:
			return nil, syntaxErr(src, rest.pos, "unbalanced ']'")
		default:
			return nil, syntaxErr(src, rest.pos, "unexpected trailing input")
		}
	}

	b := &graphBuilder{seen: make(map[[2]int]bool)}
	start := b.addNode(Node{Type: NodeStart})
	frag := b.build(ast)
	end := b.addNode(Node{Type: NodeEnd})
	b.connect([]endpoint{{node: start}}, frag.entries)
	b.connect(frag.exits, []endpoint{{node: end}})
	if frag.nullable {
		b.addEdge(Edge{From: start, To: end, Bypass: true})
	}
	ans := NewPattern(src, b.nodes, b.edges)
	ans.notes = p.notes
	return ans, nil
}

// MustCompile is like Compile but panics on invalid syntax.
// It is intended for patterns defined in code.
func MustCompile(src string) *Pattern {
	ans, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return ans
}
