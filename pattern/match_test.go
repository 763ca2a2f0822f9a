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
	"strings"
	"testing"

	"cxgparse/ud"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkTokens creates tokens from "word/LEMMA/POS" items, lemma
// defaults to the lowercased word.
func mkTokens(src string) []ud.Token {
	items := strings.Fields(src)
	ans := make([]ud.Token, len(items))
	for i, item := range items {
		parts := strings.Split(item, "/")
		tok := ud.Token{ID: i + 1, Word: parts[0], Lemma: strings.ToLower(parts[0])}
		if len(parts) == 2 {
			tok.POS = parts[1]

		} else if len(parts) == 3 {
			tok.Lemma = parts[1]
			tok.POS = parts[2]
		}
		ans[i] = tok
	}
	return ans
}

func TestMatchLiterals(t *testing.T) {
	p := MustCompile("count on")
	matches := p.FindAll(mkTokens("You/PRON can/AUX Count/VERB on/ADP me/PRON"))
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Start)
	assert.Equal(t, 4, matches[0].End)
	assert.Equal(t, []string{"Count", "on"}, matches[0].Tokens)
}

func TestMatchLiteralByLemma(t *testing.T) {
	p := MustCompile("count on")
	matches := p.FindAll(mkTokens("counted/count/VERB on/ADP"))
	assert.Len(t, matches, 1)
}

func TestMatchNoMatchIsEmpty(t *testing.T) {
	p := MustCompile("{DET} {NOUN}")
	matches := p.FindAll(mkTokens("run/VERB fast/ADV"))
	assert.NotNil(t, matches)
	assert.Len(t, matches, 0)
}

func TestMatchSlotBinding(t *testing.T) {
	p := MustCompile("{DET} {ADJ:as=quality} {NOUN}")
	matches := p.FindAll(mkTokens("a/DET red/ADJ car/NOUN"))
	require.Len(t, matches, 1)
	assert.Equal(t, map[string]string{"det": "a", "quality": "red", "noun": "car"}, matches[0].Bindings)
}

func TestMatchSlotFeatureConstraint(t *testing.T) {
	p := MustCompile("{NOUN:Number=Plur}")
	toks := mkTokens("cat/NOUN cats/NOUN")
	toks[0].Morph = ud.Features{"Number": "Sing"}
	toks[1].Morph = ud.Features{"Number": "Plur"}
	matches := p.FindAll(toks)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Start)
}

func TestMatchAnyPOS(t *testing.T) {
	p := MustCompile("the {ANY}")
	matches := p.FindAll(mkTokens("the/DET end/NOUN"))
	assert.Len(t, matches, 1)
}

func TestMatchWildcardGreedyWithBacktracking(t *testing.T) {
	p := MustCompile("as * as")
	matches := p.FindAll(mkTokens("as/ADV tall/ADJ as/ADP a/DET tree/NOUN"))
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 3, matches[0].End)
}

func TestMatchWildcardGreedyTakesLongest(t *testing.T) {
	p := MustCompile("{DET} * {NOUN}")
	matches := p.FindAll(mkTokens("the/DET dog/NOUN and/CCONJ cat/NOUN ran/VERB"))
	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].End)
}

func TestMatchWildcardZeroTokens(t *testing.T) {
	p := MustCompile("{DET} * {NOUN}")
	matches := p.FindAll(mkTokens("the/DET dog/NOUN"))
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].End)
}

func TestMatchOptional(t *testing.T) {
	p := MustCompile("{DET} [{ADJ}] {NOUN}")
	matches := p.FindAll(mkTokens("the/DET cat/NOUN saw/VERB a/DET big/ADJ dog/NOUN"))
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"the", "cat"}, matches[0].Tokens)
	assert.Equal(t, []string{"a", "big", "dog"}, matches[1].Tokens)
	_, hasAdj := matches[0].Bindings["adj"]
	assert.False(t, hasAdj)
	assert.Equal(t, "big", matches[1].Bindings["adj"])
}

func TestMatchAlternationFirstBranchWins(t *testing.T) {
	p := MustCompile("({NOUN:as=x} | {ANY:as=x}) end")
	matches := p.FindAll(mkTokens("world/NOUN end/NOUN"))
	require.Len(t, matches, 1)
	assert.Equal(t, "world", matches[0].Bindings["x"])

	p = MustCompile("({ANY:as=x} {ANY:as=y} | {ANY:as=x}) stop")
	matches = p.FindAll(mkTokens("a/X stop/X"))
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].Bindings["x"])
	_, ok := matches[0].Bindings["y"]
	assert.False(t, ok, "bindings of a failed branch must not persist")
}

func TestMatchRepetition(t *testing.T) {
	p := MustCompile("{ADJ}+ {NOUN}")
	matches := p.FindAll(mkTokens("big/ADJ old/ADJ red/ADJ barn/NOUN"))
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 4, matches[0].End)
	assert.Equal(t, "red", matches[0].Bindings["adj"])
}

func TestMatchRepetitionStopsAtFailingIteration(t *testing.T) {
	p := MustCompile("(very)+ {ADJ}")
	matches := p.FindAll(mkTokens("very/ADV very/ADV good/ADJ very/ADV"))
	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].End)
}

func TestMatchNullableRepetitionTerminates(t *testing.T) {
	p := MustCompile("x [y]+ z")
	matches := p.FindAll(mkTokens("x/X z/X x/X y/X y/X z/X"))
	require.Len(t, matches, 2)
	assert.Equal(t, 2, matches[0].End)
	assert.Equal(t, 2, matches[1].Start)
	assert.Equal(t, 6, matches[1].End)
}

func TestMatchMultipleNonOverlapping(t *testing.T) {
	p := MustCompile("{ADJ} {NOUN}")
	matches := p.FindAll(mkTokens("red/ADJ car/NOUN and/CCONJ blue/ADJ bike/NOUN"))
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 3, matches[1].Start)
}

func TestMatchEmptyPatternPathNotAccepted(t *testing.T) {
	p := MustCompile("[a]")
	matches := p.FindAll(mkTokens("b/X c/X"))
	assert.Len(t, matches, 0)
}

func TestMatchStepBudget(t *testing.T) {
	p := MustCompile("* * * * x")
	toks := mkTokens(strings.Repeat("a/X ", 30))
	_, ok, err := p.MatchAt(toks, 0, 50)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStepBudgetExceeded)
	assert.Len(t, p.FindAllWithBudget(toks, 50), 0)
}
