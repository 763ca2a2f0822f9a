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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeatures(t *testing.T) {
	f := ParseFeatures("Gender=Masc|Number=Sing")
	assert.Equal(t, Features{"Gender": "Masc", "Number": "Sing"}, f)
}

func TestParseFeaturesEmpty(t *testing.T) {
	assert.Len(t, ParseFeatures("_"), 0)
	assert.Len(t, ParseFeatures(""), 0)
}

func TestParseFeaturesIgnoresInvalidItems(t *testing.T) {
	f := ParseFeatures("Case=Nom|foo|=x")
	assert.Equal(t, Features{"Case": "Nom"}, f)
}

func TestFeaturesString(t *testing.T) {
	f := Features{"Number": "Sing", "Gender": "Masc"}
	assert.Equal(t, "Gender=Masc|Number=Sing", f.String())
	assert.Equal(t, "_", Features{}.String())
}

func TestTokenUnmarshalMorphAsString(t *testing.T) {
	var tok Token
	err := json.Unmarshal(
		[]byte(`{"id": 2, "word": "cat", "lemma": "cat", "pos": "NOUN", "morph": "Number=Sing", "head": 3, "deprel": "nsubj"}`),
		&tok,
	)
	assert.NoError(t, err)
	assert.Equal(t, "Sing", tok.Morph.Get("Number"))
	assert.Equal(t, 3, tok.Head)
}

func TestTokenUnmarshalMorphAsMap(t *testing.T) {
	var tok Token
	err := json.Unmarshal(
		[]byte(`{"id": 1, "word": "sat", "morph": {"VerbForm": "Fin"}}`),
		&tok,
	)
	assert.NoError(t, err)
	assert.True(t, tok.Morph.Has("VerbForm", "Fin"))
}

func TestTokenUnmarshalMorphInvalid(t *testing.T) {
	var tok Token
	err := json.Unmarshal([]byte(`{"id": 1, "morph": 42}`), &tok)
	assert.Error(t, err)
}

func TestBaseRelation(t *testing.T) {
	assert.Equal(t, "obl", BaseRelation("obl:tmod"))
	assert.Equal(t, "nsubj", BaseRelation("nsubj"))
	assert.Equal(t, "acl", BaseRelation("ACL:relcl"))
	assert.Equal(t, "relcl", RelationSubtype("acl:relcl"))
	assert.Equal(t, "", RelationSubtype("acl"))
}

func TestSentenceValidate(t *testing.T) {
	s := Sentence{
		{ID: 1, Word: "cats", Head: 2, Deprel: "nsubj"},
		{ID: 2, Word: "sleep", Head: 0, Deprel: "root"},
	}
	assert.NoError(t, s.Validate())

	s[1].Head = 3
	assert.Error(t, s.Validate())

	assert.Error(t, Sentence{}.Validate())
	assert.Error(t, Sentence{{ID: 2}}.Validate())
	assert.Error(t, Sentence{{ID: 1, Head: 1}}.Validate())
}

func TestSentenceValidateRootless(t *testing.T) {
	s := Sentence{
		{ID: 1, Word: "a", Head: 2, Deprel: "dep"},
		{ID: 2, Word: "b", Head: 1, Deprel: "dep"},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no root")
}

func TestSentenceValidateCycle(t *testing.T) {
	s := Sentence{
		{ID: 1, Word: "a", Head: 0, Deprel: "root"},
		{ID: 2, Word: "b", Head: 3, Deprel: "dep"},
		{ID: 3, Word: "c", Head: 4, Deprel: "dep"},
		{ID: 4, Word: "d", Head: 2, Deprel: "dep"},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	s[3].Head = 1
	assert.NoError(t, s.Validate())
}

func TestSentenceRootAndChildren(t *testing.T) {
	s := Sentence{
		{ID: 1, Word: "the", Head: 2, Deprel: "det"},
		{ID: 2, Word: "cat", Head: 3, Deprel: "nsubj"},
		{ID: 3, Word: "sat", Head: 0, Deprel: "root"},
	}
	root, ok := s.Root()
	assert.True(t, ok)
	assert.Equal(t, 3, root.ID)
	ch := s.Children()
	assert.Equal(t, []int{2}, ch[3])
	assert.Equal(t, []int{1}, ch[2])
	assert.Equal(t, []int{3}, ch[0])
	assert.Equal(t, "the cat sat", s.Text())
}

func TestReadConllu(t *testing.T) {
	src := "# sent_id = 1\n" +
		"1\tThe\tthe\tDET\tDT\tDefinite=Def|PronType=Art\t2\tdet\t_\t_\n" +
		"2\tcat\tcat\tNOUN\tNN\tNumber=Sing\t3\tnsubj\t_\t_\n" +
		"3\tsat\tsit\tVERB\tVBD\tMood=Ind|Tense=Past|VerbForm=Fin\t0\troot\t_\t_\n" +
		"\n" +
		"1-2\tdon't\t_\t_\t_\t_\t_\t_\t_\t_\n" +
		"1\tdo\tdo\tAUX\t_\t_\t3\taux\t_\t_\n" +
		"2\tn't\tnot\tPART\t_\t_\t3\tadvmod\t_\t_\n" +
		"3\tgo\tgo\tVERB\t_\tVerbForm=Inf\t0\troot\t_\t_\n"
	sents, err := ReadConllu(strings.NewReader(src))
	assert.NoError(t, err)
	assert.Len(t, sents, 2)
	assert.Len(t, sents[0], 3)
	assert.Equal(t, "sit", sents[0][2].Lemma)
	assert.Equal(t, "Fin", sents[0][2].Morph.Get("VerbForm"))
	assert.Len(t, sents[1], 3)
	assert.Equal(t, "not", sents[1][1].Lemma)
}

func TestReadConlluInvalidLine(t *testing.T) {
	_, err := ReadConllu(strings.NewReader("1\tfoo\tbar\n"))
	assert.Error(t, err)
}
