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

package transcription

import (
	"cxgparse/ce"
	"cxgparse/ud"
)

// LexicalFeatures lists morphological features copied
// into the lexical feature bundle of phrasal nodes.
var LexicalFeatures = []string{
	"Case", "Number", "Gender", "Person", "Tense", "Mood", "VerbForm", "Voice",
	"Aspect", "Definite", "Degree", "PronType", "Polarity", "Poss", "NumType",
}

var posKinds = map[string]ce.PhrasalKind{
	"NOUN":  ce.PhrasalHead,
	"PROPN": ce.PhrasalHead,
	"PRON":  ce.PhrasalHead,
	"VERB":  ce.PhrasalHead,
	"ADJ":   ce.PhrasalModifier,
	"AUX":   ce.PhrasalModifier,
	"ADV":   ce.PhrasalAdjunct,
	"ADP":   ce.PhrasalAdposition,
	"CCONJ": ce.PhrasalConjunction,
	"SCONJ": ce.PhrasalLinker,
	"PART":  ce.PhrasalLinker,
	"DET":   ce.PhrasalIndex,
	"NUM":   ce.PhrasalClassifier,
}

// PhrasalKindOf assigns the phrasal constituent kind by POS,
// refined by morphology and the dependency relation.
func PhrasalKindOf(pos string, morph ud.Features, deprel string) ce.PhrasalKind {
	rel := ud.BaseRelation(deprel)
	switch {
	case pos == "VERB" && morph.Get("VerbForm") == "Part" && rel == "amod":
		return ce.PhrasalModifier
	case ud.IsNominal(pos) && pos != "NUM" && rel == "nmod" && morph.Get("Case") == "Gen":
		return ce.PhrasalModifier
	case morph.Get("PronType") == "Rel":
		return ce.PhrasalLinker
	case pos == "NUM" && morph.Get("NumType") == "Ord":
		return ce.PhrasalModifier
	case pos == "DET" && morph.Get("Poss") == "Yes":
		return ce.PhrasalModifier
	}
	if k, ok := posKinds[pos]; ok {
		return k
	}
	return ce.PhrasalAdjunct
}

// LexicalBundle picks whitelisted features.
func LexicalBundle(morph ud.Features) ud.Features {
	ans := make(ud.Features)
	for _, f := range LexicalFeatures {
		if v, ok := morph[f]; ok {
			ans[f] = v
		}
	}
	return ans
}

func singleNode(tok ud.Token) ce.PhrasalNode {
	return ce.PhrasalNode{
		Kind:       PhrasalKindOf(tok.POS, tok.Morph, tok.Deprel),
		Word:       tok.Word,
		Lemma:      tok.Lemma,
		POS:        tok.POS,
		Features:   LexicalBundle(tok.Morph),
		Derived:    make(map[string]string),
		Index:      tok.ID,
		Components: []int{tok.ID},
		Activation: 1,
		Threshold:  1,
		Head:       tok.Head,
		Deprel:     tok.Deprel,
	}
}
