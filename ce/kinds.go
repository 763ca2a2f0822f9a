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

package ce

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// PhrasalKind is a word/phrase level constituent element label.
type PhrasalKind int

const (
	PhrasalHead PhrasalKind = iota
	PhrasalModifier
	PhrasalAdjunct
	PhrasalAdposition
	PhrasalLinker
	PhrasalClassifier
	PhrasalIndex
	PhrasalConjunction
)

var phrasalNames = []string{
	"Head", "Modifier", "Adjunct", "Adposition", "Linker", "Classifier", "Index", "Conjunction",
}

func (k PhrasalKind) String() string {
	if int(k) >= 0 && int(k) < len(phrasalNames) {
		return phrasalNames[k]
	}
	return fmt.Sprintf("PhrasalKind(%d)", int(k))
}

func (k PhrasalKind) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(k.String())
}

// ClausalKind is a clause level constituent element label.
type ClausalKind int

const (
	ClausalPredicate ClausalKind = iota
	ClausalArgument
	ClausalModifier
	ClausalAdjunct
	ClausalConnector
)

var clausalNames = []string{"Predicate", "Argument", "Modifier", "Adjunct", "Connector"}

func (k ClausalKind) String() string {
	if int(k) >= 0 && int(k) < len(clausalNames) {
		return clausalNames[k]
	}
	return fmt.Sprintf("ClausalKind(%d)", int(k))
}

func (k ClausalKind) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(k.String())
}

// SententialKind classifies clauses at the sentence level.
type SententialKind int

const (
	SententialMain SententialKind = iota
	SententialCoordinate
	SententialRelative
	SententialComplement
	SententialAdverbial
)

var sententialNames = []string{"Main", "Coordinate", "Relative", "Complement", "Adverbial"}

func (k SententialKind) String() string {
	if int(k) >= 0 && int(k) < len(sententialNames) {
		return sententialNames[k]
	}
	return fmt.Sprintf("SententialKind(%d)", int(k))
}

func (k SententialKind) IsSubordinate() bool {
	return k == SententialRelative || k == SententialComplement || k == SententialAdverbial
}

func (k SententialKind) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(k.String())
}

// NodeState tracks a clausal node during folding.
// States only move forward.
type NodeState int

const (
	StateUnassigned NodeState = iota
	StateInClause
	StateClassified
)

func (s NodeState) String() string {
	switch s {
	case StateUnassigned:
		return "UNASSIGNED"
	case StateInClause:
		return "IN-CLAUSE"
	case StateClassified:
		return "CLASSIFIED"
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}
