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

package merror

import (
	"encoding/json"
	"fmt"
)

type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

type RecoveredError struct {
	Msg string
}

func (err RecoveredError) Error() string {
	return err.Msg
}

func (err RecoveredError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

type TimeoutError struct {
	Msg string
}

func (err TimeoutError) Error() string {
	return err.Msg
}

func (err TimeoutError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ---------------------------

// PatternSyntaxError reports malformed construction pattern
// text. Pos is a byte offset within Pattern.
type PatternSyntaxError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (err PatternSyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at %d in `%s`: %s", err.Pos, err.Pattern, err.Msg)
}

func (err PatternSyntaxError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pattern string `json:"pattern"`
		Pos     int    `json:"pos"`
		Msg     string `json:"message"`
	}{
		Pattern: err.Pattern,
		Pos:     err.Pos,
		Msg:     err.Msg,
	})
}

// ---------------------------

// NoRootTokenError means a lemma's parsed text contains no token
// attached to the artificial root. Pattern generation for the lemma
// cannot continue.
type NoRootTokenError struct {
	Lemma string
}

func (err NoRootTokenError) Error() string {
	return fmt.Sprintf("no root token found in parsed text of lemma `%s`", err.Lemma)
}

// ---------------------------

// UnknownRelationWarning is never returned as a failure. It is
// logged and the relation is treated as a lookup miss.
type UnknownRelationWarning struct {
	Relation string
	Lemma    string
	Token    int
}

func (err UnknownRelationWarning) Error() string {
	return fmt.Sprintf("unknown UD relation `%s`", err.Relation)
}

// ---------------------------

// MissingLexiconEntryWarning is logged when a token lemma cannot
// be found in the lexicon. The node then matches any lexicon entry.
type MissingLexiconEntryWarning struct {
	Lemma string
	Token int
}

func (err MissingLexiconEntryWarning) Error() string {
	return fmt.Sprintf("lemma `%s` not found in lexicon", err.Lemma)
}

// -----------------

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = fmt.Errorf("recovered panic: %w", tr)
	case string:
		err = fmt.Errorf("recovered panic: %s", tr)
	default:
		err = fmt.Errorf("recovered panic from an error of type %T", v)
	}
	return
}
