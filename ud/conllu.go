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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	conlluNumFields = 10
	conlluFieldSep  = "\t"
)

func parseConlluInt(value string) (int, error) {
	if value == EmptyField {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseConlluString(value string) string {
	if value == EmptyField {
		return ""
	}
	return value
}

// ParseConlluLine decodes a single CoNLL-U word line. The second
// return value is false for multiword token ranges (1-2) and empty
// nodes (8.1) which are not part of the dependency tree.
func ParseConlluLine(line string) (Token, bool, error) {
	fields := strings.Split(line, conlluFieldSep)
	if len(fields) != conlluNumFields {
		return Token{}, false, fmt.Errorf(
			"invalid number of CoNLL-U fields: %d (expected %d)", len(fields), conlluNumFields)
	}
	if strings.ContainsAny(fields[0], "-.") {
		return Token{}, false, nil
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Token{}, false, fmt.Errorf("invalid token id `%s`: %w", fields[0], err)
	}
	head, err := parseConlluInt(fields[6])
	if err != nil {
		return Token{}, false, fmt.Errorf("invalid head `%s` of token %d: %w", fields[6], id, err)
	}
	return Token{
		ID:     id,
		Word:   fields[1],
		Lemma:  parseConlluString(fields[2]),
		POS:    parseConlluString(fields[3]),
		Morph:  ParseFeatures(fields[5]),
		Head:   head,
		Deprel: parseConlluString(fields[7]),
	}, true, nil
}

// ReadConllu reads all the sentences from a CoNLL-U source.
// Comment lines are skipped, sentences are separated by an empty line.
func ReadConllu(src io.Reader) ([]Sentence, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ans := make([]Sentence, 0, 10)
	var curr Sentence
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(curr) > 0 {
				ans = append(ans, curr)
				curr = nil
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		tok, ok, err := ParseConlluLine(line)
		if err != nil {
			return ans, fmt.Errorf("failed to parse CoNLL-U line %d: %w", lineNum, err)
		}
		if ok {
			curr = append(curr, tok)
		}
	}
	if err := scanner.Err(); err != nil {
		return ans, fmt.Errorf("failed to read CoNLL-U data: %w", err)
	}
	if len(curr) > 0 {
		ans = append(ans, curr)
	}
	return ans, nil
}
