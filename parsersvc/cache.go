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

package parsersvc

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cxgparse/ud"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// Processor produces CoNLL-U output for a raw text.
type Processor interface {
	Process(ctx context.Context, text string) (string, error)
}

// CachedClient stores parser responses in files named by
// a hash of the model and the text.
type CachedClient struct {
	proc     Processor
	model    string
	cacheDir string
}

func (cc *CachedClient) cachePath(text string) string {
	hashKey := sha1.Sum([]byte(cc.model + "\n" + text))
	return filepath.Join(cc.cacheDir, hex.EncodeToString(hashKey[:])+".conllu")
}

func (cc *CachedClient) Process(ctx context.Context, text string) (string, error) {
	path := cc.cachePath(text)
	isf, _ := fs.IsFile(path)
	if fs.PathExists(path) && isf {
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		log.Err(err).Msgf("Error while reading cache file %s", path)
	}
	ans, err := cc.proc.Process(ctx, text)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(ans), 0644); err != nil {
		log.Err(err).Msgf("Error while writing cache file %s", path)
	}
	return ans, nil
}

func (cc *CachedClient) Parse(ctx context.Context, text string) ([]ud.Sentence, error) {
	conllu, err := cc.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	return ud.ReadConllu(strings.NewReader(conllu))
}

func NewCachedClient(proc Processor, model, cacheDir string) (*CachedClient, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parser cache directory: %w", err)
	}
	return &CachedClient{proc: proc, model: model, cacheDir: cacheDir}, nil
}
