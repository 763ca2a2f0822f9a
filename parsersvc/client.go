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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cxgparse/ud"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	dfltIdleConnTimeoutSecs = 60
	dfltRequestTimeoutSecs  = 30
)

// Conf configures access to a UDPipe-compatible REST service.
type Conf struct {
	URL                 string `json:"url"`
	Model               string `json:"model"`
	IdleConnTimeoutSecs int    `json:"idleConnTimeoutSecs"`
	RequestTimeoutSecs  int    `json:"requestTimeoutSecs"`

	// CacheDir, if set, enables caching of parser responses
	CacheDir string `json:"cacheDir"`
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf == nil {
		return fmt.Errorf("missing parser service configuration")
	}
	if conf.URL == "" {
		return fmt.Errorf("missing parser service URL")
	}
	if conf.IdleConnTimeoutSecs == 0 {
		conf.IdleConnTimeoutSecs = dfltIdleConnTimeoutSecs
		log.Warn().
			Int("value", conf.IdleConnTimeoutSecs).
			Msg("parser service idleConnTimeoutSecs not set, using default")
	}
	if conf.RequestTimeoutSecs == 0 {
		conf.RequestTimeoutSecs = dfltRequestTimeoutSecs
		log.Warn().
			Int("value", conf.RequestTimeoutSecs).
			Msg("parser service requestTimeoutSecs not set, using default")
	}
	return nil
}

type processResponse struct {
	Model  string `json:"model"`
	Result string `json:"result"`
}

// Client calls the external dependency parser. There is no retry,
// all failures are returned to the caller.
type Client struct {
	conf   *Conf
	client *http.Client
}

// Process sends a raw text to the parser and returns
// the parsed text in the CoNLL-U format. The text is sent
// as a form body so its length is not limited by the URL.
func (c *Client) Process(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("data", text)
	form.Set("tokenizer", "")
	form.Set("tagger", "")
	form.Set("parser", "")
	if c.conf.Model != "" {
		form.Set("model", c.conf.Model)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(c.conf.URL, "/")+"/process",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create parser request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	t0 := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call parser service: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read parser response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"parser service responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var ans processResponse
	if err := sonic.Unmarshal(body, &ans); err != nil {
		return "", fmt.Errorf("failed to decode parser response: %w", err)
	}
	log.Debug().
		Str("model", ans.Model).
		Float64("procTime", time.Since(t0).Seconds()).
		Msg("text parsed by external service")
	return ans.Result, nil
}

// Parse implements lexicon.Parser
func (c *Client) Parse(ctx context.Context, text string) ([]ud.Sentence, error) {
	conllu, err := c.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	return ud.ReadConllu(strings.NewReader(conllu))
}

func NewClient(conf *Conf) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = httpclient.TransportMaxIdleConns
	transport.MaxConnsPerHost = httpclient.TransportMaxConnsPerHost
	transport.MaxIdleConnsPerHost = httpclient.TransportMaxIdleConnsPerHost
	transport.IdleConnTimeout = time.Duration(conf.IdleConnTimeoutSecs) * time.Second
	return &Client{
		conf: conf,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Timeout:   time.Duration(conf.RequestTimeoutSecs) * time.Second,
			Transport: transport,
		},
	}
}

// Parser is a source of dependency parses.
type Parser interface {
	Parse(ctx context.Context, text string) ([]ud.Sentence, error)
}

// NewFromConf creates a client, wrapped in a file cache
// if the cache directory is configured.
func NewFromConf(conf *Conf) (Parser, error) {
	client := NewClient(conf)
	if conf.CacheDir == "" {
		return client, nil
	}
	return NewCachedClient(client, conf.Model, conf.CacheDir)
}
