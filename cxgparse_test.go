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

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cxgparse/batch"
	"cxgparse/cnf"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(conf *cnf.Conf) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware(conf))
	protected := engine.Group("/tools").Use(AuthRequired(conf))
	protected.POST("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})
	engine.GET("/openapi", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "{}")
	})
	return engine
}

func TestAuthRequired(t *testing.T) {
	conf := &cnf.Conf{AuthHeaderName: "X-Api-Key", AuthTokens: []string{"secret"}}
	engine := newTestEngine(conf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/ping", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/tools/ping", nil)
	req.Header.Set("X-Api-Key", "secret")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestAuthDisabledWithoutHeaderName(t *testing.T) {
	engine := newTestEngine(&cnf.Conf{})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tools/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	conf := &cnf.Conf{CorsAllowedOrigins: []string{"https://example.org"}}
	engine := newTestEngine(conf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/tools/ping", nil)
	req.Header.Set("Origin", "https://example.org")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/openapi", nil)
	req.Header.Set("Origin", "https://elsewhere.org")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCleanVersionInfo(t *testing.T) {
	assert.Equal(t, "1.2.3", cleanVersionInfo("'v1.2.3'"))
	assert.Equal(t, "", cleanVersionInfo(""))
}

func TestGetEnvKeepsEqualSigns(t *testing.T) {
	t.Setenv("CXGPARSE_TEST_VAR", "a=b")
	assert.Equal(t, "a=b", getEnv("CXGPARSE_TEST_VAR"))
	assert.Equal(t, "", getEnv("CXGPARSE_UNDEFINED_TEST_VAR"))
}

func TestJSONLinesWriter(t *testing.T) {
	var buf bytes.Buffer
	out := newJSONLinesWriter(&buf)
	require.NoError(t, out.Write(batch.Report{Total: 2, Succeeded: 1, Failed: 1}))
	require.NoError(t, out.Write(map[string]int{"x": 1}))
	require.NoError(t, out.Flush())
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"total":2`)
	assert.Equal(t, `{"x":1}`, string(lines[1]))
}

func TestLoadConstructionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constructions.yaml")
	data := `
constructions:
  - name: det-noun
    pattern: "{DET} {NOUN}"
  - name: disabled
    pattern: "{VERB}"
    enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	inv, err := loadConstructions(context.Background(), cnf.ConstructionsConf{File: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"det-noun"}, inv.Names())
}

func TestLoadConstructionsMissingFile(t *testing.T) {
	_, err := loadConstructions(
		context.Background(),
		cnf.ConstructionsConf{File: filepath.Join(t.TempDir(), "nope.yaml")},
		nil,
	)
	assert.Error(t, err)
}
