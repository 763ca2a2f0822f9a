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

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cxgparse/monitoring"
	"cxgparse/rdb"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	stats := monitoring.NewCollector(nil, time.UTC)
	t0 := time.Now()
	stats.Log(rdb.JobLog{
		WorkerID: "w1", Func: rdb.FuncRegenerateAll, Begin: t0, End: t0.Add(time.Second),
		NumItems: 50, NumFailed: 2,
	})
	stats.LogParse(monitoring.ParseLog{
		Input: "text", NumSentences: 3, NumTokens: 30, Begin: t0, End: t0.Add(2 * time.Second),
	})
	actions := NewActions(stats)
	engine := gin.New()
	engine.GET("/monitoring/worker-load", actions.WorkersLoad)
	engine.GET("/monitoring/worker-load/:workerId", actions.SingleWorkerLoad)
	engine.GET("/monitoring/recent-records", actions.RecentRecords)
	engine.GET("/monitoring/funcs", actions.FuncsLoad)
	engine.GET("/monitoring/parse-throughput", actions.ParseThroughput)
	return engine
}

func TestWorkersLoad(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/worker-load?span=total", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "total", resp["span"])
	load := resp["load"].(map[string]any)
	assert.Equal(t, 1.0, load["numJobs"])
	assert.Equal(t, 50.0, load["numItems"])
	assert.Equal(t, 2.0, load["numFailedItems"])
}

func TestWorkersLoadInvalidSpan(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/worker-load?span=week", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSingleWorkerLoad(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/worker-load/w1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/worker-load/w9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecentRecords(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/recent-records", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp []map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "w1", resp[0]["workerId"])
}

func TestFuncsLoad(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/funcs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp[rdb.FuncRegenerateAll]["numItems"])
}

func TestParseThroughput(t *testing.T) {
	engine := newTestEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/parse-throughput?span=total", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	stats := resp["stats"].(map[string]any)
	assert.Equal(t, 3.0, stats["numSentences"])
	assert.InDelta(t, 1.5, resp["sentencesPerSec"], 0.001)
	assert.InDelta(t, 15.0, resp["tokensPerSec"], 0.001)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/parse-throughput?span=year", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
