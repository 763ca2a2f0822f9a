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

package monitoring

import (
	"errors"
	"testing"
	"time"

	"cxgparse/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	jobs   []rdb.JobLog
	parses []ParseLog
}

func (rw *recordingWriter) Write(rec rdb.JobLog) {
	rw.jobs = append(rw.jobs, rec)
}

func (rw *recordingWriter) WriteParse(rec ParseLog) {
	rw.parses = append(rw.parses, rec)
}

func job(worker, fn string, begin time.Time, secs, items, failed int, err error) rdb.JobLog {
	return rdb.JobLog{
		WorkerID:  worker,
		Func:      fn,
		Begin:     begin,
		End:       begin.Add(time.Duration(secs) * time.Second),
		NumItems:  items,
		NumFailed: failed,
		Err:       err,
	}
}

func TestRegenerationLoads(t *testing.T) {
	wr := &recordingWriter{}
	c := NewCollector(wr, time.UTC)
	t0 := time.Now()
	c.Log(job("w1", rdb.FuncRegenerateLemma, t0, 2, 1, 0, nil))
	c.Log(job("w2", rdb.FuncRegenerateLemma, t0.Add(2*time.Second), 1, 1, 1, errors.New("failed")))
	c.Log(job("w1", rdb.FuncRegenerateAll, t0.Add(4*time.Second), 4, 200, 10, nil))

	assert.Len(t, wr.jobs, 3)

	total := c.TotalLoad()
	assert.Equal(t, 3, total.NumJobs)
	assert.Equal(t, 1, total.NumErrors)
	assert.Equal(t, 2, total.NumWorkers)
	assert.Equal(t, 202, total.NumItems)
	assert.Equal(t, 11, total.NumFailedItems)
	assert.InDelta(t, 7.0, total.TotalTimeSecs, 0.001)
	assert.Equal(t, 8*time.Second, total.TotalSpan())
	assert.InDelta(t, 7.0/8.0/2.0, total.AvgLoad(), 0.001)
	assert.InDelta(t, 202.0/7.0, total.ItemsPerSec(), 0.001)
	assert.InDelta(t, 11.0/202.0, total.FailureRate(), 0.001)

	recent, err := c.RecentLoad("")
	require.NoError(t, err)
	assert.Equal(t, 3, recent.NumJobs)
	assert.Equal(t, 2, recent.NumWorkers)
	assert.Equal(t, 202, recent.NumItems)

	w1, err := c.TotalWorkerLoad("w1")
	require.NoError(t, err)
	assert.Equal(t, 2, w1.NumJobs)
	assert.Equal(t, 201, w1.NumItems)
	w1r, err := c.RecentLoad("w1")
	require.NoError(t, err)
	assert.Equal(t, 2, w1r.NumJobs)
	assert.Equal(t, 1, w1r.NumWorkers)
	assert.InDelta(t, 6.0, w1r.TotalTimeSecs, 0.001)

	_, err = c.TotalWorkerLoad("w3")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	_, err = c.RecentLoad("w3")
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	funcs := c.FuncLoads()
	require.Len(t, funcs, 2)
	assert.Equal(t, 2, funcs[rdb.FuncRegenerateLemma].NumJobs)
	assert.Equal(t, 1, funcs[rdb.FuncRegenerateLemma].NumFailedItems)
	assert.Equal(t, 200, funcs[rdb.FuncRegenerateAll].NumItems)

	assert.Len(t, c.RecentRecords(), 3)
}

func TestParseThroughput(t *testing.T) {
	wr := &recordingWriter{}
	c := NewCollector(wr, time.UTC)
	t0 := time.Now()
	c.LogParse(ParseLog{Input: "text", NumSentences: 2, NumTokens: 12, Begin: t0, End: t0.Add(time.Second)})
	c.LogParse(ParseLog{Input: "sentences", NumSentences: 4, NumTokens: 20, Begin: t0, End: t0.Add(time.Second)})
	c.LogParse(ParseLog{Input: "conllu", Begin: t0, End: t0.Add(time.Second), Err: errors.New("invalid")})

	assert.Len(t, wr.parses, 3)
	total := c.TotalParseThroughput()
	assert.Equal(t, 3, total.NumRequests)
	assert.Equal(t, 1, total.NumFailed)
	assert.Equal(t, 6, total.NumSentences)
	assert.Equal(t, 32, total.NumTokens)
	assert.InDelta(t, 3.0, total.SentencesPerSec(), 0.001)
	assert.InDelta(t, 16.0, total.TokensPerSec(), 0.001)
	assert.Equal(t, total, c.RecentParseThroughput())
}

func TestEmptyStats(t *testing.T) {
	assert.Equal(t, 0.0, RegenerationLoad{}.AvgLoad())
	assert.Equal(t, 0.0, RegenerationLoad{}.ItemsPerSec())
	assert.Equal(t, 0.0, RegenerationLoad{}.FailureRate())
	assert.Equal(t, 0.0, ParseThroughput{}.SentencesPerSec())
}

func TestCleanOldRecords(t *testing.T) {
	wl := WorkersLoad{
		"old": {LastUpdate: time.Now().Add(-48 * time.Hour)},
		"new": {LastUpdate: time.Now()},
	}
	wl.cleanOldRecords()
	assert.Len(t, wl, 1)
	_, ok := wl["new"]
	assert.True(t, ok)
}
