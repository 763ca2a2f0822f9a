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
	"time"

	"cxgparse/rdb"

	"github.com/bytedance/sonic"
)

// StatusWriter stores regeneration and parse records
// to a persistent storage
type StatusWriter interface {
	Write(rec rdb.JobLog)
	WriteParse(rec ParseLog)
}

type NullStatusWriter struct{}

func (n *NullStatusWriter) Write(rec rdb.JobLog) {}

func (n *NullStatusWriter) WriteParse(rec ParseLog) {}

// ---

// ParseLog describes a single parse request served by the API.
// Input is one of "text", "conllu", "sentences".
type ParseLog struct {
	Input        string
	NumSentences int
	NumTokens    int
	Begin        time.Time
	End          time.Time
	Err          error
}

func (pl ParseLog) TimeSpent() time.Duration {
	return pl.End.Sub(pl.Begin)
}

// ---

// RegenerationLoad aggregates lexicon pattern regeneration jobs.
type RegenerationLoad struct {
	NumJobs        int
	NumErrors      int
	NumItems       int
	NumFailedItems int
	TotalTimeSecs  float64
	FirstUpdate    time.Time
	LastUpdate     time.Time
	NumWorkers     int
}

func (rl *RegenerationLoad) add(rec rdb.JobLog) {
	if rl.FirstUpdate.IsZero() || rec.Begin.Before(rl.FirstUpdate) {
		rl.FirstUpdate = rec.Begin
	}
	if rec.End.After(rl.LastUpdate) {
		rl.LastUpdate = rec.End
	}
	rl.NumJobs++
	if rec.Err != nil {
		rl.NumErrors++
	}
	rl.NumItems += rec.NumItems
	rl.NumFailedItems += rec.NumFailed
	rl.TotalTimeSecs += rec.TimeSpent().Seconds()
}

// TotalSpan returns time span covered by the load info
func (rl RegenerationLoad) TotalSpan() time.Duration {
	return rl.LastUpdate.Sub(rl.FirstUpdate)
}

// AvgLoad is the ratio of busy time to the covered time span
// per worker.
func (rl RegenerationLoad) AvgLoad() float64 {
	span := rl.TotalSpan().Seconds()
	if rl.TotalTimeSecs == 0 || span <= 0 || rl.NumWorkers == 0 {
		return 0
	}
	return rl.TotalTimeSecs / span / float64(rl.NumWorkers)
}

// ItemsPerSec is the number of regenerated entries per busy second
func (rl RegenerationLoad) ItemsPerSec() float64 {
	if rl.TotalTimeSecs == 0 {
		return 0
	}
	return float64(rl.NumItems) / rl.TotalTimeSecs
}

func (rl RegenerationLoad) FailureRate() float64 {
	if rl.NumItems == 0 {
		return 0
	}
	return float64(rl.NumFailedItems) / float64(rl.NumItems)
}

func (rl RegenerationLoad) MarshalJSON() ([]byte, error) {
	var t0, t1 *time.Time
	if !rl.FirstUpdate.IsZero() {
		t0 = &rl.FirstUpdate
	}
	if !rl.LastUpdate.IsZero() {
		t1 = &rl.LastUpdate
	}
	return sonic.Marshal(
		struct {
			NumJobs        int        `json:"numJobs"`
			NumErrors      int        `json:"numErrors"`
			NumItems       int        `json:"numItems"`
			NumFailedItems int        `json:"numFailedItems"`
			TotalTimeSecs  float64    `json:"totalTimeSecs"`
			FirstUpdate    *time.Time `json:"firstUpdate,omitempty"`
			LastUpdate     *time.Time `json:"lastUpdate,omitempty"`
			NumWorkers     int        `json:"numWorkers"`
			AvgLoad        float64    `json:"avgLoad"`
			ItemsPerSec    float64    `json:"itemsPerSec"`
			FailureRate    float64    `json:"failureRate"`
		}{
			NumJobs:        rl.NumJobs,
			NumErrors:      rl.NumErrors,
			NumItems:       rl.NumItems,
			NumFailedItems: rl.NumFailedItems,
			TotalTimeSecs:  rl.TotalTimeSecs,
			FirstUpdate:    t0,
			LastUpdate:     t1,
			NumWorkers:     rl.NumWorkers,
			AvgLoad:        rl.AvgLoad(),
			ItemsPerSec:    rl.ItemsPerSec(),
			FailureRate:    rl.FailureRate(),
		},
	)
}

// WorkersLoad maps worker IDs to their regeneration loads
type WorkersLoad map[string]RegenerationLoad

// SumLoad aggregates loads of all the workers.
func (wl WorkersLoad) SumLoad(tz *time.Location) RegenerationLoad {
	var ans RegenerationLoad
	for _, v := range wl {
		ans.NumJobs += v.NumJobs
		ans.NumErrors += v.NumErrors
		ans.NumItems += v.NumItems
		ans.NumFailedItems += v.NumFailedItems
		ans.TotalTimeSecs += v.TotalTimeSecs
		if ans.FirstUpdate.IsZero() || v.FirstUpdate.Before(ans.FirstUpdate) {
			ans.FirstUpdate = v.FirstUpdate
		}
		if v.LastUpdate.After(ans.LastUpdate) {
			ans.LastUpdate = v.LastUpdate
		}
		ans.NumWorkers++
	}
	if tz != nil {
		ans.FirstUpdate = ans.FirstUpdate.In(tz)
		ans.LastUpdate = ans.LastUpdate.In(tz)
	}
	return ans
}

// cleanOldRecords removes workers not reporting for StaleWorkerLoadTTL
func (wl WorkersLoad) cleanOldRecords() {
	now := time.Now()
	for k, v := range wl {
		if now.Sub(v.LastUpdate) > StaleWorkerLoadTTL {
			delete(wl, k)
		}
	}
}

// ---

// ParseThroughput aggregates parse requests.
type ParseThroughput struct {
	NumRequests   int     `json:"numRequests"`
	NumFailed     int     `json:"numFailed"`
	NumSentences  int     `json:"numSentences"`
	NumTokens     int     `json:"numTokens"`
	TotalTimeSecs float64 `json:"totalTimeSecs"`
}

func (pt *ParseThroughput) add(rec ParseLog) {
	pt.NumRequests++
	if rec.Err != nil {
		pt.NumFailed++
		return
	}
	pt.NumSentences += rec.NumSentences
	pt.NumTokens += rec.NumTokens
	pt.TotalTimeSecs += rec.TimeSpent().Seconds()
}

// SentencesPerSec counts successfully parsed sentences only
func (pt ParseThroughput) SentencesPerSec() float64 {
	if pt.TotalTimeSecs == 0 {
		return 0
	}
	return float64(pt.NumSentences) / pt.TotalTimeSecs
}

func (pt ParseThroughput) TokensPerSec() float64 {
	if pt.TotalTimeSecs == 0 {
		return 0
	}
	return float64(pt.NumTokens) / pt.TotalTimeSecs
}
