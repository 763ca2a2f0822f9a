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

package rdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeRegenerate    ResultType = "regenerate"
	ResultTypeRegenerateAll ResultType = "regenerateAll"
	ResultTypeError         ResultType = "error"
)

type ResultType string // @name ResultType

func (rt ResultType) String() string {
	return string(rt)
}

// ----------------

// WorkerResult is a serialized result of a single job.
// The Value is kept raw so the caller can decode it into
// a type matching ResultType.
type WorkerResult struct {
	ID           string          `json:"id"`
	WorkerID     string          `json:"workerId"`
	Func         string          `json:"func"`
	ResultType   ResultType      `json:"resultType"`
	Value        json.RawMessage `json:"value,omitempty"`
	Error        string          `json:"error,omitempty"`
	HasUserError bool            `json:"hasUserError,omitempty"`
	ProcBegin    time.Time       `json:"procBegin"`
	ProcEnd      time.Time       `json:"procEnd"`
}

func (wr *WorkerResult) AttachValue(rt ResultType, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to attach result value: %w", err)
	}
	wr.ResultType = rt
	wr.Value = data
	return nil
}

func (wr *WorkerResult) AttachError(err error, isUserError bool) {
	wr.ResultType = ResultTypeError
	wr.Error = err.Error()
	wr.HasUserError = isUserError
}

func (wr *WorkerResult) Err() error {
	if wr.Error != "" {
		return fmt.Errorf("%s", wr.Error)
	}
	return nil
}

// ItemCounts returns the number of lexicon items the job
// processed and how many of them failed.
func (wr *WorkerResult) ItemCounts() (total, failed int) {
	switch wr.ResultType {
	case ResultTypeRegenerate:
		return 1, 0
	case ResultTypeRegenerateAll:
		var report struct {
			Total  int `json:"total"`
			Failed int `json:"failed"`
		}
		if err := sonic.Unmarshal(wr.Value, &report); err != nil {
			return 0, 0
		}
		return report.Total, report.Failed
	case ResultTypeError:
		if wr.Func == FuncRegenerateLemma {
			return 1, 1
		}
	}
	return 0, 0
}

func (wr *WorkerResult) DecodeValue(v any) error {
	if wr.ResultType == ResultTypeError {
		return wr.Err()
	}
	if err := sonic.Unmarshal(wr.Value, v); err != nil {
		return fmt.Errorf("failed to decode result value: %w", err)
	}
	return nil
}

// ----------------

// JobLog describes a finished job for monitoring purposes.
// NumItems and NumFailed count regenerated lexicon entries.
type JobLog struct {
	WorkerID  string
	Func      string
	Begin     time.Time
	End       time.Time
	NumItems  int
	NumFailed int
	Err       error
}

func (jl JobLog) TimeSpent() time.Duration {
	return jl.End.Sub(jl.Begin)
}

func (jl JobLog) MarshalJSON() ([]byte, error) {
	var errMsg string
	if jl.Err != nil {
		errMsg = jl.Err.Error()
	}
	return sonic.Marshal(
		struct {
			WorkerID  string    `json:"workerId"`
			Func      string    `json:"func"`
			Begin     time.Time `json:"begin"`
			End       time.Time `json:"end"`
			TimeSpent float64   `json:"timeSpentSecs"`
			NumItems  int       `json:"numItems"`
			NumFailed int       `json:"numFailed"`
			Err       string    `json:"error,omitempty"`
		}{
			WorkerID:  jl.WorkerID,
			Func:      jl.Func,
			Begin:     jl.Begin,
			End:       jl.End,
			TimeSpent: jl.TimeSpent().Seconds(),
			NumItems:  jl.NumItems,
			NumFailed: jl.NumFailed,
			Err:       errMsg,
		},
	)
}
