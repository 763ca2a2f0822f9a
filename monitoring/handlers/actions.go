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
	"errors"
	"fmt"
	"net/http"

	"cxgparse/monitoring"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type timeSpan string

func (ts timeSpan) Validate() error {
	if ts != spanTypeRecent && ts != spanTypeTotal {
		return fmt.Errorf("unknown time span `%s`", ts)
	}
	return nil
}

const (
	spanTypeRecent timeSpan = "recent"
	spanTypeTotal  timeSpan = "total"
)

type loadResponse struct {
	Span     timeSpan                    `json:"span"`
	WorkerID string                      `json:"workerId,omitempty"`
	Load     monitoring.RegenerationLoad `json:"load"`
}

type parseThroughputResponse struct {
	Span            timeSpan                   `json:"span"`
	Stats           monitoring.ParseThroughput `json:"stats"`
	SentencesPerSec float64                    `json:"sentencesPerSec"`
	TokensPerSec    float64                    `json:"tokensPerSec"`
}

type Actions struct {
	stats *monitoring.Collector
}

func spanArg(ctx *gin.Context) (timeSpan, bool) {
	span := timeSpan(ctx.DefaultQuery("span", string(spanTypeRecent)))
	if err := span.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return span, false
	}
	return span, true
}

// WorkersLoad godoc
// @Summary      Load of all the workers
// @Description  Aggregated load of workers processing regeneration jobs including numbers of regenerated and failed lexicon entries
// @Produce      json
// @Param        span query string false "recent or total" default(recent)
// @Success      200 {object} loadResponse
// @Router       /monitoring/worker-load [get]
func (a *Actions) WorkersLoad(ctx *gin.Context) {
	span, ok := spanArg(ctx)
	if !ok {
		return
	}
	ans := loadResponse{Span: span}
	if span == spanTypeRecent {
		ans.Load, _ = a.stats.RecentLoad("")

	} else {
		ans.Load = a.stats.TotalLoad()
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// SingleWorkerLoad godoc
// @Summary      Load of a single worker
// @Produce      json
// @Param        workerId path string true "worker ID"
// @Param        span query string false "recent or total" default(recent)
// @Success      200 {object} loadResponse
// @Router       /monitoring/worker-load/{workerId} [get]
func (a *Actions) SingleWorkerLoad(ctx *gin.Context) {
	span, ok := spanArg(ctx)
	if !ok {
		return
	}
	ans := loadResponse{Span: span, WorkerID: ctx.Param("workerId")}
	var srchErr error
	if span == spanTypeRecent {
		ans.Load, srchErr = a.stats.RecentLoad(ans.WorkerID)

	} else {
		ans.Load, srchErr = a.stats.TotalWorkerLoad(ans.WorkerID)
	}
	if errors.Is(srchErr, monitoring.ErrWorkerNotFound) {
		uniresp.RespondWithErrorJSON(ctx, srchErr, http.StatusNotFound)
		return

	} else if srchErr != nil {
		uniresp.RespondWithErrorJSON(ctx, srchErr, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// RecentRecords godoc
// @Summary      Recently finished jobs
// @Produce      json
// @Router       /monitoring/recent-records [get]
func (a *Actions) RecentRecords(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, a.stats.RecentRecords())
}

// FuncsLoad godoc
// @Summary      Regeneration load per job function
// @Produce      json
// @Router       /monitoring/funcs [get]
func (a *Actions) FuncsLoad(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, a.stats.FuncLoads())
}

// ParseThroughput godoc
// @Summary      Parse throughput
// @Description  Numbers of parsed sentences and tokens and the processing speed of the parse endpoint
// @Produce      json
// @Param        span query string false "recent or total" default(recent)
// @Success      200 {object} parseThroughputResponse
// @Router       /monitoring/parse-throughput [get]
func (a *Actions) ParseThroughput(ctx *gin.Context) {
	span, ok := spanArg(ctx)
	if !ok {
		return
	}
	ans := parseThroughputResponse{Span: span}
	if span == spanTypeRecent {
		ans.Stats = a.stats.RecentParseThroughput()

	} else {
		ans.Stats = a.stats.TotalParseThroughput()
	}
	ans.SentencesPerSec = ans.Stats.SentencesPerSec()
	ans.TokensPerSec = ans.Stats.TokensPerSec()
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func NewActions(stats *monitoring.Collector) *Actions {
	return &Actions{stats: stats}
}
