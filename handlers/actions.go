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
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cxgparse/ce"
	"cxgparse/lexicon"
	"cxgparse/merror"
	"cxgparse/monitoring"
	"cxgparse/pipeline"
	"cxgparse/rdb"
	"cxgparse/ud"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type textProcessor interface {
	Process(ctx context.Context, sent ud.Sentence) (*ce.ParseGraph, error)
	ProcessText(ctx context.Context, text string) ([]pipeline.Result, error)
}

type jobQueue interface {
	PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type parseLogger interface {
	LogParse(rec monitoring.ParseLog)
}

type Actions struct {
	pipeline textProcessor
	index    *lexicon.Index
	store    lexicon.Store
	radapter jobQueue
	stats    parseLogger

	// regenerateAllDone is called (if set) once a queued
	// regeneration of all patterns is finished and the index
	// has been reloaded
	regenerateAllDone func(err error)
}

// errorStatus maps known error types to HTTP status codes
func errorStatus(err error) int {
	var inputErr merror.InputError
	var syntaxErr merror.PatternSyntaxError
	var noRootErr merror.NoRootTokenError
	var timeoutErr merror.TimeoutError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &syntaxErr), errors.As(err, &noRootErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.Is(err, lexicon.ErrEntryNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondWithError(ctx *gin.Context, err error) {
	uniresp.RespondWithErrorJSON(ctx, err, errorStatus(err))
}

func lemmaIDArg(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("lemmaId"), 10, 64)
	if err != nil || id <= 0 {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("invalid lemma ID `%s`", ctx.Param("lemmaId")),
			http.StatusBadRequest,
		)
		return 0, false
	}
	return id, true
}

// parseRequest contains exactly one of the supported inputs
type parseRequest struct {
	Text      string        `json:"text,omitempty"`
	Conllu    string        `json:"conllu,omitempty"`
	Sentences []ud.Sentence `json:"sentences,omitempty"`
}

func (req parseRequest) validate() error {
	var numInputs int
	if req.Text != "" {
		numInputs++
	}
	if req.Conllu != "" {
		numInputs++
	}
	if len(req.Sentences) > 0 {
		numInputs++
	}
	if numInputs != 1 {
		return merror.InputError{Msg: "exactly one of `text`, `conllu`, `sentences` must be specified"}
	}
	return nil
}

func (req parseRequest) inputType() string {
	switch {
	case req.Text != "":
		return "text"
	case req.Conllu != "":
		return "conllu"
	}
	return "sentences"
}

type parseResponse struct {
	Results []pipeline.Result `json:"results"`
}

func (a *Actions) processSentences(ctx context.Context, sents []ud.Sentence) ([]pipeline.Result, error) {
	ans := make([]pipeline.Result, 0, len(sents))
	for i, sent := range sents {
		graph, err := a.pipeline.Process(ctx, sent)
		if err != nil {
			return nil, fmt.Errorf("failed to process sentence %d: %w", i+1, err)
		}
		ans = append(ans, pipeline.Result{Text: sent.Text(), NumTokens: len(sent), Graph: graph})
	}
	return ans, nil
}

// Parse godoc
// @Summary      Parse
// @Description  Produces parse graphs for a raw text (sent to the dependency parser), CoNLL-U data or already parsed sentences.
// @Accept       json
// @Produce      json
// @Param        request body parseRequest true "input data"
// @Success      200 {object} parseResponse
// @Router       /parse [post]
func (a *Actions) Parse(ctx *gin.Context) {
	var req parseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		respondWithError(ctx, err)
		return
	}
	var results []pipeline.Result
	var err error
	t0 := time.Now()
	defer func() {
		a.logParse(req.inputType(), t0, results, err)
	}()
	switch {
	case req.Text != "":
		results, err = a.pipeline.ProcessText(ctx.Request.Context(), req.Text)
	case req.Conllu != "":
		var sents []ud.Sentence
		sents, err = ud.ReadConllu(strings.NewReader(req.Conllu))
		if err != nil {
			err = merror.InputError{Msg: err.Error()}
			break
		}
		results, err = a.processSentences(ctx.Request.Context(), sents)
	default:
		results, err = a.processSentences(ctx.Request.Context(), req.Sentences)
	}
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, parseResponse{Results: results})
}

func (a *Actions) logParse(input string, t0 time.Time, results []pipeline.Result, err error) {
	if a.stats == nil {
		return
	}
	rec := monitoring.ParseLog{
		Input:        input,
		NumSentences: len(results),
		Begin:        t0,
		End:          time.Now(),
		Err:          err,
	}
	for _, r := range results {
		rec.NumTokens += r.NumTokens
	}
	a.stats.LogParse(rec)
}

// SetParseLogger enables reporting of served parse requests
func (a *Actions) SetParseLogger(stats parseLogger) {
	a.stats = stats
}

func NewActions(
	proc textProcessor,
	index *lexicon.Index,
	store lexicon.Store,
	radapter jobQueue,
) *Actions {
	return &Actions{
		pipeline: proc,
		index:    index,
		store:    store,
		radapter: radapter,
	}
}
