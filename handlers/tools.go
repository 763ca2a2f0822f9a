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
	"fmt"
	"net/http"

	"cxgparse/lexicon"
	"cxgparse/rdb"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type queuedResponse struct {
	Status string `json:"status"`
	Func   string `json:"func"`
}

func resultStatus(res *rdb.WorkerResult) int {
	if res.HasUserError {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// RegenerateLemma godoc
// @Summary      Regenerate a lexicon pattern
// @Description  Sends the canonical text of a lexicon entry to the dependency parser and replaces the stored pattern. The job is processed by a worker.
// @Produce      json
// @Param        lemmaId path int true "lemma ID"
// @Success      200 {object} lexicon.Pattern
// @Router       /tools/lexicon/{lemmaId}/regenerate [post]
func (a *Actions) RegenerateLemma(ctx *gin.Context) {
	lemmaID, ok := lemmaIDArg(ctx)
	if !ok {
		return
	}
	query, err := rdb.NewQuery(rdb.FuncRegenerateLemma, rdb.RegenerateLemmaArgs{LemmaID: lemmaID})
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	wait, err := a.radapter.PublishQuery(query)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	rawResult := <-wait
	if err := rawResult.Err(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, resultStatus(rawResult))
		return
	}
	var pat lexicon.Pattern
	if err := rawResult.DecodeValue(&pat); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	a.index.Update(&pat)
	uniresp.WriteJSONResponse(ctx.Writer, &pat)
}

func (a *Actions) awaitRegenerateAll(wait <-chan *rdb.WorkerResult) {
	rawResult := <-wait
	err := rawResult.Err()
	if err == nil {
		var report map[string]any
		if err = rawResult.DecodeValue(&report); err == nil {
			log.Info().Any("report", report).Msg("regeneration of all patterns finished")
			err = a.index.Reload(context.Background(), a.store)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("regeneration of all patterns failed")
	}
	if a.regenerateAllDone != nil {
		a.regenerateAllDone(err)
	}
}

// RegenerateAll godoc
// @Summary      Regenerate all lexicon patterns
// @Description  Queues regeneration of patterns of all the lexicon entries. Patterns served by the API are reloaded once the job is finished.
// @Produce      json
// @Param        cacheClearInterval query int false "clear lookup caches after each N entries"
// @Success      202 {object} queuedResponse
// @Router       /tools/lexicon/regenerate-all [post]
func (a *Actions) RegenerateAll(ctx *gin.Context) {
	interval, ok := unireq.GetURLIntArgOrFail(ctx, "cacheClearInterval", 0)
	if !ok {
		return
	}
	if interval < 0 {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid cacheClearInterval %d", interval), http.StatusBadRequest)
		return
	}
	query, err := rdb.NewQuery(
		rdb.FuncRegenerateAll, rdb.RegenerateAllArgs{CacheClearInterval: interval})
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	wait, err := a.radapter.PublishQuery(query)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	go a.awaitRegenerateAll(wait)
	ctx.JSON(http.StatusAccepted, queuedResponse{Status: "queued", Func: rdb.FuncRegenerateAll})
}
