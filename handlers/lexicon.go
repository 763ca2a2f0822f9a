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
	"fmt"
	"net/http"

	"cxgparse/lexicon"
	"cxgparse/merror"
	"cxgparse/ud"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type lexiconMatchRequest struct {
	Sentence ud.Sentence `json:"sentence"`
}

type lexiconMatchResponse struct {
	Matched bool           `json:"matched"`
	Match   *lexicon.Match `json:"match,omitempty"`
}

func (a *Actions) findPattern(ctx *gin.Context, lemmaID int64) (*lexicon.Pattern, bool) {
	if pat := a.index.Get(lemmaID); pat != nil {
		return pat, true
	}
	pat, err := a.store.LoadPattern(ctx.Request.Context(), lemmaID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return nil, false
	}
	if pat == nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("no pattern found for lemma %d", lemmaID),
			http.StatusNotFound,
		)
		return nil, false
	}
	return pat, true
}

// LexiconPattern godoc
// @Summary      Lexicon pattern
// @Description  Returns the stored dependency pattern of a lexicon entry.
// @Produce      json
// @Param        lemmaId path int true "lemma ID"
// @Success      200 {object} lexicon.Pattern
// @Failure      404 {object} uniresp.ActionError
// @Router       /lexicon/{lemmaId}/pattern [get]
func (a *Actions) LexiconPattern(ctx *gin.Context) {
	lemmaID, ok := lemmaIDArg(ctx)
	if !ok {
		return
	}
	pat, ok := a.findPattern(ctx, lemmaID)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, pat)
}

// LexiconMatch godoc
// @Summary      Match a lexicon pattern
// @Description  Tests whether the pattern of a lexicon entry matches the provided parsed sentence.
// @Accept       json
// @Produce      json
// @Param        lemmaId path int true "lemma ID"
// @Param        request body lexiconMatchRequest true "parsed sentence"
// @Success      200 {object} lexiconMatchResponse
// @Router       /lexicon/{lemmaId}/match [post]
func (a *Actions) LexiconMatch(ctx *gin.Context) {
	lemmaID, ok := lemmaIDArg(ctx)
	if !ok {
		return
	}
	var req lexiconMatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	if err := req.Sentence.Validate(); err != nil {
		respondWithError(ctx, merror.InputError{Msg: err.Error()})
		return
	}
	pat, ok := a.findPattern(ctx, lemmaID)
	if !ok {
		return
	}
	m, matched, err := a.index.MatchPattern(ctx.Request.Context(), req.Sentence, pat)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	ans := lexiconMatchResponse{Matched: matched}
	if matched {
		ans.Match = &m
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
