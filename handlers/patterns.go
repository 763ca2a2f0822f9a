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

	"cxgparse/pattern"
	"cxgparse/ud"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type compileRequest struct {
	Pattern string `json:"pattern"`
}

type compileResponse struct {
	Pattern  *pattern.Pattern   `json:"pattern"`
	Order    []int              `json:"traversalOrder"`
	Types    []pattern.NodeType `json:"typeSequence"`
	Vars     []string           `json:"variables"`
	Warnings []string           `json:"warnings"`
}

type matchRequest struct {
	Pattern string     `json:"pattern"`
	Tokens  []ud.Token `json:"tokens"`
}

type matchResponse struct {
	Matches []pattern.Match `json:"matches"`
}

// CompilePattern godoc
// @Summary      Compile a construction pattern
// @Description  Compiles a pattern into a graph and reports possible issues with it.
// @Accept       json
// @Produce      json
// @Param        request body compileRequest true "pattern"
// @Success      200 {object} compileResponse
// @Failure      422 {object} uniresp.ActionError
// @Router       /patterns/compile [post]
func (a *Actions) CompilePattern(ctx *gin.Context) {
	var req compileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	pat, err := pattern.Compile(req.Pattern)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	uniresp.WriteJSONResponse(
		ctx.Writer,
		compileResponse{
			Pattern:  pat,
			Order:    pat.TraversalOrder(),
			Types:    pat.TypeSequence(),
			Vars:     pat.Variables(),
			Warnings: pat.Validate(),
		},
	)
}

// MatchPattern godoc
// @Summary      Match a construction pattern
// @Description  Finds all non-overlapping occurrences of a pattern in a token sequence.
// @Accept       json
// @Produce      json
// @Param        request body matchRequest true "pattern and tokens"
// @Success      200 {object} matchResponse
// @Router       /patterns/match [post]
func (a *Actions) MatchPattern(ctx *gin.Context) {
	var req matchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	pat, err := pattern.Compile(req.Pattern)
	if err != nil {
		respondWithError(ctx, err)
		return
	}
	matches := pat.FindAllWithBudget(req.Tokens, pattern.DefaultStepBudget)
	uniresp.WriteJSONResponse(ctx.Writer, matchResponse{Matches: matches})
}
