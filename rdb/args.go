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

const (
	FuncRegenerateLemma = "regenerateLemma"
	FuncRegenerateAll   = "regenerateAll"
)

type RegenerateLemmaArgs struct {
	LemmaID int64 `json:"lemmaId"`
}

type RegenerateAllArgs struct {
	CacheClearInterval int `json:"cacheClearInterval"`
}
