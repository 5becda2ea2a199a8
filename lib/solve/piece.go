// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package solve matches a piece's declared hash against the candidate
// bytes assembled from its segments' on-disk sources.
package solve

import (
	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/metainfo"
)

// PieceRecord is everything the solver needs for one piece. Choices is
// nil when the piece is already known unsolvable (some non-padding
// segment had no candidates at all) — built once by the orchestrator's
// buildPieceRecords, not by the solver.
type PieceRecord struct {
	ID      core.PieceIndex
	Hash    core.Hash20
	Plan    metainfo.PieceReadPlan
	Choices []int
	// Sources[i] is the ranked candidate PathIDs for Plan[i], or nil for
	// a padding segment. len(Sources[i]) == Choices[i] for non-padding
	// segments.
	Sources [][]core.PathID
}

// Reader is the file-IO seam the solver reads candidate bytes through.
type Reader interface {
	ReadRange(id core.PathID, offset, length int64) ([]byte, error)
}

// Outcome classifies how a piece's solve attempt ended.
type Outcome int

const (
	OutcomeSolved Outcome = iota
	OutcomeUnfound
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSolved:
		return "solved"
	case OutcomeUnfound:
		return "unfound"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Result is the final disposition of one piece. Sources[i] mirrors
// Plan[i]; a zero core.PathID means "padding, no source" (the interner
// is 1-based, so 0 is never a real path).
type Result struct {
	Piece   core.PieceIndex
	Outcome Outcome
	Data    []byte
	Sources []core.PathID
	Err     error
}
