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

// Package schedule runs a work-stealing pool of worker goroutines over a
// set of pieces, cooperating within a piece via lib/choice tasks and
// across pieces via steal-on-idle.
package schedule

import (
	"go.uber.org/atomic"

	"github.com/uber/kraken-restore/lib/solve"
)

// Piece is the scheduler's view of one unit of work. State is nil until
// the piece is first claimed by a worker: preload happens on first
// touch so an already-unsolvable piece never allocates one. Remaining
// tracks outstanding tasks once the piece's task set is generated, so
// the worker that runs the last one can tell whether the piece ran to
// exhaustion without a match.
type Piece struct {
	Record    *solve.PieceRecord
	State     *solve.SolverState
	Completed *atomic.Bool
	Remaining *atomic.Int64
}

// NewPiece wraps a PieceRecord for scheduling.
func NewPiece(record *solve.PieceRecord) *Piece {
	return &Piece{Record: record, Completed: atomic.NewBool(false), Remaining: atomic.NewInt64(0)}
}
