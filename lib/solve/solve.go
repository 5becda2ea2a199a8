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
package solve

import (
	"context"

	"go.uber.org/atomic"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/choice"
)

// Solve runs every task of pr's search space sequentially in the
// calling goroutine, stopping at the first match. It is the
// single-worker entry point used outside the work-stealing executor
// (e.g. by tests and small one-off runs); the executor instead calls
// NewSolverState once per piece and RunTask once per task so that many
// workers can cooperate on the same piece's preloaded segments.
func Solve(ctx context.Context, pr *PieceRecord, reader Reader, completed *atomic.Bool, hash20 func([]byte) core.Hash20, target int) Result {
	state, outcome, err := NewSolverState(pr, reader, hash20)
	if err != nil {
		return Result{Piece: pr.ID, Outcome: OutcomeFaulted, Err: err}
	}
	if state == nil {
		return Result{Piece: pr.ID, Outcome: outcome}
	}

	gen := choice.NewGenerator(state.Counts(), target)
	tasks := gen.Tasks()
	if tasks == nil {
		return Result{Piece: pr.ID, Outcome: OutcomeUnfound}
	}

	for _, t := range tasks {
		select {
		case <-ctx.Done():
			return Result{Piece: pr.ID, Outcome: OutcomeUnfound, Err: ctx.Err()}
		default:
		}

		matched, data, sources, err := state.RunTask(completed, t)
		if err != nil {
			return Result{Piece: pr.ID, Outcome: OutcomeFaulted, Err: err}
		}
		if matched {
			return Result{Piece: pr.ID, Outcome: OutcomeSolved, Data: data, Sources: sources}
		}
		if completed.Load() {
			return Result{Piece: pr.ID, Outcome: OutcomeUnfound}
		}
	}
	return Result{Piece: pr.ID, Outcome: OutcomeUnfound}
}
