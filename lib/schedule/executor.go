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
package schedule

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/choice"
	"github.com/uber/kraken-restore/lib/solve"
)

// Executor runs a fixed pool of worker goroutines over a set of pieces.
// Workers cooperate on one piece through lib/choice tasks and steal idle
// work from each other once the pending queue runs dry.
type Executor struct {
	slots       []*slot
	pending     *pendingQueue
	reader      solve.Reader
	hash20      func([]byte) core.Hash20
	targetSplit int
	results     chan<- solve.Result
	logger      *zap.SugaredLogger
}

// NewExecutor returns an Executor with threads worker slots. targetSplit
// is normally equal to threads, passed down to every piece's
// choice.Generator.
func NewExecutor(reader solve.Reader, hash20 func([]byte) core.Hash20, threads int, results chan<- solve.Result, logger *zap.SugaredLogger) *Executor {
	slots := make([]*slot, threads)
	for i := range slots {
		slots[i] = &slot{}
	}
	return &Executor{
		slots:       slots,
		pending:     &pendingQueue{},
		reader:      reader,
		hash20:      hash20,
		targetSplit: threads,
		results:     results,
		logger:      logger,
	}
}

// Run feeds pieces to the worker pool and blocks until every piece is
// either solved, unfound, or faulted. Pieces are queued hardest-first
// (most segments) so they start as early as possible. A non-nil error
// indicates a programmer invariant broke, not that a piece failed to
// solve — faulted pieces surface as results, sent to results.
func (e *Executor) Run(ctx context.Context, pieces []*Piece) error {
	sorted := make([]*Piece, len(pieces))
	copy(sorted, pieces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Record.Plan) > len(sorted[j].Record.Plan)
	})

	items := make([]*workItem, len(sorted))
	for i, p := range sorted {
		items[i] = &workItem{piece: p}
	}
	e.pending.push(items...)

	g, gctx := errgroup.WithContext(ctx)
	for id := range e.slots {
		id := id
		g.Go(func() error {
			return e.runWorker(gctx, id)
		})
	}
	return g.Wait()
}

func (e *Executor) runWorker(ctx context.Context, id int) error {
	s := e.slots[id]
	for {
		if ctx.Err() != nil {
			return nil
		}

		if task, piece, ok := s.takeTask(); ok {
			matched, data, sources, err := piece.State.RunTask(piece.Completed, task)
			if err != nil {
				return err
			}
			if matched {
				e.results <- solve.Result{
					Piece:   piece.Record.ID,
					Outcome: solve.OutcomeSolved,
					Data:    data,
					Sources: sources,
				}
			} else if piece.Remaining.Dec() == 0 && !piece.Completed.Load() {
				e.results <- solve.Result{Piece: piece.Record.ID, Outcome: solve.OutcomeUnfound}
			}
			continue
		}

		if item, ok := e.pending.pop(); ok {
			e.claim(s, item)
			continue
		}

		if e.steal(id) {
			continue
		}

		return nil
	}
}

// claim turns a pending work item into a slot assignment: building the
// piece's SolverState on first touch, or directly installing a single
// stolen task for a piece another worker already preloaded.
func (e *Executor) claim(s *slot, item *workItem) {
	piece := item.piece

	if item.task != nil {
		if piece.Completed.Load() {
			return
		}
		s.setCurrent(piece, []*choice.Task{item.task})
		return
	}

	state, outcome, err := solve.NewSolverState(piece.Record, e.reader, e.hash20)
	if err != nil {
		e.results <- solve.Result{Piece: piece.Record.ID, Outcome: solve.OutcomeFaulted, Err: err}
		return
	}
	if state == nil {
		e.results <- solve.Result{Piece: piece.Record.ID, Outcome: outcome}
		return
	}
	piece.State = state

	tasks := choice.NewGenerator(state.Counts(), e.targetSplit).Tasks()
	if tasks == nil {
		e.results <- solve.Result{Piece: piece.Record.ID, Outcome: solve.OutcomeUnfound}
		return
	}
	piece.Remaining.Store(int64(len(tasks)))
	s.setCurrent(piece, tasks)
}

// steal locks every slot in a fixed 0..n-1 order (never worker-ID order,
// to avoid deadlock cycles), gathers every remaining task, and
// redistributes them one per slot in round-robin order starting at
// id mod len(gathered); any overflow beyond one per slot goes back to
// the pending queue.
func (e *Executor) steal(id int) bool {
	for _, sl := range e.slots {
		sl.mu.Lock()
	}
	defer func() {
		for i := len(e.slots) - 1; i >= 0; i-- {
			e.slots[i].mu.Unlock()
		}
	}()

	var gathered []*workItem
	for _, sl := range e.slots {
		if sl.current == nil {
			continue
		}
		for _, t := range sl.current.tasks {
			gathered = append(gathered, &workItem{piece: sl.current.piece, task: t})
		}
		sl.current = nil
	}
	if len(gathered) == 0 {
		return false
	}

	n := len(e.slots)
	start := id % len(gathered)
	for i, item := range gathered {
		if i >= n {
			e.pending.push(item)
			continue
		}
		dest := (start + i) % n
		e.slots[dest].current = &activeTask{piece: item.piece, tasks: []*choice.Task{item.task}}
	}
	return true
}
