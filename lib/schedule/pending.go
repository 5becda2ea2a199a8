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
	"sync"

	"github.com/uber/kraken-restore/lib/choice"
)

// workItem is one unit a worker can pull off the pending queue: either a
// piece that has never been touched (task is nil, and the worker must
// build its SolverState before it can do anything), or a single task
// stolen from another worker for a piece that is already preloaded.
type workItem struct {
	piece *Piece
	task  *choice.Task
}

// pendingQueue is the shared FIFO of work not currently assigned to any
// worker slot.
type pendingQueue struct {
	mu    sync.Mutex
	items []*workItem
}

func (q *pendingQueue) push(items ...*workItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

func (q *pendingQueue) pop() (*workItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}
