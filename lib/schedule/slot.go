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

// activeTask is one worker's current piece and its remaining, unrun
// tasks.
type activeTask struct {
	piece *Piece
	tasks []*choice.Task
}

// slot is one worker's assignment, guarded by its own mutex so a thief
// can lock every slot in a fixed order without risking deadlock.
type slot struct {
	mu      sync.Mutex
	current *activeTask
}

// takeTask pops the next task off the slot's current assignment. It
// clears the slot once the assignment is drained or its piece has
// already been completed by another worker.
func (s *slot) takeTask() (*choice.Task, *Piece, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || len(s.current.tasks) == 0 {
		return nil, nil, false
	}
	t := s.current.tasks[0]
	piece := s.current.piece
	s.current.tasks = s.current.tasks[1:]
	if len(s.current.tasks) == 0 || piece.Completed.Load() {
		s.current = nil
	}
	return t, piece, true
}

func (s *slot) setCurrent(piece *Piece, tasks []*choice.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &activeTask{piece: piece, tasks: tasks}
}
