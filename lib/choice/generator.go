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
package choice

// Generator builds the task split for one piece's search space.
type Generator struct {
	Counts      []int
	TargetSplit int
}

// NewGenerator returns a Generator over counts, split to reach at least
// targetSplit tasks where possible.
func NewGenerator(counts []int, targetSplit int) *Generator {
	return &Generator{Counts: counts, TargetSplit: targetSplit}
}

// Task is one contiguous rectangular region of the search space: Mask
// axes are frozen at Full[axis]; Range axes are iterated in full by
// whichever worker runs the task.
type Task struct {
	// Full holds the frozen Mask-axis values; Range-axis slots are 0
	// placeholders overwritten by Choice.Values during iteration.
	Full []int
	// RangeAxes lists, in ascending order, the axis indices this task
	// iterates over.
	RangeAxes []int
	// Counts is the piece's full per-axis candidate counts, shared by
	// every task so Choice can bound its odometer.
	Counts []int
}

// Iter returns a fresh odometer over t's Range axes, positioned at the
// first combination.
func (t *Task) Iter() *Choice {
	return &Choice{task: t, pos: make([]int, len(t.RangeAxes))}
}

// Tasks splits g's search space per the Mask/Range classification in
// split, and eagerly enumerates every task (one per Mask-axis
// combination, in little-endian odometer order). Returns nil if any
// axis has a zero count (the piece is unsolvable).
func (g *Generator) Tasks() []*Task {
	for _, c := range g.Counts {
		if c == 0 {
			return nil
		}
	}

	mask, maskProduct := split(g.Counts, g.TargetSplit)

	var maskAxes, rangeAxes []int
	for i := range g.Counts {
		if mask.Test(uint(i)) {
			maskAxes = append(maskAxes, i)
		} else {
			rangeAxes = append(rangeAxes, i)
		}
	}

	tasks := make([]*Task, 0, maskProduct)
	maskPos := make([]int, len(maskAxes))
	for {
		full := make([]int, len(g.Counts))
		for i, axis := range maskAxes {
			full[axis] = maskPos[i]
		}
		tasks = append(tasks, &Task{
			Full:      full,
			RangeAxes: rangeAxes,
			Counts:    g.Counts,
		})

		if !odometerAdvance(maskPos, maskAxes, g.Counts) {
			break
		}
	}
	return tasks
}

// odometerAdvance advances the little-endian mixed-radix counter pos
// (whose digit i is bounded by counts[axes[i]]) by one, returning false
// once the leftmost digit would carry.
func odometerAdvance(pos []int, axes []int, counts []int) bool {
	for i := len(pos) - 1; i >= 0; i-- {
		pos[i]++
		if pos[i] < counts[axes[i]] {
			return true
		}
		pos[i] = 0
	}
	return false
}

// Choice is a live position within one Task's Range-axis odometer.
type Choice struct {
	task *Task
	pos  []int
	done bool
}

// Values returns the current full per-axis index vector: Mask values
// from the task, Range values from the odometer's current position.
func (c *Choice) Values() []int {
	out := make([]int, len(c.task.Full))
	copy(out, c.task.Full)
	for i, axis := range c.task.RangeAxes {
		out[axis] = c.pos[i]
	}
	return out
}

// Next advances the odometer to the next combination, returning false
// once the Range axes are exhausted (including immediately, for a task
// with no Range axes — there is exactly one combination to visit).
func (c *Choice) Next() bool {
	if c.done {
		return false
	}
	if !odometerAdvance(c.pos, c.task.RangeAxes, c.task.Counts) {
		c.done = true
		return false
	}
	return true
}
