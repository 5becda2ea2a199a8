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

// Package write consumes solved pieces and materializes them into the
// export tree.
package write

import (
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
)

// Counters tracks the writer's running totals, mirrored into stats so
// the numbers are visible as process metrics, not just a final summary.
type Counters struct {
	Success  atomic.Int64
	Failed   atomic.Int64
	Faulted  atomic.Int64
	Writable atomic.Int64
	Ignored  atomic.Int64

	stats tally.Scope
}

// NewCounters returns a Counters reporting into stats.
func NewCounters(stats tally.Scope) *Counters {
	return &Counters{stats: stats}
}

func (c *Counters) incSuccess() {
	c.Success.Inc()
	c.stats.Counter("piece_success").Inc(1)
}

func (c *Counters) incFailed() {
	c.Failed.Inc()
	c.stats.Counter("piece_failed").Inc(1)
}

func (c *Counters) incFaulted() {
	c.Faulted.Inc()
	c.stats.Counter("piece_faulted").Inc(1)
}

func (c *Counters) incWritable() {
	c.Writable.Inc()
	c.stats.Counter("segment_writable").Inc(1)
}

func (c *Counters) incIgnored() {
	c.Ignored.Inc()
	c.stats.Counter("segment_ignored").Inc(1)
}
