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
	"bytes"

	"github.com/spaolacci/murmur3"
	"go.uber.org/atomic"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/choice"
)

// loaded is one deduplicated candidate's bytes for a single segment.
// Source is zero for a padding segment's synthetic zero-fill entry.
type loaded struct {
	Source core.PathID
	Bytes  []byte
}

// SolverState holds one piece's preloaded, deduplicated segment
// candidates, shared by every worker cooperating on the piece so the
// segments are each read from disk exactly once regardless of how many
// tasks or workers iterate the resulting choice space.
type SolverState struct {
	pr       *PieceRecord
	hash20   func([]byte) core.Hash20
	segments [][]loaded
	counts   []int
}

// NewSolverState performs rejection and preload (§4.F steps 1-3) for
// pr. A nil *SolverState means the caller should stop immediately, with
// the returned Outcome saying why: OutcomeUnfound for an
// already-unsolvable piece, OutcomeFaulted (with a non-nil error) for an
// I/O error while preloading. A non-nil *SolverState means "proceed to
// RunTask"; the Outcome is then zero and carries no meaning.
func NewSolverState(pr *PieceRecord, reader Reader, hash20 func([]byte) core.Hash20) (*SolverState, Outcome, error) {
	if pr.Choices == nil {
		return nil, OutcomeUnfound, nil
	}

	segments := make([][]loaded, len(pr.Plan))
	counts := make([]int, len(pr.Plan))

	for i, seg := range pr.Plan {
		sources := pr.Sources[i]
		if sources == nil {
			// Padding segment: one synthetic zero-fill candidate.
			segments[i] = []loaded{{Source: 0, Bytes: make([]byte, seg.Length)}}
			counts[i] = 1
			continue
		}

		var kept []loaded
		var fingerprints []uint64
		for _, id := range sources {
			data, err := reader.ReadRange(id, seg.FileOffset, seg.Length)
			if err != nil {
				return nil, OutcomeFaulted, err
			}

			fp := murmur3.Sum64(data)
			dup := false
			for j, kfp := range fingerprints {
				if kfp == fp && bytes.Equal(kept[j].Bytes, data) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			fingerprints = append(fingerprints, fp)
			kept = append(kept, loaded{Source: id, Bytes: data})
		}
		segments[i] = kept
		counts[i] = len(kept)
	}

	return &SolverState{pr: pr, hash20: hash20, segments: segments, counts: counts}, 0, nil
}

// Counts returns the (possibly dedup-reduced) per-segment candidate
// counts, for building the piece's choice.Generator.
func (s *SolverState) Counts() []int {
	return s.counts
}

// RunTask iterates every choice in t, concatenating each segment's
// chosen candidate bytes and comparing the resulting hash against the
// piece's declared digest. It checks completed at the top of every
// iteration (cooperative cancellation) and, on a hash match, attempts
// the CAS that decides which concurrent worker actually wins the piece.
func (s *SolverState) RunTask(completed *atomic.Bool, t *choice.Task) (matched bool, data []byte, sources []core.PathID, err error) {
	c := t.Iter()
	for {
		if completed.Load() {
			return false, nil, nil, nil
		}

		v := c.Values()
		buf := make([]byte, 0, segmentsTotalLen(s.segments, v))
		srcs := make([]core.PathID, len(v))
		for i, choiceIdx := range v {
			entry := s.segments[i][choiceIdx]
			buf = append(buf, entry.Bytes...)
			srcs[i] = entry.Source
		}

		if s.hash20(buf) == s.pr.Hash {
			if completed.CAS(false, true) {
				return true, buf, srcs, nil
			}
			return false, nil, nil, nil
		}

		if !c.Next() {
			break
		}
	}
	return false, nil, nil, nil
}

func segmentsTotalLen(segments [][]loaded, v []int) int {
	total := 0
	for i, idx := range v {
		total += len(segments[i][idx].Bytes)
	}
	return total
}
