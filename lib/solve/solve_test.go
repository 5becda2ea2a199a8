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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/metainfo"
)

type fakeReader struct {
	data map[core.PathID][]byte
	err  map[core.PathID]error
}

func newFakeReader() *fakeReader {
	return &fakeReader{data: make(map[core.PathID][]byte), err: make(map[core.PathID]error)}
}

func (f *fakeReader) ReadRange(id core.PathID, offset, length int64) ([]byte, error) {
	if err, ok := f.err[id]; ok {
		return nil, err
	}
	b := f.data[id]
	return b[offset : offset+length], nil
}

func TestSolveUnfoundWhenChoicesNil(t *testing.T) {
	pr := &PieceRecord{ID: 0, Choices: nil}
	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, newFakeReader(), completed, core.NewHash20FromBytes, 4)
	require.Equal(t, OutcomeUnfound, res.Outcome)
}

func TestSolveSingleSegmentMatch(t *testing.T) {
	require := require.New(t)

	reader := newFakeReader()
	reader.data[1] = []byte("WRONG")
	reader.data[2] = []byte("ABCD")

	content := []byte("ABCD")
	hash := core.NewHash20FromBytes(content)

	pr := &PieceRecord{
		ID:      0,
		Hash:    hash,
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{2},
		Sources: [][]core.PathID{{1, 2}},
	}

	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(OutcomeSolved, res.Outcome)
	require.Equal([]byte("ABCD"), res.Data)
	require.Equal([]core.PathID{2}, res.Sources)
	require.True(completed.Load())
}

func TestSolveMultiSegmentDedupAndMatch(t *testing.T) {
	require := require.New(t)

	reader := newFakeReader()
	reader.data[1] = []byte("AB")
	reader.data[2] = []byte("AB") // byte-identical hard-link duplicate of 1
	reader.data[3] = []byte("CD")

	content := []byte("ABCD")
	hash := core.NewHash20FromBytes(content)

	pr := &PieceRecord{
		ID:   0,
		Hash: hash,
		Plan: metainfo.PieceReadPlan{
			{FileIndex: 0, FileOffset: 0, Length: 2},
			{FileIndex: 1, FileOffset: 0, Length: 2},
		},
		Choices: []int{2, 1},
		Sources: [][]core.PathID{{1, 2}, {3}},
	}

	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(OutcomeSolved, res.Outcome)
	require.Equal([]byte("ABCD"), res.Data)
}

func TestSolvePaddingSegmentZeroFill(t *testing.T) {
	require := require.New(t)

	reader := newFakeReader()
	reader.data[1] = []byte("AB")

	content := append([]byte("AB"), 0, 0)
	hash := core.NewHash20FromBytes(content)

	pr := &PieceRecord{
		ID:   0,
		Hash: hash,
		Plan: metainfo.PieceReadPlan{
			{FileIndex: 0, FileOffset: 0, Length: 2},
			{FileIndex: 1, FileOffset: 0, Length: 2},
		},
		Choices: []int{1, 1},
		Sources: [][]core.PathID{{1}, nil},
	}

	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(OutcomeSolved, res.Outcome)
	require.Equal(core.PathID(0), res.Sources[1])
}

func TestSolveUnfoundWhenNoMatch(t *testing.T) {
	reader := newFakeReader()
	reader.data[1] = []byte("ZZZZ")

	pr := &PieceRecord{
		ID:      0,
		Hash:    core.NewHash20FromBytes([]byte("ABCD")),
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{1},
		Sources: [][]core.PathID{{1}},
	}

	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(t, OutcomeUnfound, res.Outcome)
}

func TestSolveFaultedOnIOError(t *testing.T) {
	reader := newFakeReader()
	reader.err[1] = errors.New("disk error")

	pr := &PieceRecord{
		ID:      0,
		Hash:    core.NewHash20FromBytes([]byte("ABCD")),
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{1},
		Sources: [][]core.PathID{{1}},
	}

	completed := atomic.NewBool(false)
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(t, OutcomeFaulted, res.Outcome)
	require.Error(t, res.Err)
}

func TestSolveAlreadyCompletedYieldsUnfound(t *testing.T) {
	reader := newFakeReader()
	reader.data[1] = []byte("ABCD")

	pr := &PieceRecord{
		ID:      0,
		Hash:    core.NewHash20FromBytes([]byte("ABCD")),
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{1},
		Sources: [][]core.PathID{{1}},
	}

	completed := atomic.NewBool(true) // another worker already solved this piece
	res := Solve(context.Background(), pr, reader, completed, core.NewHash20FromBytes, 4)
	require.Equal(t, OutcomeUnfound, res.Outcome)
}
