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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/metainfo"
	"github.com/uber/kraken-restore/lib/solve"
)

type fakeReader struct {
	data map[core.PathID][]byte
}

func (f *fakeReader) ReadRange(id core.PathID, offset, length int64) ([]byte, error) {
	return f.data[id][offset : offset+length], nil
}

func TestExecutorSolvesAllPieces(t *testing.T) {
	require := require.New(t)

	reader := &fakeReader{data: map[core.PathID][]byte{
		1: []byte("AAAA"),
		2: []byte("BBBB"),
		3: []byte("WRONG"),
	}}

	records := []*solve.PieceRecord{
		{
			ID:      0,
			Hash:    core.NewHash20FromBytes([]byte("AAAA")),
			Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
			Choices: []int{2},
			Sources: [][]core.PathID{{3, 1}},
		},
		{
			ID:      1,
			Hash:    core.NewHash20FromBytes([]byte("BBBB")),
			Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 4, Length: 4}},
			Choices: []int{1},
			Sources: [][]core.PathID{{2}},
		},
		{
			ID:      2,
			Hash:    core.NewHash20FromBytes([]byte("ZZZZ")),
			Choices: nil, // unsolvable
		},
	}

	pieces := make([]*Piece, len(records))
	for i, r := range records {
		pieces[i] = NewPiece(r)
	}

	results := make(chan solve.Result, len(pieces))
	exec := NewExecutor(reader, core.NewHash20FromBytes, 4, results, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(exec.Run(ctx, pieces))
	close(results)

	byPiece := make(map[core.PieceIndex]solve.Result)
	for r := range results {
		byPiece[r.Piece] = r
	}

	require.Equal(solve.OutcomeSolved, byPiece[0].Outcome)
	require.Equal([]byte("AAAA"), byPiece[0].Data)
	require.Equal(solve.OutcomeSolved, byPiece[1].Outcome)
	require.Equal(solve.OutcomeUnfound, byPiece[2].Outcome)
}

func TestExecutorReportsUnfoundWhenNoCandidateMatches(t *testing.T) {
	require := require.New(t)

	reader := &fakeReader{data: map[core.PathID][]byte{
		1: []byte("NOPE"),
		2: []byte("DECOY"[:4]),
	}}

	record := &solve.PieceRecord{
		ID:      0,
		Hash:    core.NewHash20FromBytes([]byte("WANT")),
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{2},
		Sources: [][]core.PathID{{1, 2}},
	}

	results := make(chan solve.Result, 1)
	exec := NewExecutor(reader, core.NewHash20FromBytes, 4, results, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(exec.Run(ctx, []*Piece{NewPiece(record)}))
	close(results)

	res := <-results
	require.Equal(solve.OutcomeUnfound, res.Outcome)
	_, more := <-results
	require.False(more, "exactly one result expected for a piece with candidates but no match")
}

func TestExecutorSplitsWorkAcrossManyCandidates(t *testing.T) {
	require := require.New(t)

	data := map[core.PathID][]byte{}
	var sources []core.PathID
	for i := 1; i <= 20; i++ {
		id := core.PathID(i)
		data[id] = []byte(fmt.Sprintf("N%03d", i))
		sources = append(sources, id)
	}
	data[core.PathID(20)] = []byte("YEP!")

	reader := &fakeReader{data: data}
	record := &solve.PieceRecord{
		ID:      0,
		Hash:    core.NewHash20FromBytes([]byte("YEP!")),
		Plan:    metainfo.PieceReadPlan{{FileIndex: 0, FileOffset: 0, Length: 4}},
		Choices: []int{len(sources)},
		Sources: [][]core.PathID{sources},
	}

	results := make(chan solve.Result, 1)
	exec := NewExecutor(reader, core.NewHash20FromBytes, 8, results, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(exec.Run(ctx, []*Piece{NewPiece(record)}))
	close(results)

	res := <-results
	require.Equal(solve.OutcomeSolved, res.Outcome)
	require.Equal([]byte("YEP!"), res.Data)
}
