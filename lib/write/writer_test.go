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
package write

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/catalog"
	"github.com/uber/kraken-restore/lib/metainfo"
	"github.com/uber/kraken-restore/lib/search"
	"github.com/uber/kraken-restore/lib/solve"
)

func buildTestTorrent(t *testing.T, content []byte, pieceLength int) *metainfo.Torrent {
	blob := buildSingleFileDescriptorForWriteTest(t, "a.bin", content, pieceLength)
	tr, err := metainfo.Decode(blob)
	require.NoError(t, err)
	return tr
}

func TestWriterWritesSolvedPieceAndSkipsExportTarget(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	content := []byte("ABCDEFGH")
	tr := buildTestTorrent(t, content, 4)

	interner := catalog.NewInterner()
	exportPath := filepath.Join(dir, "a.bin")
	exportID := interner.Intern(exportPath)

	files := []search.FileRecord{
		{FileLength: int64(len(content)), ExportTargetID: exportID},
	}

	results := make(chan solve.Result, 2)
	counters := NewCounters(tally.NoopScope)
	w := NewWriter(results, tr, files, interner, counters, zap.NewNop().Sugar())

	results <- solve.Result{
		Piece:   0,
		Outcome: solve.OutcomeSolved,
		Data:    []byte("ABCD"),
		Sources: []core.PathID{99}, // some other source, not the export target
	}
	results <- solve.Result{
		Piece:   1,
		Outcome: solve.OutcomeSolved,
		Data:    []byte("EFGH"),
		Sources: []core.PathID{exportID}, // already-correct bytes: skip
	}
	close(results)

	require.NoError(w.Run(context.Background()))
	require.NoError(w.Close())

	got, err := os.ReadFile(exportPath)
	require.NoError(err)
	require.Equal([]byte("ABCD\x00\x00\x00\x00"), got)
	require.EqualValues(2, counters.Success.Load())
	require.EqualValues(1, counters.Writable.Load())
	require.EqualValues(1, counters.Ignored.Load())
}

func TestWriterCountsFaultedAndUnfound(t *testing.T) {
	require := require.New(t)

	tr := buildTestTorrent(t, []byte("ABCD"), 4)
	interner := catalog.NewInterner()
	files := []search.FileRecord{{FileLength: 4}}

	results := make(chan solve.Result, 2)
	counters := NewCounters(tally.NoopScope)
	w := NewWriter(results, tr, files, interner, counters, zap.NewNop().Sugar())

	results <- solve.Result{Piece: 0, Outcome: solve.OutcomeFaulted}
	results <- solve.Result{Piece: 0, Outcome: solve.OutcomeUnfound}
	close(results)

	require.NoError(w.Run(context.Background()))
	require.EqualValues(1, counters.Faulted.Load())
	require.EqualValues(1, counters.Failed.Load())
}
