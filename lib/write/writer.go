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

	"go.uber.org/zap"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/catalog"
	"github.com/uber/kraken-restore/lib/metainfo"
	"github.com/uber/kraken-restore/lib/search"
	"github.com/uber/kraken-restore/lib/solve"
)

// Writer is the single consumer that materializes solved pieces into
// the export tree. Exactly one Writer runs per torrent, which is what
// lets it cache one open *os.File per export file for the run's
// lifetime without any locking.
type Writer struct {
	results   <-chan solve.Result
	torrent   *metainfo.Torrent
	plans     []metainfo.PieceReadPlan
	files     []search.FileRecord // indexed by core.FileIndex
	interner  *catalog.Interner
	counters  *Counters
	logger    *zap.SugaredLogger
	openFiles map[core.PathID]*os.File
}

// NewWriter returns a Writer for one torrent. files must be indexed by
// core.FileIndex and already have Discover run on each entry.
func NewWriter(
	results <-chan solve.Result,
	torrent *metainfo.Torrent,
	files []search.FileRecord,
	interner *catalog.Interner,
	counters *Counters,
	logger *zap.SugaredLogger,
) *Writer {
	return &Writer{
		results:   results,
		torrent:   torrent,
		plans:     torrent.BuildPlans(),
		files:     files,
		interner:  interner,
		counters:  counters,
		logger:    logger,
		openFiles: make(map[core.PathID]*os.File),
	}
}

// Run drains results until the channel is closed or ctx is canceled,
// writing every solved piece's segments into the export tree. It never
// returns an error for a faulted or unfound piece — those only move
// counters.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-w.results:
			if !ok {
				return nil
			}
			w.handle(result)
		}
	}
}

func (w *Writer) handle(result solve.Result) {
	switch result.Outcome {
	case solve.OutcomeFaulted:
		w.counters.incFaulted()
		w.logger.Warnf("piece %d faulted: %s", result.Piece, result.Err)
	case solve.OutcomeUnfound:
		w.counters.incFailed()
	case solve.OutcomeSolved:
		if err := w.writeSolved(result); err != nil {
			w.counters.incFailed()
			w.logger.Errorf("piece %d: writing solved data: %s", result.Piece, err)
			return
		}
		w.counters.incSuccess()
	}
}

func (w *Writer) writeSolved(result solve.Result) error {
	plan := w.plans[result.Piece]

	for i, segment := range plan {
		fr := &w.files[segment.FileIndex]
		source := result.Sources[i]

		if fr.IsPadding || source == fr.ExportTargetID {
			w.counters.incIgnored()
			continue
		}

		f, err := w.openExportFile(fr, segment.FileIndex)
		if err != nil {
			return err
		}

		data := sliceForSegment(result.Data, plan, i)

		if _, err := f.WriteAt(data, segment.FileOffset); err != nil {
			return err
		}
		w.counters.incWritable()
	}
	return nil
}

// sliceForSegment returns the portion of a solved piece's concatenated
// data belonging to plan[i], since Data is the concatenation of every
// segment's chosen candidate bytes in plan order.
func sliceForSegment(data []byte, plan metainfo.PieceReadPlan, i int) []byte {
	offset := int64(0)
	for j := 0; j < i; j++ {
		offset += plan[j].Length
	}
	return data[offset : offset+plan[i].Length]
}

func (w *Writer) openExportFile(fr *search.FileRecord, fileIndex core.FileIndex) (*os.File, error) {
	if f, ok := w.openFiles[fr.ExportTargetID]; ok {
		return f, nil
	}

	path, ok := w.interner.Resolve(fr.ExportTargetID)
	if !ok {
		path = w.torrent.ExportPath("", fileIndex)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() < fr.FileLength {
		if err := f.Truncate(fr.FileLength); err != nil {
			f.Close()
			return nil, err
		}
	}

	w.openFiles[fr.ExportTargetID] = f
	return f, nil
}

// Close releases every cached export file handle.
func (w *Writer) Close() error {
	var firstErr error
	for _, f := range w.openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
