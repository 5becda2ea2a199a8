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
package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andres-erbsen/clock"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/catalog"
	"github.com/uber/kraken-restore/lib/metainfo"
	"github.com/uber/kraken-restore/lib/schedule"
	"github.com/uber/kraken-restore/lib/search"
	"github.com/uber/kraken-restore/lib/solve"
	"github.com/uber/kraken-restore/lib/write"
	"github.com/uber/kraken-restore/utils/errutil"
)

// Option configures a Run beyond its required arguments, mirroring the
// teacher's functional-option style for components a caller only
// occasionally needs to override.
type Option func(*run)

// WithClock overrides the clock used to time the run. Defaults to the
// real wall clock.
func WithClock(clk clock.Clock) Option {
	return func(r *run) { r.clk = clk }
}

type run struct {
	cfg    Config
	logger *zap.SugaredLogger
	stats  tally.Scope
	clk    clock.Clock

	interner *catalog.Interner
	cat      *catalog.Catalog
}

// Run restores every configured torrent's content into cfg.ExportDir,
// searching cfg.ScanDirs for candidate bytes. It never returns a nil
// Report, even on a fatal setup error, so a caller can inspect whatever
// partial progress was made; the error return is what callers should
// branch on for exit-code purposes.
func Run(ctx context.Context, cfg Config, logger *zap.SugaredLogger, stats tally.Scope, opts ...Option) (*Report, error) {
	r := &run{
		cfg:      cfg,
		logger:   logger,
		stats:    stats,
		clk:      clock.New(),
		interner: catalog.NewInterner(),
		cat:      catalog.NewCatalog(),
	}
	for _, o := range opts {
		o(r)
	}

	report := newReport()
	start := r.clk.Now()
	defer func() { report.Duration = r.clk.Now().Sub(start) }()

	if err := r.validatePaths(); err != nil {
		return report, err
	}

	torrents, decodeErrs := r.decodeTorrents()

	if err := r.prepareExportFiles(torrents); err != nil {
		return report, err
	}

	if err := r.scanDisks(); err != nil {
		return report, err
	}

	filesByTorrent := r.buildFileRecords(torrents)
	r.interner.Freeze()

	pieceRecordsByTorrent := r.buildPieceRecords(torrents, filesByTorrent)

	for _, t := range torrents {
		tr, err := r.restoreTorrent(ctx, t, pieceRecordsByTorrent[t.InfoDigest], filesByTorrent[t.InfoDigest])
		if err != nil {
			return report, err
		}
		report.Solved += tr.Solved
		report.Unfound += tr.Unfound
		report.Faulted += tr.Faulted
		report.PerTorrent[t.InfoDigest] = tr
	}

	return report, errutil.Join(decodeErrs)
}

func (r *run) validatePaths() error {
	paths := append([]string{r.cfg.ExportDir}, r.cfg.ScanDirs...)
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("%w: %s is not an absolute path", core.ErrPathValidation, p)
		}
		fi, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %s", core.ErrPathValidation, p, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", core.ErrPathValidation, p)
		}
	}
	return nil
}

// decodeTorrents reads and decodes every configured descriptor,
// dropping malformed ones and deduplicating the rest by info-digest,
// stably. Decode failures are collected rather than aborting the run,
// since the rest of the batch can still proceed.
func (r *run) decodeTorrents() ([]*metainfo.Torrent, []error) {
	var torrents []*metainfo.Torrent
	var errs []error
	seen := make(map[core.Hash20]bool)

	for _, path := range r.cfg.Torrents {
		blob, err := os.ReadFile(path)
		if err != nil {
			r.logger.Errorf("orchestrate: reading %s: %s", path, err)
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		t, err := metainfo.Decode(blob)
		if err != nil {
			r.logger.Errorf("orchestrate: decoding %s: %s", path, err)
			errs = append(errs, fmt.Errorf("decode %s: %w", path, err))
			continue
		}
		if seen[t.InfoDigest] {
			continue
		}
		seen[t.InfoDigest] = true
		torrents = append(torrents, t)
	}
	return torrents, errs
}

// prepareExportFiles validates every already-existing export file's
// length against its declared length, extends short ones up to that
// length when ResizeExportFiles is set, and interns every surviving
// export file so it is itself discoverable as a search candidate —
// content already sitting in its final destination from a prior partial
// run is found the same way a scanned duplicate is, sparing a redundant
// read and rewrite. An export file longer than declared is always
// fatal; restore never silently truncates existing data away. A short
// export file is fatal too unless ResizeExportFiles opts into
// extending it.
func (r *run) prepareExportFiles(torrents []*metainfo.Torrent) error {
	for _, t := range torrents {
		for i, f := range t.Files {
			if f.IsPadding {
				continue
			}
			path := t.ExportPath(r.cfg.ExportDir, core.FileIndex(i))

			fi, err := os.Stat(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return err
			}
			if fi.Size() > f.Length {
				return fmt.Errorf("%w: %s is %d bytes, declared length is %d",
					core.ErrExportInconsistency, path, fi.Size(), f.Length)
			}
			if fi.Size() < f.Length {
				if !r.cfg.ResizeExportFiles {
					return fmt.Errorf("%w: %s is %d bytes, declared length is %d, and resize-export-files is disabled",
						core.ErrExportInconsistency, path, fi.Size(), f.Length)
				}
				if err := os.Truncate(path, f.Length); err != nil {
					return err
				}
			}

			id := r.interner.Intern(path)
			if entry, ok, err := catalog.StatUnix(path); err == nil && ok {
				r.cat.Upsert(id, entry)
			}
		}
	}
	return nil
}

func (r *run) scanDisks() error {
	for _, dir := range r.cfg.ScanDirs {
		if err := catalog.ScanRoot(r.interner, r.cat, dir, catalog.StatUnix, r.logger); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) buildFileRecords(torrents []*metainfo.Torrent) map[core.Hash20][]search.FileRecord {
	byLength := r.cat.ByLength()
	out := make(map[core.Hash20][]search.FileRecord, len(torrents))

	for _, t := range torrents {
		records := make([]search.FileRecord, len(t.Files))
		for i, f := range t.Files {
			fr := search.FileRecord{
				FileLength:       f.Length,
				ExportTargetID:   r.interner.Intern(t.ExportPath(r.cfg.ExportDir, core.FileIndex(i))),
				RelativeTargetID: r.interner.Intern(t.ExportRelPath(core.FileIndex(i))),
				IsPadding:        f.IsPadding,
			}
			search.Discover(r.interner, r.cat, byLength, &fr)
			records[i] = fr
		}
		out[t.InfoDigest] = records
	}
	return out
}

func (r *run) buildPieceRecords(
	torrents []*metainfo.Torrent,
	filesByTorrent map[core.Hash20][]search.FileRecord,
) map[core.Hash20][]*solve.PieceRecord {
	out := make(map[core.Hash20][]*solve.PieceRecord, len(torrents))

	for _, t := range torrents {
		files := filesByTorrent[t.InfoDigest]
		plans := t.BuildPlans()
		records := make([]*solve.PieceRecord, len(plans))

		for pi, plan := range plans {
			choices := make([]int, len(plan))
			sources := make([][]core.PathID, len(plan))
			unsolvable := false

			for si, seg := range plan {
				fr := &files[seg.FileIndex]
				if fr.IsPadding {
					choices[si] = 1
					continue
				}
				if fr.Searches == nil {
					unsolvable = true
					break
				}
				choices[si] = len(fr.Searches)
				sources[si] = fr.Searches
			}

			if unsolvable {
				choices = nil
				sources = nil
			}

			records[pi] = &solve.PieceRecord{
				ID:      core.PieceIndex(pi),
				Hash:    t.Pieces[pi],
				Plan:    plan,
				Choices: choices,
				Sources: sources,
			}
		}
		out[t.InfoDigest] = records
	}
	return out
}

// restoreTorrent runs the executor and writer for one torrent
// concurrently, fanning executor results through an accounting stage
// before they reach the writer so the returned TorrentReport's bitfield
// reflects exactly which pieces solved.
func (r *run) restoreTorrent(
	ctx context.Context,
	t *metainfo.Torrent,
	pieces []*solve.PieceRecord,
	files []search.FileRecord,
) (*TorrentReport, error) {
	tr := newTorrentReport(t.Name, len(pieces))
	stats := r.stats.Tagged(map[string]string{"torrent": t.InfoDigest.Hex()})

	r.logger.Infof("restoring %s (%s): %d pieces", t.Name, core.LogDigest(t.InfoDigest), len(pieces))

	schedulerOut := make(chan solve.Result, r.cfg.channelCapacity())
	writerIn := make(chan solve.Result, r.cfg.channelCapacity())

	reader := catalog.NewDiskReader(r.interner)
	executor := schedule.NewExecutor(reader, metainfo.SHA1, r.cfg.threads(), schedulerOut, r.logger)

	schedPieces := make([]*schedule.Piece, len(pieces))
	for i, pr := range pieces {
		schedPieces[i] = schedule.NewPiece(pr)
	}

	counters := write.NewCounters(stats)
	writer := write.NewWriter(writerIn, t, files, r.interner, counters, r.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := executor.Run(gctx, schedPieces)
		close(schedulerOut)
		return err
	})

	g.Go(func() error {
		defer close(writerIn)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case res, ok := <-schedulerOut:
				if !ok {
					return nil
				}
				switch res.Outcome {
				case solve.OutcomeSolved:
					tr.record(res.Piece, reportSolved)
				case solve.OutcomeUnfound:
					tr.record(res.Piece, reportUnfound)
				case solve.OutcomeFaulted:
					tr.record(res.Piece, reportFaulted)
				}
				select {
				case writerIn <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	g.Go(func() error {
		return writer.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return tr, err
	}
	r.logger.Infof("restored %s (%s): solved=%d unfound=%d faulted=%d",
		t.Name, core.LogDigest(t.InfoDigest), tr.Solved, tr.Unfound, tr.Faulted)
	return tr, writer.Close()
}
