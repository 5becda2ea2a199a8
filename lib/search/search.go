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

// Package search ranks candidate source files on disk against the
// torrent file they are expected to reconstruct.
package search

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/catalog"
)

// FileRecord describes one torrent file awaiting candidate discovery.
// Searches is nil until Discover has run; len(Searches) == 0 never
// occurs — a file with no candidates stays nil, mirroring an Option.
type FileRecord struct {
	FileLength       int64
	ExportTargetID   core.PathID
	RelativeTargetID core.PathID
	IsPadding        bool
	Searches         []core.PathID
}

// Affinity ranks candidate against the two target paths it would ideally
// resolve to, returning the smallest matching tier:
//
//	0 - candidate has exportTarget as a path suffix
//	1 - candidate has relativeTarget as a path suffix
//	2 - candidate's final path component equals relativeTarget's
//	3 - none of the above
func Affinity(candidate, exportTarget, relativeTarget string) int {
	c := filepath.ToSlash(candidate)
	e := filepath.ToSlash(exportTarget)
	r := filepath.ToSlash(relativeTarget)

	if hasPathSuffix(c, e) {
		return 0
	}
	if hasPathSuffix(c, r) {
		return 1
	}
	if filepath.Base(c) == filepath.Base(r) {
		return 2
	}
	return 3
}

// hasPathSuffix reports whether c ends with suffix on a path-component
// boundary, so "x/ab.bin" does not spuriously match suffix "b.bin".
func hasPathSuffix(c, suffix string) bool {
	if suffix == "" {
		return false
	}
	if c == suffix {
		return true
	}
	return strings.HasSuffix(c, "/"+suffix)
}

// Discover finds, ranks, and hard-link-deduplicates the on-disk
// candidates for fr, given byLength (a precomputed catalog.ByLength) and
// the interner/catalog used to resolve paths and disk identity. It does
// nothing for padding files.
func Discover(in *catalog.Interner, cat *catalog.Catalog, byLength map[int64][]core.PathID, fr *FileRecord) {
	if fr.IsPadding {
		return
	}

	candidates := byLength[fr.FileLength]
	if len(candidates) == 0 {
		fr.Searches = nil
		return
	}

	exportTarget, _ := in.Resolve(fr.ExportTargetID)
	relativeTarget, _ := in.Resolve(fr.RelativeTargetID)

	ranked := make([]core.PathID, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, _ := in.Resolve(ranked[i])
		pj, _ := in.Resolve(ranked[j])
		return Affinity(pi, exportTarget, relativeTarget) < Affinity(pj, exportTarget, relativeTarget)
	})

	seen := make(map[[2]uint64]bool, len(ranked))
	var kept []core.PathID
	for _, id := range ranked {
		e, ok := cat.Lookup(id)
		if !ok {
			continue
		}
		key := [2]uint64{e.Device, e.Inode}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, id)
	}

	fr.Searches = kept
}
