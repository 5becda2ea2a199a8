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
package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uber/kraken-restore/lib/catalog"
)

func TestAffinityExportSuffix(t *testing.T) {
	require.Equal(t, 0, Affinity("/mnt/backup/export/movie.mkv", "export/movie.mkv", "movie.mkv"))
}

func TestAffinityRelativeSuffix(t *testing.T) {
	require.Equal(t, 1, Affinity("/mnt/backup/season1/movie.mkv", "export/season2/movie.mkv", "season1/movie.mkv"))
}

func TestAffinityBasenameMatch(t *testing.T) {
	require.Equal(t, 2, Affinity("/mnt/random/movie.mkv", "export/season2/movie.mkv", "season1/movie.mkv"))
}

func TestAffinityNoMatch(t *testing.T) {
	require.Equal(t, 3, Affinity("/mnt/random/other.mkv", "export/season2/movie.mkv", "season1/movie.mkv"))
}

func TestAffinityNoSpuriousBasenameSuffixMatch(t *testing.T) {
	// "xab.bin" must not match suffix "ab.bin" on a non-component boundary.
	require.Equal(t, 3, Affinity("/mnt/xab.bin", "export/ab.bin", "rel/ab.bin"))
}

func TestDiscoverRanksAndDedupes(t *testing.T) {
	require := require.New(t)

	in := catalog.NewInterner()
	cat := catalog.NewCatalog()

	exportID := in.Intern("export/movie.mkv")
	relID := in.Intern("season1/movie.mkv")

	best := in.Intern("/mnt/a/export/movie.mkv")
	hardlinkOfBest := in.Intern("/mnt/b/export/movie.mkv")
	weaker := in.Intern("/mnt/c/season1/movie.mkv")
	other := in.Intern("/mnt/d/unrelated.bin")

	cat.Upsert(best, catalog.DiskEntry{Length: 10, Device: 1, Inode: 100})
	cat.Upsert(hardlinkOfBest, catalog.DiskEntry{Length: 10, Device: 1, Inode: 100})
	cat.Upsert(weaker, catalog.DiskEntry{Length: 10, Device: 1, Inode: 200})
	cat.Upsert(other, catalog.DiskEntry{Length: 10, Device: 1, Inode: 300})

	byLen := cat.ByLength()
	fr := &FileRecord{
		FileLength:       10,
		ExportTargetID:   exportID,
		RelativeTargetID: relID,
	}
	Discover(in, cat, byLen, fr)

	require.Len(fr.Searches, 3)
	require.Equal(best, fr.Searches[0])
}

func TestDiscoverNoCandidatesLeavesNil(t *testing.T) {
	in := catalog.NewInterner()
	cat := catalog.NewCatalog()
	byLen := cat.ByLength()

	fr := &FileRecord{FileLength: 4}
	Discover(in, cat, byLen, fr)

	require.Nil(t, fr.Searches)
}

func TestDiscoverSkipsPadding(t *testing.T) {
	in := catalog.NewInterner()
	cat := catalog.NewCatalog()
	id := in.Intern("/mnt/a")
	cat.Upsert(id, catalog.DiskEntry{Length: 4})
	byLen := cat.ByLength()

	fr := &FileRecord{FileLength: 4, IsPadding: true}
	Discover(in, cat, byLen, fr)

	require.Nil(t, fr.Searches)
}
