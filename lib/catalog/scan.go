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
package catalog

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// StatFunc is the device/inode oracle ScanRoot stats each regular file
// through. It returns ok=false for entries that should be skipped (not a
// regular file) without that being an error.
type StatFunc func(path string) (DiskEntry, bool, error)

// ScanRoot walks root, interning every regular file it finds and
// populating cat with its disk metadata. Directories and symlinks are
// skipped. Per-entry stat or walk errors are logged and skipped rather
// than aborting the walk, since a single unreadable file should not stop
// discovery of the rest of the disk.
//
// ScanRoot is idempotent across overlapping roots: a PathID already
// present in cat is never re-stat'ed, so whichever root reaches a given
// path first wins.
func ScanRoot(in *Interner, cat *Catalog, root string, stat StatFunc, logger *zap.SugaredLogger) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("catalog: skipping %s: %s", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		id := in.Intern(path)
		if _, ok := cat.Lookup(id); ok {
			return nil
		}

		entry, ok, err := stat(path)
		if err != nil {
			logger.Warnf("catalog: stat %s: %s", path, err)
			return nil
		}
		if !ok {
			return nil
		}
		cat.Upsert(id, entry)
		return nil
	})
}
