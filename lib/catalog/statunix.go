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

//go:build unix

package catalog

import (
	"fmt"
	"os"
	"syscall"
)

// StatUnix is the default device/inode oracle, backed by syscall.Stat_t.
// It is injected into ScanRoot rather than called directly so tests can
// fake hard-link relationships without touching the filesystem.
func StatUnix(path string) (DiskEntry, bool, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return DiskEntry{}, false, err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return DiskEntry{}, false, nil
	}
	if !fi.Mode().IsRegular() {
		return DiskEntry{}, false, nil
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return DiskEntry{}, false, fmt.Errorf("catalog: unsupported stat_t for %s", path)
	}
	return DiskEntry{
		Length: uint64(fi.Size()),
		Device: uint64(st.Dev),
		Inode:  st.Ino,
	}, true, nil
}
