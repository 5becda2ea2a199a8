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
	"fmt"
	"os"

	"github.com/uber/kraken-restore/core"
)

// DiskReader implements solve.Reader by resolving a PathID back to its
// filesystem path through an Interner and reading the requested range
// with a fresh file handle each call. Candidate files are read at most
// once per piece (lib/solve preloads and dedups), so there is no benefit
// to caching handles here the way lib/write does for export files.
type DiskReader struct {
	in *Interner
}

// NewDiskReader returns a DiskReader resolving paths through in.
func NewDiskReader(in *Interner) *DiskReader {
	return &DiskReader{in: in}
}

// ReadRange reads length bytes at offset from the file interned as id.
func (r *DiskReader) ReadRange(id core.PathID, offset, length int64) ([]byte, error) {
	path, ok := r.in.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("catalog: no path interned for id %d", id)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("catalog: read %s at %d: %w", path, offset, err)
	}
	return buf, nil
}
