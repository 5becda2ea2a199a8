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

// Package catalog interns filesystem paths into dense PathIDs and caches
// per-path disk metadata (length, device, inode), so the rest of the
// pipeline can pass around a uint32 instead of a string.
package catalog

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/uber/kraken-restore/core"
)

// Interner assigns a dense, stable core.PathID to every path it sees.
// IDs start at 1; 0 is reserved to mean "no path" (see core.PathID).
type Interner struct {
	mu     sync.RWMutex
	byPath map[string]core.PathID
	byID   []string // byID[id-1] == path for id

	frozen atomic.Bool
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{
		byPath: make(map[string]core.PathID),
	}
}

// Intern returns the PathID for path, minting a new one if path has not
// been seen before. Panics if called after Freeze.
func (in *Interner) Intern(path string) core.PathID {
	in.mu.RLock()
	if id, ok := in.byPath[path]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.byPath[path]; ok {
		return id
	}
	if in.frozen.Load() {
		panic("catalog: Intern called after Freeze")
	}
	id := core.PathID(len(in.byID) + 1)
	in.byPath[path] = id
	in.byID = append(in.byID, path)
	return id
}

// Resolve returns the path interned under id, if any.
func (in *Interner) Resolve(id core.PathID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if id == 0 || int(id) > len(in.byID) {
		return "", false
	}
	return in.byID[id-1], true
}

// Freeze prevents any further calls to Intern from minting new IDs.
func (in *Interner) Freeze() {
	in.frozen.Store(true)
}
