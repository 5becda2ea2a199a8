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
	"sort"
	"sync"

	"github.com/uber/kraken-restore/core"
)

// DiskEntry caches the metadata a solver needs from a stat(2) call: the
// object's length and its (device, inode) identity, which two hard-linked
// paths share.
type DiskEntry struct {
	Length uint64
	Device uint64
	Inode  uint64
}

// Catalog maps interned paths to their cached disk metadata.
type Catalog struct {
	mu      sync.RWMutex
	entries map[core.PathID]DiskEntry
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[core.PathID]DiskEntry),
	}
}

// Upsert records or overwrites the disk entry for id.
func (c *Catalog) Upsert(id core.PathID, e DiskEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = e
}

// Lookup returns the disk entry for id, if present.
func (c *Catalog) Lookup(id core.PathID) (DiskEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// SameObject reports whether a and b refer to the same inode.
func (c *Catalog) SameObject(a, b DiskEntry) bool {
	return a.Device == b.Device && a.Inode == b.Inode
}

// ByLength groups every cataloged PathID by its cached length, each group
// in ascending PathID (interning) order. Callers build this once per scan
// and reuse it across every FileRecord lookup in lib/search, turning an
// O(files x catalog) search into O(catalog) preprocessing plus
// O(files x matches).
func (c *Catalog) ByLength() map[int64][]core.PathID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[int64][]core.PathID)
	for id, e := range c.entries {
		l := int64(e.Length)
		out[l] = append(out[l], id)
	}
	for _, ids := range out {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out
}
