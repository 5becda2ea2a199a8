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
package core

// PathID is a dense integer identifier assigned by the path interner.
// Zero is reserved to mean "no source" (e.g. a padding segment).
type PathID uint32

// FileIndex identifies a file within a torrent's declared file list.
type FileIndex int

// PieceIndex identifies a piece within a torrent.
type PieceIndex int
