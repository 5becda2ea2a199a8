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

import "errors"

// Sentinel errors for the error taxonomy in the design's error handling
// section. Callers wrap these with fmt.Errorf("...: %w", ErrX) to attach
// context, and check with errors.Is.
var (
	// ErrMalformedDescriptor indicates a decoder, model, or invariant
	// failure on a metainfo descriptor. Fatal for that torrent only.
	ErrMalformedDescriptor = errors.New("malformed descriptor")

	// ErrPathValidation indicates a non-absolute or non-directory scan
	// or export path. Fatal for the whole run.
	ErrPathValidation = errors.New("path validation failed")

	// ErrExportInconsistency indicates an existing export file's length
	// does not match its declared length: it is longer, or it is shorter
	// while resizing export files is disabled. Fatal; an export file is
	// never truncated.
	ErrExportInconsistency = errors.New("export file length does not match declared length")
)
