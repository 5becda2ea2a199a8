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
package metainfo

import "github.com/uber/kraken-restore/core"

// Segment is the intersection of one piece and one file: a contiguous
// byte range [FileOffset, FileOffset+Length) of file FileIndex.
type Segment struct {
	FileIndex core.FileIndex
	FileOffset int64
	Length     int64
}

// PieceReadPlan is the ordered sequence of segments that make up one
// piece. Segment lengths sum to PieceLength, except for the final piece
// which may be short.
type PieceReadPlan []Segment

// BuildPlans lays out t's files in declaration order and splits them at
// piece boundaries, deterministically producing one PieceReadPlan per
// declared piece.
func (t *Torrent) BuildPlans() []PieceReadPlan {
	plans := make([]PieceReadPlan, len(t.Pieces))

	fileIdx := 0
	offsetInFile := int64(0)

	for pi := range plans {
		remaining := t.PieceLength
		if pi == len(plans)-1 {
			total := t.TotalLength()
			consumed := t.PieceLength * int64(pi)
			if total-consumed < remaining {
				remaining = total - consumed
			}
		}

		var plan PieceReadPlan
		for remaining > 0 && fileIdx < len(t.Files) {
			f := t.Files[fileIdx]
			available := f.Length - offsetInFile
			if available <= 0 {
				fileIdx++
				offsetInFile = 0
				continue
			}
			take := available
			if take > remaining {
				take = remaining
			}
			plan = append(plan, Segment{
				FileIndex:  core.FileIndex(fileIdx),
				FileOffset: offsetInFile,
				Length:     take,
			})
			offsetInFile += take
			remaining -= take
			if offsetInFile >= f.Length {
				fileIdx++
				offsetInFile = 0
			}
		}
		plans[pi] = plan
	}

	return plans
}
