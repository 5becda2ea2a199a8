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

// Package choice enumerates a piece's Cartesian product of segment
// candidates and splits it into contiguous tasks sized for parallel
// workers.
package choice

import "github.com/willf/bitset"

// Axis is one segment's candidate count in a piece's search space.
type Axis struct {
	Count int
}

// split classifies each of the len(counts) axes as Mask (bit set) or
// Range (bit clear), choosing the classification whose Mask-product is
// the smallest value still >= target. If no classification reaches
// target, every axis is classified Range (mask-product 1, a single task
// covering the whole space).
//
// Mask-product is monotonically non-decreasing as more axes are
// classified Mask (every count is >= 1), so a depth-first search over
// the 2^k classifications can prune the moment a partial product
// exceeds the best candidate found so far.
func split(counts []int, target int) (mask *bitset.BitSet, maskProduct int) {
	k := len(counts)

	bestMask := bitset.New(uint(k))
	bestProduct := 0 // 0 means "no classification reaching target found yet"

	var rec func(i, product int, cur *bitset.BitSet)
	rec = func(i, product int, cur *bitset.BitSet) {
		if bestProduct != 0 && product > bestProduct {
			return
		}
		if i == k {
			if product >= target && (bestProduct == 0 || product < bestProduct) {
				bestProduct = product
				bestMask = cur.Clone()
			}
			return
		}
		cur.Set(uint(i))
		rec(i+1, product*counts[i], cur)
		cur.Clear(uint(i))

		rec(i+1, product, cur)
	}
	rec(0, 1, bitset.New(uint(k)))

	if bestProduct == 0 {
		return bitset.New(uint(k)), 1
	}
	return bestMask, bestProduct
}
