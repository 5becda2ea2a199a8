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
package orchestrate

import (
	"time"

	"github.com/willf/bitset"

	"github.com/uber/kraken-restore/core"
)

// TorrentReport is one torrent's outcome, including a piece-indexed
// bitfield mirroring agentstorage.Torrent.Bitfield() so a caller can
// inspect exactly which pieces solved without re-deriving it from the
// running counters.
type TorrentReport struct {
	Name     string
	Solved   int
	Unfound  int
	Faulted  int
	Bitfield *bitset.BitSet
}

// Report is the aggregate outcome of one Run.
type Report struct {
	Solved     int
	Unfound    int
	Faulted    int
	PerTorrent map[core.Hash20]*TorrentReport
	Duration   time.Duration
}

func newReport() *Report {
	return &Report{PerTorrent: make(map[core.Hash20]*TorrentReport)}
}

func newTorrentReport(name string, numPieces int) *TorrentReport {
	return &TorrentReport{Name: name, Bitfield: bitset.New(uint(numPieces))}
}

func (tr *TorrentReport) record(piece core.PieceIndex, outcome reportOutcome) {
	switch outcome {
	case reportSolved:
		tr.Solved++
		tr.Bitfield.Set(uint(piece))
	case reportUnfound:
		tr.Unfound++
	case reportFaulted:
		tr.Faulted++
	}
}

type reportOutcome int

const (
	reportSolved reportOutcome = iota
	reportUnfound
	reportFaulted
)
