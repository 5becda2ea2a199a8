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

// Package metainfo decodes BitTorrent metainfo descriptors into a typed
// Torrent model and derives the per-piece read plans that drive the
// solver. It builds on lib/bencode's position-preserving token tree to
// compute the info-digest without re-encoding.
package metainfo

import (
	"fmt"
	"path"
	"strings"

	"github.com/uber/kraken-restore/core"
	"github.com/uber/kraken-restore/lib/bencode"
)

// File is one entry of a torrent's (possibly single-element, for
// single-file torrents) file list.
type File struct {
	Length    int64
	Path      []string
	IsPadding bool
}

// Torrent is the decoded, validated view of a metainfo descriptor.
type Torrent struct {
	Name        string
	PieceLength int64
	Pieces      []core.Hash20
	Files       []File
	InfoDigest  core.Hash20

	singleFile bool
}

// IsSingleFile reports whether the descriptor declared a single-file
// torrent (a bare "length" field rather than a "files" list).
func (t *Torrent) IsSingleFile() bool {
	return t.singleFile
}

// TotalLength returns the sum of all file lengths, padding included.
func (t *Torrent) TotalLength() int64 {
	var total int64
	for _, f := range t.Files {
		total += f.Length
	}
	return total
}

// NumPieces returns the number of pieces declared by the descriptor.
func (t *Torrent) NumPieces() int {
	return len(t.Pieces)
}

// Decode parses and validates a metainfo descriptor blob, returning a
// Torrent with its info-digest computed from the original byte range of
// the "info" dictionary token.
func Decode(blob []byte) (*Torrent, error) {
	top, err := bencode.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrMalformedDescriptor, err)
	}
	if _, ok := top.AsDict(); !ok {
		return nil, fmt.Errorf("%w: top-level token is not a dictionary", core.ErrMalformedDescriptor)
	}

	info := top.DictGet("info")
	if info == nil {
		return nil, fmt.Errorf("%w: missing \"info\" dictionary", core.ErrMalformedDescriptor)
	}
	if _, ok := info.AsDict(); !ok {
		return nil, fmt.Errorf("%w: \"info\" is not a dictionary", core.ErrMalformedDescriptor)
	}

	t, err := torrentFromInfo(info)
	if err != nil {
		return nil, err
	}
	t.InfoDigest = core.NewHash20FromBytes(blob[info.Start:info.End])
	return t, nil
}

func torrentFromInfo(info *bencode.Token) (*Torrent, error) {
	name, ok := stringField(info, "name")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: missing or empty \"name\"", core.ErrMalformedDescriptor)
	}

	pieceLength, ok := uintField(info, "piece length")
	if !ok || pieceLength == 0 {
		return nil, fmt.Errorf("%w: missing or non-positive \"piece length\"", core.ErrMalformedDescriptor)
	}

	pieces, err := parsePieces(info)
	if err != nil {
		return nil, err
	}

	lengthTok := info.DictGet("length")
	filesTok := info.DictGet("files")
	if lengthTok != nil && filesTok != nil {
		return nil, fmt.Errorf("%w: both \"length\" and \"files\" present", core.ErrMalformedDescriptor)
	}
	if lengthTok == nil && filesTok == nil {
		return nil, fmt.Errorf("%w: neither \"length\" nor \"files\" present", core.ErrMalformedDescriptor)
	}

	var files []File
	singleFile := lengthTok != nil
	if singleFile {
		length, ok := tokenUint(lengthTok)
		if !ok {
			return nil, fmt.Errorf("%w: invalid \"length\"", core.ErrMalformedDescriptor)
		}
		files = []File{{Length: int64(length), Path: []string{name}}}
	} else {
		files, err = parseFiles(filesTok)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: \"files\" is empty", core.ErrMalformedDescriptor)
		}
	}

	t := &Torrent{
		Name:        name,
		PieceLength: int64(pieceLength),
		Pieces:      pieces,
		Files:       files,
		singleFile:  singleFile,
	}

	var total int64
	for _, f := range t.Files {
		total += f.Length
	}
	wantPieces := ceilDiv(total, t.PieceLength)
	if wantPieces != len(t.Pieces) {
		return nil, fmt.Errorf(
			"%w: piece count %d does not match ceil(total_length/piece_length) = %d",
			core.ErrMalformedDescriptor, len(t.Pieces), wantPieces)
	}

	return t, nil
}

func ceilDiv(a, b int64) int {
	if b == 0 {
		return 0
	}
	if a == 0 {
		return 0
	}
	return int((a + b - 1) / b)
}

func parsePieces(info *bencode.Token) ([]core.Hash20, error) {
	tok := info.DictGet("pieces")
	raw, ok := tok.AsString()
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid \"pieces\"", core.ErrMalformedDescriptor)
	}
	if len(raw)%20 != 0 {
		return nil, fmt.Errorf("%w: \"pieces\" length %d is not a multiple of 20", core.ErrMalformedDescriptor, len(raw))
	}
	n := len(raw) / 20
	pieces := make([]core.Hash20, n)
	for i := 0; i < n; i++ {
		copy(pieces[i][:], raw[i*20:(i+1)*20])
	}
	return pieces, nil
}

func parseFiles(filesTok *bencode.Token) ([]File, error) {
	list, ok := filesTok.AsList()
	if !ok {
		return nil, fmt.Errorf("%w: \"files\" is not a list", core.ErrMalformedDescriptor)
	}
	files := make([]File, 0, len(list))
	for _, entry := range list {
		if _, ok := entry.AsDict(); !ok {
			return nil, fmt.Errorf("%w: file entry is not a dictionary", core.ErrMalformedDescriptor)
		}
		length, ok := uintField(entry, "length")
		if !ok {
			return nil, fmt.Errorf("%w: file entry missing non-negative \"length\"", core.ErrMalformedDescriptor)
		}
		pathTok := entry.DictGet("path")
		pathList, ok := pathTok.AsList()
		if !ok || len(pathList) == 0 {
			return nil, fmt.Errorf("%w: file entry has empty or missing \"path\"", core.ErrMalformedDescriptor)
		}
		comps := make([]string, 0, len(pathList))
		for _, c := range pathList {
			s, ok := c.AsString()
			if !ok {
				return nil, fmt.Errorf("%w: path component is not a string", core.ErrMalformedDescriptor)
			}
			comp := string(s)
			if comp == "" || strings.ContainsAny(comp, "/\\") || comp == ".." {
				return nil, fmt.Errorf("%w: invalid path component %q", core.ErrMalformedDescriptor, comp)
			}
			comps = append(comps, comp)
		}
		files = append(files, File{
			Length:    int64(length),
			Path:      comps,
			IsPadding: isPaddingPath(comps),
		})
	}
	return files, nil
}

// isPaddingPath reports whether comps is exactly [".pad", N] with N
// consisting entirely of decimal digits.
func isPaddingPath(comps []string) bool {
	if len(comps) != 2 || comps[0] != ".pad" {
		return false
	}
	n := comps[1]
	if n == "" {
		return false
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func stringField(dict *bencode.Token, key string) (string, bool) {
	s, ok := dict.DictGet(key).AsString()
	if !ok {
		return "", false
	}
	return string(s), true
}

func uintField(dict *bencode.Token, key string) (uint64, bool) {
	return tokenUint(dict.DictGet(key))
}

func tokenUint(tok *bencode.Token) (uint64, bool) {
	n, ok := tok.AsInt()
	if !ok {
		return 0, false
	}
	if n.Sign() < 0 {
		return 0, false
	}
	if !n.IsUint64() {
		return 0, false
	}
	return n.Uint64(), true
}

// ExportRelPath returns the path components of file i relative to a
// torrent's data directory, joined with "/".
func (t *Torrent) ExportRelPath(i core.FileIndex) string {
	f := t.Files[i]
	return path.Join(f.Path...)
}

// ExportRoot returns the canonical export path for the torrent's data
// under exportDir, per the layout:
//
//	<export>/<infodigest-hex>/Data/<name>[/<path...>]
//
// For a single-file torrent this is the file itself; for a multi-file
// torrent it is the directory files are placed under.
func (t *Torrent) ExportRoot(exportDir string) string {
	return path.Join(exportDir, t.InfoDigest.Hex(), "Data", t.Name)
}

// ExportPath returns the full export path of file i.
func (t *Torrent) ExportPath(exportDir string, i core.FileIndex) string {
	if t.singleFile {
		return t.ExportRoot(exportDir)
	}
	return path.Join(t.ExportRoot(exportDir), t.ExportRelPath(i))
}

func (t *Torrent) String() string {
	return fmt.Sprintf("torrent(name=%s, digest=%s, pieces=%d)",
		t.Name, t.InfoDigest.Hex(), len(t.Pieces))
}
