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

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Hash20 is a 20-byte SHA-1 digest. It is used both as a torrent's
// info-digest and as a piece's declared hash.
type Hash20 [20]byte

// NewHash20FromBytes computes the SHA-1 digest of b.
func NewHash20FromBytes(b []byte) Hash20 {
	return Hash20(sha1.Sum(b))
}

// ParseHash20Hex parses a 40-character lowercase hex string into a Hash20.
func ParseHash20Hex(s string) (Hash20, error) {
	if len(s) != 40 {
		return Hash20{}, fmt.Errorf("invalid hash: expected 40 hex characters, got %d", len(s))
	}
	var h Hash20
	n, err := hex.Decode(h[:], []byte(s))
	if err != nil {
		return Hash20{}, fmt.Errorf("invalid hex: %s", err)
	}
	if n != 20 {
		return Hash20{}, fmt.Errorf("invariant violation: expected 20 bytes, got %d", n)
	}
	return h, nil
}

// Bytes returns h as a raw byte slice.
func (h Hash20) Bytes() []byte {
	return h[:]
}

// Hex renders h as lowercase hexadecimal with no separators.
func (h Hash20) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash20) String() string {
	return h.Hex()
}
