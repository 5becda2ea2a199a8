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
	digest "github.com/opencontainers/go-digest"
)

// LogDigest renders h in the "<algo>:<hex>" form used throughout
// go-digest-based logging and tooling, so info-digests read the same way
// in kraken-restore's logs as blob digests do in kraken's.
func LogDigest(h Hash20) digest.Digest {
	return digest.NewDigestFromEncoded(digest.Algorithm("sha1"), h.Hex())
}
