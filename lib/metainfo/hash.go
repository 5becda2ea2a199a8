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

// SHA1 is the default hash20 primitive used everywhere a piece's
// candidate bytes are checked against its declared digest. It is passed
// down as a plain func value rather than called directly, so lib/solve
// never imports crypto/sha1 itself.
func SHA1(b []byte) core.Hash20 {
	return core.NewHash20FromBytes(b)
}
