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
package write

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"testing"
)

func buildSingleFileDescriptorForWriteTest(t *testing.T, name string, content []byte, pieceLength int) []byte {
	t.Helper()

	var pieces bytes.Buffer
	for i := 0; i < len(content); i += pieceLength {
		end := i + pieceLength
		if end > len(content) {
			end = len(content)
		}
		sum := sha1.Sum(content[i:end])
		pieces.Write(sum[:])
	}

	info := fmt.Sprintf("d6:lengthi%de4:name%d:%s12:piece lengthi%de6:pieces%d:%se",
		len(content), len(name), name, pieceLength, pieces.Len(), pieces.String())
	return []byte(fmt.Sprintf("d8:announce3:foo4:info%se", info))
}
