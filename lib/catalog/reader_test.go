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
package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskReaderReadsRange(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(os.WriteFile(path, []byte("0123456789"), 0644))

	in := NewInterner()
	id := in.Intern(path)

	r := NewDiskReader(in)
	data, err := r.ReadRange(id, 3, 4)
	require.NoError(err)
	require.Equal([]byte("3456"), data)
}

func TestDiskReaderUnknownID(t *testing.T) {
	r := NewDiskReader(NewInterner())
	_, err := r.ReadRange(42, 0, 1)
	require.Error(t, err)
}

func TestDiskReaderShortFileErrors(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(os.WriteFile(path, []byte("abc"), 0644))

	in := NewInterner()
	id := in.Intern(path)

	r := NewDiskReader(in)
	_, err := r.ReadRange(id, 0, 10)
	require.Error(err)
}
