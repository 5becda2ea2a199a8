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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIdempotent(t *testing.T) {
	require := require.New(t)

	in := NewInterner()
	a := in.Intern("/a")
	b := in.Intern("/a")
	require.Equal(a, b)

	c := in.Intern("/b")
	require.NotEqual(a, c)
}

func TestInternZeroReserved(t *testing.T) {
	in := NewInterner()
	id := in.Intern("/a")
	require.NotZero(t, id)
}

func TestResolve(t *testing.T) {
	require := require.New(t)

	in := NewInterner()
	id := in.Intern("/a")
	path, ok := in.Resolve(id)
	require.True(ok)
	require.Equal("/a", path)

	_, ok = in.Resolve(0)
	require.False(ok)
}

func TestInternAfterFreezePanics(t *testing.T) {
	in := NewInterner()
	in.Intern("/a")
	in.Freeze()

	require.Panics(t, func() {
		in.Intern("/b")
	})
}

func TestFreezeAllowsRepeatIntern(t *testing.T) {
	require := require.New(t)

	in := NewInterner()
	id := in.Intern("/a")
	in.Freeze()

	require.NotPanics(func() {
		again := in.Intern("/a")
		require.Equal(id, again)
	})
}
