// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"base": "src"}
	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	sm.Push()
	sm.Put("k", "v1")

	v, ok, err := sm.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	// lower levels shine through
	v, ok, err = sm.Get("base")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "src", v)

	depth := sm.Push()
	sm.Put("k", "v2")
	v, _, err = sm.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	sm.PopTo(depth)
	v, _, err = sm.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	sm.Pop()
	_, ok, err = sm.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, sm.Depth())
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(any) (any, bool, error) { return nil, false, nil })

	sm.Push()
	sm.Put("a", 1)
	sm.Push()
	sm.Put("b", 2)
	sm.Put("a", 3)

	var got []any
	sm.Journal(func(key, value any) bool {
		got = append(got, key, value)
		return true
	})
	assert.Equal(t, []any{"a", 1, "b", 2, "a", 3}, got)

	// reverted levels leave no journal behind
	sm.Pop()
	got = got[:0]
	sm.Journal(func(key, value any) bool {
		got = append(got, key, value)
		return true
	})
	assert.Equal(t, []any{"a", 1}, got)
}

func TestSourceError(t *testing.T) {
	wantErr := errors.New("storage gone")
	sm := stackedmap.New(func(any) (any, bool, error) { return nil, false, wantErr })

	sm.Push()
	_, _, err := sm.Get("missing")
	assert.ErrorIs(t, err, wantErr)
}
