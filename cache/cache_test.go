// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/cache"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := cache.NewLRU(16)
	require.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(int) * 2, nil
	}

	v, err := c.GetOrLoad(21, loader)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrLoad(21, loader)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, loads)

	wantErr := errors.New("load failed")
	_, err = c.GetOrLoad(22, func(any) (any, error) { return nil, wantErr })
	assert.ErrorIs(t, err, wantErr)
	// failed loads are not cached
	_, ok := c.Get(22)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	var s cache.Stats

	s.Hit()
	s.Hit()
	s.Miss()

	changed, hit, miss := s.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = s.Stats()
	assert.False(t, changed)
}
