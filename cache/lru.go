// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides small caching utilities shared across packages.
package cache

import lru "github.com/hashicorp/golang-lru"

// LRU wraps golang-lru with a read-through helper.
type LRU struct {
	*lru.Cache
}

// NewLRU creates an LRU cache holding at most maxSize entries.
// maxSize must be > 0.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache}, nil
}

// Loader produces the value for a key on a cache miss.
type Loader func(key any) (any, error)

// GetOrLoad returns the cached value for key, loading and caching it on
// a miss. A load error leaves the cache untouched.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}
