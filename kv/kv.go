// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the boundary to the backing key-value engine: an
// ordered byte-string store with point-in-time snapshots and atomic
// batched writes.
package kv

import "context"

// Getter defines methods to read kv.
type Getter interface {
	// Get returns the value for the given key.
	// An error is returned if the key is not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Snapshot is a consistent point-in-time read handle of the store.
// Reads through a snapshot are isolated from concurrent writes.
type Snapshot interface {
	Getter
	Release()
}

// Bulk batches writes. All puts are applied atomically on Write,
// unless auto-flush is enabled.
type Bulk interface {
	Putter
	// EnableAutoFlush allows the bulk to flush piecewise when it grows
	// large. It trades atomicity for bounded memory, so it must only be
	// used for rebuildable data.
	EnableAutoFlush()
	Write() error
}

// Iterator iterates over kv pairs in key order.
type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Prev() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the key range [Start, Limit).
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Snapshot() Snapshot
	Bulk() Bulk
	Iterate(r Range) Iterator
	DeleteRange(ctx context.Context, r Range) error
}
