// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stellis-node/stellis/kv"
	"github.com/stellis-node/stellis/muxdb"
)

func TestBucket(t *testing.T) {
	store := muxdb.NewMem().NewStore("test")

	b1 := kv.Bucket("b1").NewStore(store)
	b2 := kv.Bucket("b2").NewStore(store)

	assert.Nil(t, b1.Put([]byte("k"), []byte("v1")))
	assert.Nil(t, b2.Put([]byte("k"), []byte("v2")))

	v, err := b1.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = b2.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v2"), v)

	// iteration stays inside the bucket and strips the prefix
	iter := b1.Iterate(kv.Range{})
	defer iter.Release()
	n := 0
	for iter.Next() {
		assert.Equal(t, []byte("k"), iter.Key())
		n++
	}
	assert.Nil(t, iter.Error())
	assert.Equal(t, 1, n)
}

func TestBucketSnapshot(t *testing.T) {
	store := muxdb.NewMem().NewStore("test")
	b := kv.Bucket("b").NewStore(store)

	assert.Nil(t, b.Put([]byte("k"), []byte("old")))

	snap := b.Snapshot()
	defer snap.Release()

	assert.Nil(t, b.Put([]byte("k"), []byte("new")))

	v, err := snap.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("old"), v)
}

func TestBucketDeleteRange(t *testing.T) {
	store := muxdb.NewMem().NewStore("test")

	b1 := kv.Bucket("b1").NewStore(store)
	b2 := kv.Bucket("b2").NewStore(store)

	assert.Nil(t, b1.Put([]byte("a"), []byte("1")))
	assert.Nil(t, b1.Put([]byte("b"), []byte("2")))
	assert.Nil(t, b2.Put([]byte("a"), []byte("3")))

	assert.Nil(t, b1.DeleteRange(context.Background(), kv.Range{}))

	has, err := b1.Has([]byte("a"))
	assert.Nil(t, err)
	assert.False(t, has)

	// the sibling bucket is untouched
	has, err = b2.Has([]byte("a"))
	assert.Nil(t, err)
	assert.True(t, has)
}
