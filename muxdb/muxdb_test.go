// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/trie"
)

func TestNamedStore(t *testing.T) {
	db := NewMem()
	defer db.Close()

	s1 := db.NewStore("a")
	s2 := db.NewStore("b")

	require.NoError(t, s1.Put([]byte("key"), []byte("s1")))
	require.NoError(t, s2.Put([]byte("key"), []byte("s2")))

	v, err := s1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("s1"), v)

	v, err = s2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("s2"), v)

	_, err = s1.Get([]byte("missing"))
	assert.True(t, s1.IsNotFound(err))
	assert.True(t, db.IsNotFound(err))
}

func TestTrieCommitReopen(t *testing.T) {
	db := NewMem()
	defer db.Close()

	tr := db.NewTrie(felt.Zero, crypto.Pedersen)
	for i := uint64(0); i < 100; i++ {
		require.NoError(t, tr.Update(felt.FromUint64(i), felt.FromUint64(i+1), nil))
	}
	root, err := tr.Commit()
	require.NoError(t, err)

	reopened := db.NewTrie(root, crypto.Pedersen)
	for i := uint64(0); i < 100; i++ {
		v, _, err := reopened.Get(felt.FromUint64(i))
		require.NoError(t, err)
		assert.True(t, v.Equal(felt.FromUint64(i+1)))
	}
}

func TestTrieCommitToDefersWrite(t *testing.T) {
	db := NewMem()
	defer db.Close()

	tr := db.NewTrie(felt.Zero, crypto.Pedersen)
	require.NoError(t, tr.Update(felt.FromUint64(1), felt.FromUint64(2), nil))

	bulk := db.NewBulk()
	root, err := tr.CommitTo(bulk)
	require.NoError(t, err)

	// nothing visible until the bulk lands
	_, _, err = db.NewTrie(root, crypto.Pedersen).Get(felt.FromUint64(1))
	var missing *trie.MissingNodeError
	assert.ErrorAs(t, err, &missing)

	require.NoError(t, bulk.Write())

	v, _, err := db.NewTrie(root, crypto.Pedersen).Get(felt.FromUint64(1))
	require.NoError(t, err)
	assert.True(t, v.Equal(felt.FromUint64(2)))
}

func TestBulkSpansSpaces(t *testing.T) {
	db := NewMem()
	defer db.Close()

	tr := db.NewTrie(felt.Zero, crypto.Pedersen)
	require.NoError(t, tr.Update(felt.FromUint64(7), felt.FromUint64(8), nil))

	bulk := db.NewBulk()
	root, err := tr.CommitTo(bulk)
	require.NoError(t, err)
	require.NoError(t, db.NewStorePutter("recs", bulk).Put([]byte("root"), root.Marshal()))
	require.NoError(t, bulk.Write())

	got, err := db.NewStore("recs").Get([]byte("root"))
	require.NoError(t, err)
	assert.Equal(t, root.Marshal(), got)
}

func TestOpenSchemaGuard(t *testing.T) {
	dir := t.TempDir()

	db, err := Open(dir, &Options{})
	require.NoError(t, err)

	store := db.NewStore("x")
	require.NoError(t, store.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = Open(dir, &Options{TrieNodeCacheSizeMB: 8})
	require.NoError(t, err)
	got, err := db.NewStore("x").Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	require.NoError(t, db.Close())
}
