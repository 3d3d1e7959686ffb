// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
)

// backend is the shared backend of all tries, holding the node space of
// the engine and the node blob cache. It is safe for concurrent use.
type backend struct {
	store kv.Store
	cache nodeCache
}

// Node loads the encoded node blob keyed by hash, consulting the cache
// first.
func (b *backend) Node(hash felt.Felt) ([]byte, error) {
	if blob := b.cache.Get(hash); blob != nil {
		return blob, nil
	}

	var key [1 + felt.Bytes]byte
	key[0] = trieSpace
	h := hash.Bytes()
	copy(key[1:], h[:])

	blob, err := b.store.Get(key[:])
	if err != nil {
		return nil, err
	}
	b.cache.Add(hash, blob)
	return blob, nil
}

// nodeWriter redirects node blobs into putter under the node space, and
// feeds the cache along the way.
type nodeWriter struct {
	putter kv.Putter
	cache  nodeCache
}

func (w *nodeWriter) Put(hash felt.Felt, blob []byte) error {
	var key [1 + felt.Bytes]byte
	key[0] = trieSpace
	h := hash.Bytes()
	copy(key[1:], h[:])

	if err := w.putter.Put(key[:], blob); err != nil {
		return err
	}
	w.cache.Add(hash, blob)
	return nil
}
