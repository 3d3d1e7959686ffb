// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
	"github.com/stellis-node/stellis/trie"
)

// Trie is the managed trie: a trie.Trie bound to the DB's node space and
// blob cache.
//
// Like the raw trie it is not safe for concurrent use; concurrent readers
// each open their own instance over the same root.
type Trie struct {
	back *backend
	trie *trie.Trie
}

func newTrie(back *backend, root felt.Felt, hash crypto.HashFunc) *Trie {
	return &Trie{
		back: back,
		trie: trie.New(root, back, hash),
	}
}

// Copy makes a copy of the trie, sharing committed subtrees.
func (t *Trie) Copy() *Trie {
	return &Trie{back: t.back, trie: t.trie.Copy()}
}

// Get returns the value and leaf record for key.
func (t *Trie) Get(key felt.Felt) (felt.Felt, []byte, error) {
	return t.trie.Get(key)
}

// Update associates key with value. A zero value deletes the entry. meta
// is stored alongside the leaf without contributing to the root hash.
func (t *Trie) Update(key, value felt.Felt, meta []byte) error {
	return t.trie.Update(key, value, meta)
}

// Hash returns the root hash without persisting anything.
func (t *Trie) Hash() felt.Felt {
	return t.trie.Hash()
}

// CommitTo stages all dirty nodes on the given putter and returns the new
// root hash. Nothing is durable until the putter's backing bulk is
// written.
func (t *Trie) CommitTo(putter kv.Putter) (felt.Felt, error) {
	return t.trie.Commit(&nodeWriter{putter: putter, cache: t.back.cache})
}

// Commit persists all dirty nodes in a bulk of its own and returns the
// new root hash.
func (t *Trie) Commit() (felt.Felt, error) {
	bulk := t.back.store.Bulk()
	root, err := t.CommitTo(bulk)
	if err != nil {
		return felt.Zero, err
	}
	if err := bulk.Write(); err != nil {
		return felt.Zero, err
	}
	return root, nil
}

// NodeIterator returns an iterator over all nodes reachable from the
// trie's root.
func (t *Trie) NodeIterator() *trie.Iterator {
	return t.trie.NodeIterator()
}
