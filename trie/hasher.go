// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"fmt"
	"sync"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
)

// hasher computes node hashes bottom-up and optionally persists dirty
// nodes along the way. Hashers are pooled to reuse the encode buffer.
type hasher struct {
	fn  crypto.HashFunc
	buf []byte
}

var hasherPool = sync.Pool{
	New: func() any { return &hasher{} },
}

func newHasher(fn crypto.HashFunc) *hasher {
	h := hasherPool.Get().(*hasher)
	h.fn = fn
	return h
}

func returnHasherToPool(h *hasher) {
	h.fn = nil
	hasherPool.Put(h)
}

// hash returns the hash of n. If db is non-nil, every dirty node in the
// subtree is encoded and stored under its hash, and marked clean.
func (h *hasher) hash(n node, db DatabaseWriter) (felt.Felt, error) {
	switch n := n.(type) {
	case *hashNode:
		return n.hash, nil
	case *valueNode:
		return n.value, nil
	case *edgeNode:
		if hash, computed, dirty := n.cache(); computed && (!dirty || db == nil) {
			return hash, nil
		}
		childHash, err := h.hash(n.child, db)
		if err != nil {
			return felt.Zero, err
		}
		if !n.flags.computed {
			// H(child, path) + len(path)
			sum := h.fn(childHash, pathFelt(n.path))
			var length felt.Felt
			length.SetUint64(uint64(len(n.path)))
			n.flags.hash.Add(sum, length)
			n.flags.computed = true
		}
		if db != nil && n.flags.dirty {
			collapsed := edgeNode{path: n.path, child: h.collapse(n.child, childHash)}
			if err := h.store(&collapsed, n.flags.hash, db); err != nil {
				return felt.Zero, err
			}
			n.flags.dirty = false
		}
		return n.flags.hash, nil
	case *binaryNode:
		if hash, computed, dirty := n.cache(); computed && (!dirty || db == nil) {
			return hash, nil
		}
		leftHash, err := h.hash(n.children[0], db)
		if err != nil {
			return felt.Zero, err
		}
		rightHash, err := h.hash(n.children[1], db)
		if err != nil {
			return felt.Zero, err
		}
		if !n.flags.computed {
			n.flags.hash = h.fn(leftHash, rightHash)
			n.flags.computed = true
		}
		if db != nil && n.flags.dirty {
			collapsed := binaryNode{children: [2]node{
				h.collapse(n.children[0], leftHash),
				h.collapse(n.children[1], rightHash),
			}}
			if err := h.store(&collapsed, n.flags.hash, db); err != nil {
				return felt.Zero, err
			}
			n.flags.dirty = false
		}
		return n.flags.hash, nil
	default:
		panic(fmt.Sprintf("trie: hash unexpected node %v", n))
	}
}

// collapse substitutes an in-memory child with its persisted reference.
// Leaves keep their full record so traversal can recover it.
func (h *hasher) collapse(n node, hash felt.Felt) node {
	if vn, ok := n.(*valueNode); ok {
		return vn
	}
	return &hashNode{hash: hash}
}

func (h *hasher) store(n node, hash felt.Felt, db DatabaseWriter) error {
	h.buf = encodeNode(h.buf[:0], n)
	blob := make([]byte, len(h.buf))
	copy(blob, h.buf)
	return db.Put(hash, blob)
}
