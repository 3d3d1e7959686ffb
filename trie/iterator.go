// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"github.com/stellis-node/stellis/felt"
)

// Iterator walks the trie in depth-first pre-order, resolving stored
// nodes on demand. It is used for audits and offline sweeps over a
// committed version.
type Iterator struct {
	trie  *Trie
	stack []iterFrame
	err   error
	init  bool
}

type iterFrame struct {
	node node
	path bitpath
	next int // next child index to descend into
}

// NodeIterator returns an iterator over all nodes reachable from the
// trie's root. The trie must not be mutated while iterating.
func (t *Trie) NodeIterator() *Iterator {
	return &Iterator{trie: t}
}

// Next moves the iterator to the next node. It returns false when the
// traversal is done or has failed; check Error afterwards.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	if !it.init {
		it.init = true
		if it.trie.root == nil {
			return false
		}
		return it.push(it.trie.root, nil)
	}
	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		child, childPath := frame.advance()
		if child == nil {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		return it.push(child, childPath)
	}
	return false
}

// advance yields the next unvisited child of the frame's node, or nil when
// the node is exhausted.
func (f *iterFrame) advance() (node, bitpath) {
	switch n := f.node.(type) {
	case *binaryNode:
		for f.next < 2 {
			i := f.next
			f.next++
			if n.children[i] != nil {
				return n.children[i], append(append(bitpath{}, f.path...), byte(i))
			}
		}
	case *edgeNode:
		if f.next == 0 {
			f.next++
			return n.child, append(append(bitpath{}, f.path...), n.path...)
		}
	}
	return nil, nil
}

func (it *Iterator) push(n node, path bitpath) bool {
	if hn, ok := n.(*hashNode); ok {
		resolved, err := it.trie.resolve(hn.hash)
		if err != nil {
			it.err = err
			return false
		}
		n = resolved
	}
	it.stack = append(it.stack, iterFrame{node: n, path: path})
	return true
}

// Error returns the failure that stopped the iteration, if any.
func (it *Iterator) Error() error { return it.err }

// Hash returns the hash of the current node, or the zero felt when it has
// not been committed or hashed yet.
func (it *Iterator) Hash() felt.Felt {
	if len(it.stack) == 0 {
		return felt.Zero
	}
	if hash, computed, _ := it.stack[len(it.stack)-1].node.cache(); computed {
		return hash
	}
	return felt.Zero
}

// Path returns the bit path from the root to the current node.
func (it *Iterator) Path() []byte {
	if len(it.stack) == 0 {
		return nil
	}
	return it.stack[len(it.stack)-1].path
}

// Leaf reports whether the current node is a leaf.
func (it *Iterator) Leaf() bool {
	if len(it.stack) == 0 {
		return false
	}
	_, ok := it.stack[len(it.stack)-1].node.(*valueNode)
	return ok
}

// LeafKey returns the key of the current leaf.
func (it *Iterator) LeafKey() felt.Felt {
	return pathFelt(it.Path())
}

// LeafValue returns the value of the current leaf, or the zero felt when
// the current node is not a leaf.
func (it *Iterator) LeafValue() felt.Felt {
	if len(it.stack) == 0 {
		return felt.Zero
	}
	if vn, ok := it.stack[len(it.stack)-1].node.(*valueNode); ok {
		return vn.value
	}
	return felt.Zero
}

// LeafMeta returns the auxiliary record of the current leaf.
func (it *Iterator) LeafMeta() []byte {
	if len(it.stack) == 0 {
		return nil
	}
	if vn, ok := it.stack[len(it.stack)-1].node.(*valueNode); ok {
		return vn.meta
	}
	return nil
}
