// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package trie implements the authenticated binary trie over field
// elements. Every committed node is content-addressed by its hash, so a
// trie of any committed version can be re-opened by root alone, and
// unchanged subtrees are shared between versions for free.
package trie

import (
	"fmt"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
)

// DatabaseReader wraps the Node method of a backing store.
type DatabaseReader interface {
	// Node retrieves the encoded node blob with the given hash.
	Node(hash felt.Felt) ([]byte, error)
}

// DatabaseWriter wraps the Put method of a backing store.
type DatabaseWriter interface {
	// Put stores the encoded node blob under its hash.
	Put(hash felt.Felt, blob []byte) error
}

// Trie is an in-memory representation of a binary felt trie rooted at a
// committed (or empty) root. A zero root felt denotes the empty trie.
//
// Trie is not safe for concurrent use.
type Trie struct {
	root node
	db   DatabaseReader
	hash crypto.HashFunc
}

// New creates a trie rooted at root. If root is the zero felt the trie is
// initially empty. Accessing the trie loads nodes from db on demand.
func New(root felt.Felt, db DatabaseReader, hash crypto.HashFunc) *Trie {
	t := &Trie{db: db, hash: hash}
	if !root.IsZero() {
		t.root = &hashNode{hash: root}
	}
	return t
}

// Copy makes a copy of the trie. The copy shares committed subtrees with
// the original, and must not be used from another goroutine concurrently.
func (t *Trie) Copy() *Trie {
	cpy := *t
	return &cpy
}

// Get returns the value and the auxiliary leaf record for key.
// Missing keys resolve to the zero felt, not an error.
func (t *Trie) Get(key felt.Felt) (felt.Felt, []byte, error) {
	path, err := keyPath(key)
	if err != nil {
		return felt.Zero, nil, err
	}
	value, meta, newRoot, err := t.get(t.root, path)
	if err != nil {
		return felt.Zero, nil, err
	}
	t.root = newRoot
	return value, meta, nil
}

func (t *Trie) get(n node, path bitpath) (felt.Felt, []byte, node, error) {
	switch n := n.(type) {
	case nil:
		return felt.Zero, nil, nil, nil
	case *valueNode:
		return n.value, n.meta, n, nil
	case *edgeNode:
		if commonPrefixLen(n.path, path) < len(n.path) {
			return felt.Zero, nil, n, nil
		}
		value, meta, newChild, err := t.get(n.child, path[len(n.path):])
		if err != nil {
			return felt.Zero, nil, n, err
		}
		n.child = newChild
		return value, meta, n, nil
	case *binaryNode:
		value, meta, newChild, err := t.get(n.children[path[0]], path[1:])
		if err != nil {
			return felt.Zero, nil, n, err
		}
		n.children[path[0]] = newChild
		return value, meta, n, nil
	case *hashNode:
		resolved, err := t.resolve(n.hash)
		if err != nil {
			return felt.Zero, nil, n, err
		}
		return t.get(resolved, path)
	default:
		panic(fmt.Sprintf("trie: unexpected node %v", n))
	}
}

// Update associates key with value. A zero value deletes any existing
// entry; absence and the zero value are indistinguishable by design.
// meta is an auxiliary record stored alongside the leaf; it does not
// contribute to the root hash.
func (t *Trie) Update(key, value felt.Felt, meta []byte) error {
	path, err := keyPath(key)
	if err != nil {
		return err
	}
	if value.IsZero() {
		newRoot, err := t.delete(t.root, path)
		if err != nil {
			return err
		}
		t.root = newRoot
		return nil
	}
	newRoot, err := t.insert(t.root, path, &valueNode{value: value, meta: meta})
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *Trie) insert(n node, path bitpath, value *valueNode) (node, error) {
	switch n := n.(type) {
	case nil:
		if len(path) == 0 {
			return value, nil
		}
		return &edgeNode{path: path, child: value, flags: nodeFlag{dirty: true}}, nil
	case *valueNode:
		// len(path) == 0 here, leaves live at fixed depth
		return value, nil
	case *edgeNode:
		cp := commonPrefixLen(n.path, path)
		if cp == len(n.path) {
			newChild, err := t.insert(n.child, path[cp:], value)
			if err != nil {
				return nil, err
			}
			cpy := n.copy()
			cpy.child = newChild
			cpy.flags = nodeFlag{dirty: true}
			return cpy, nil
		}
		// paths diverge; split the edge with a binary node at the fork
		var branch binaryNode
		branch.flags.dirty = true

		existing := n.child
		if rest := n.path[cp+1:]; len(rest) > 0 {
			existing = &edgeNode{path: rest, child: n.child, flags: nodeFlag{dirty: true}}
		}
		branch.children[n.path[cp]] = existing

		var inserted node = value
		if rest := path[cp+1:]; len(rest) > 0 {
			inserted = &edgeNode{path: rest, child: value, flags: nodeFlag{dirty: true}}
		}
		branch.children[path[cp]] = inserted

		if cp == 0 {
			return &branch, nil
		}
		return &edgeNode{path: path[:cp], child: &branch, flags: nodeFlag{dirty: true}}, nil
	case *binaryNode:
		newChild, err := t.insert(n.children[path[0]], path[1:], value)
		if err != nil {
			return nil, err
		}
		cpy := n.copy()
		cpy.children[path[0]] = newChild
		cpy.flags = nodeFlag{dirty: true}
		return cpy, nil
	case *hashNode:
		resolved, err := t.resolve(n.hash)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, path, value)
	default:
		panic(fmt.Sprintf("trie: unexpected node %v", n))
	}
}

func (t *Trie) delete(n node, path bitpath) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case *valueNode:
		return nil, nil
	case *edgeNode:
		if commonPrefixLen(n.path, path) < len(n.path) {
			// key not present
			return n, nil
		}
		newChild, err := t.delete(n.child, path[len(n.path):])
		if err != nil {
			return nil, err
		}
		if newChild == nil {
			return nil, nil
		}
		// child collapsed into an edge: merge paths to keep the trie canonical
		if child, ok := newChild.(*edgeNode); ok {
			merged := make(bitpath, 0, len(n.path)+len(child.path))
			merged = append(append(merged, n.path...), child.path...)
			return &edgeNode{path: merged, child: child.child, flags: nodeFlag{dirty: true}}, nil
		}
		cpy := n.copy()
		cpy.child = newChild
		cpy.flags = nodeFlag{dirty: true}
		return cpy, nil
	case *binaryNode:
		bit := path[0]
		newChild, err := t.delete(n.children[bit], path[1:])
		if err != nil {
			return nil, err
		}
		if newChild != nil {
			cpy := n.copy()
			cpy.children[bit] = newChild
			cpy.flags = nodeFlag{dirty: true}
			return cpy, nil
		}

		// one side emptied; the node collapses into an edge covering the
		// sibling, which must be resolved to merge a stored edge properly.
		sibling := n.children[1-bit]
		if hn, ok := sibling.(*hashNode); ok {
			resolved, err := t.resolve(hn.hash)
			if err != nil {
				return nil, err
			}
			sibling = resolved
		}
		if sib, ok := sibling.(*edgeNode); ok {
			merged := make(bitpath, 0, 1+len(sib.path))
			merged = append(append(merged, 1-bit), sib.path...)
			return &edgeNode{path: merged, child: sib.child, flags: nodeFlag{dirty: true}}, nil
		}
		return &edgeNode{path: bitpath{1 - bit}, child: sibling, flags: nodeFlag{dirty: true}}, nil
	case *hashNode:
		resolved, err := t.resolve(n.hash)
		if err != nil {
			return nil, err
		}
		return t.delete(resolved, path)
	default:
		panic(fmt.Sprintf("trie: unexpected node %v", n))
	}
}

// Hash returns the root hash of the trie. It does not write to the
// database and may be called at any time.
func (t *Trie) Hash() felt.Felt {
	if t.root == nil {
		return felt.Zero
	}
	h := newHasher(t.hash)
	defer returnHasherToPool(h)

	root, err := h.hash(t.root, nil)
	if err != nil {
		// hashing without a database never resolves nodes
		panic(fmt.Sprintf("trie: hash: %v", err))
	}
	return root
}

// Commit writes all dirty nodes reachable from the root to db and returns
// the new root hash. Only nodes on paths from changed leaves are written;
// untouched subtrees stay referenced by hash.
func (t *Trie) Commit(db DatabaseWriter) (felt.Felt, error) {
	if t.root == nil {
		return felt.Zero, nil
	}
	h := newHasher(t.hash)
	defer returnHasherToPool(h)

	return h.hash(t.root, db)
}

func (t *Trie) resolve(hash felt.Felt) (node, error) {
	if t.db == nil {
		return nil, fmt.Errorf("trie: node %v unresolvable without database", hash.AbbrevString())
	}
	blob, err := t.db.Node(hash)
	if err != nil {
		return nil, &MissingNodeError{Hash: hash, Err: err}
	}
	return decodeNode(hash, blob)
}

// MissingNodeError is returned when a trie node could not be loaded from
// the backing store.
type MissingNodeError struct {
	Hash felt.Felt
	Err  error
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("trie: missing node %v: %v", e.Hash.AbbrevString(), e.Err)
}

func (e *MissingNodeError) Unwrap() error { return e.Err }
