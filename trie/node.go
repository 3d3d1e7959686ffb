// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"errors"
	"fmt"

	"github.com/stellis-node/stellis/felt"
)

// Nodes of the binary trie. A binary node has exactly two non-empty
// children; a subtree holding a single leaf collapses into an edge node
// covering the remaining path. Leaves sit at the fixed depth KeyBits and
// are embedded into their parent's persisted blob rather than stored
// standalone.
type node interface {
	fstring(string) string
	cache() (felt.Felt, bool, bool) // cached hash, hash available, dirty
}

type (
	binaryNode struct {
		children [2]node
		flags    nodeFlag
	}
	edgeNode struct {
		path  bitpath
		child node // binary, value or hash of a stored node
		flags nodeFlag
	}
	hashNode struct {
		hash felt.Felt
	}
	valueNode struct {
		value felt.Felt
		meta  []byte // auxiliary record riding along the leaf, excluded from hashing
	}
)

// nodeFlag contains caching-related metadata about a node.
type nodeFlag struct {
	hash     felt.Felt
	computed bool // whether hash holds the node's hash
	dirty    bool // whether the node must be written to the database
}

func (n *binaryNode) copy() *binaryNode { cpy := *n; return &cpy }
func (n *edgeNode) copy() *edgeNode     { cpy := *n; return &cpy }

func (n *binaryNode) cache() (felt.Felt, bool, bool) {
	return n.flags.hash, n.flags.computed, n.flags.dirty
}
func (n *edgeNode) cache() (felt.Felt, bool, bool) {
	return n.flags.hash, n.flags.computed, n.flags.dirty
}
func (n *hashNode) cache() (felt.Felt, bool, bool)  { return n.hash, true, false }
func (n *valueNode) cache() (felt.Felt, bool, bool) { return n.value, true, true }

// Pretty printing.
func (n *binaryNode) String() string { return n.fstring("") }
func (n *edgeNode) String() string   { return n.fstring("") }
func (n *hashNode) String() string   { return n.fstring("") }
func (n *valueNode) String() string  { return n.fstring("") }

func (n *binaryNode) fstring(ind string) string {
	return fmt.Sprintf("[\n%s  0: %v\n%s  1: %v\n%s]",
		ind, n.children[0].fstring(ind+"  "), ind, n.children[1].fstring(ind+"  "), ind)
}
func (n *edgeNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v}", packBits(n.path), n.child.fstring(ind+"  "))
}
func (n *hashNode) fstring(string) string {
	return fmt.Sprintf("<%v>", n.hash)
}
func (n *valueNode) fstring(string) string {
	return fmt.Sprintf("%v", n.value)
}

// persisted node kinds
const (
	kindBinary = byte(0)
	kindEdge   = byte(1)
)

// child reference tags
const (
	refHash = byte(0)
	refLeaf = byte(1)
)

// encodeNode serializes a collapsed binary or edge node. Children are either
// hash references or embedded leaves; anything else indicates a bug in the
// committer.
func encodeNode(buf []byte, n node) []byte {
	switch n := n.(type) {
	case *binaryNode:
		buf = append(buf, kindBinary)
		buf = appendChildRef(buf, n.children[0])
		buf = appendChildRef(buf, n.children[1])
		return buf
	case *edgeNode:
		buf = append(buf, kindEdge)
		buf = vp.AppendUint32(buf, uint32(len(n.path)))
		buf = append(buf, packBits(n.path)...)
		return appendChildRef(buf, n.child)
	default:
		panic(fmt.Sprintf("trie: encode unexpected node %v", n))
	}
}

func appendChildRef(buf []byte, n node) []byte {
	switch n := n.(type) {
	case *hashNode:
		buf = append(buf, refHash)
		return append(buf, n.hash.Marshal()...)
	case *valueNode:
		buf = append(buf, refLeaf)
		buf = append(buf, n.value.Marshal()...)
		return vp.AppendString(buf, n.meta)
	default:
		panic(fmt.Sprintf("trie: encode unexpected child %v", n))
	}
}

// decodeNode parses a persisted node blob.
func decodeNode(hash felt.Felt, blob []byte) (node, error) {
	if len(blob) == 0 {
		return nil, errors.New("trie: empty node blob")
	}
	kind, rest := blob[0], blob[1:]
	flags := nodeFlag{hash: hash, computed: true}

	switch kind {
	case kindBinary:
		left, rest, err := decodeChildRef(rest)
		if err != nil {
			return nil, err
		}
		right, rest, err := decodeChildRef(rest)
		if err != nil {
			return nil, err
		}
		if len(rest) > 0 {
			return nil, errors.New("trie: trailing bytes in binary node")
		}
		return &binaryNode{children: [2]node{left, right}, flags: flags}, nil
	case kindEdge:
		bits, rest, err := vp.SplitUint32(rest)
		if err != nil {
			return nil, err
		}
		if bits == 0 || bits > KeyBits {
			return nil, errors.New("trie: invalid edge path length")
		}
		nPacked := (int(bits) + 7) / 8
		if len(rest) < nPacked {
			return nil, errors.New("trie: truncated edge path")
		}
		path, err := unpackBits(rest[:nPacked], int(bits))
		if err != nil {
			return nil, err
		}
		child, rest, err := decodeChildRef(rest[nPacked:])
		if err != nil {
			return nil, err
		}
		if len(rest) > 0 {
			return nil, errors.New("trie: trailing bytes in edge node")
		}
		return &edgeNode{path: path, child: child, flags: flags}, nil
	default:
		return nil, fmt.Errorf("trie: unknown node kind %d", kind)
	}
}

func decodeChildRef(buf []byte) (node, []byte, error) {
	if len(buf) < 1+felt.Bytes {
		return nil, nil, errors.New("trie: truncated child ref")
	}
	tag, buf := buf[0], buf[1:]
	var f felt.Felt
	if err := f.SetBytesCanonical(buf[:felt.Bytes]); err != nil {
		return nil, nil, err
	}
	buf = buf[felt.Bytes:]

	switch tag {
	case refHash:
		return &hashNode{hash: f}, buf, nil
	case refLeaf:
		meta, rest, err := vp.SplitString(buf)
		if err != nil {
			return nil, nil, err
		}
		var m []byte
		if len(meta) > 0 {
			m = append(m, meta...)
		}
		return &valueNode{value: f, meta: m}, rest, nil
	default:
		return nil, nil, fmt.Errorf("trie: unknown child tag %d", tag)
	}
}
