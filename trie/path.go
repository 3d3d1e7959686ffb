// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"errors"

	"github.com/stellis-node/stellis/felt"
)

// KeyBits is the fixed depth of every trie. Keys are field elements
// restricted to this width, which matches the settlement layer's verifier.
const KeyBits = 251

// ErrKeyOutOfRange is returned when a key does not fit the trie's key width.
var ErrKeyOutOfRange = errors.New("trie: key out of range")

// bitpath is a sequence of key bits, one bit per byte.
// The expanded form keeps prefix arithmetic trivial; bits are packed
// only when a node is serialized.
type bitpath []byte

// keyPath expands the given key into its fixed-width bitpath.
func keyPath(key felt.Felt) (bitpath, error) {
	b := key.Bytes()
	// 252-bit field, 251-bit key space
	if b[0]&0xf8 != 0 {
		return nil, ErrKeyOutOfRange
	}
	path := make(bitpath, KeyBits)
	for i := 0; i < KeyBits; i++ {
		// bit 0 of the path is the most significant key bit
		pos := 256 - KeyBits + i
		if b[pos/8]&(1<<(7-pos%8)) != 0 {
			path[i] = 1
		}
	}
	return path, nil
}

// pathFelt returns the integer value of the path bits as a field element,
// most significant bit first. For a full-depth path this is the leaf's key.
func pathFelt(path bitpath) felt.Felt {
	var b [32]byte
	for i, bit := range path {
		if bit != 0 {
			pos := 256 - len(path) + i
			b[pos/8] |= 1 << (7 - pos%8)
		}
	}
	return felt.FromBytes(b[:])
}

// commonPrefixLen returns the length of the common prefix of a and b.
func commonPrefixLen(a, b bitpath) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// packBits packs the path MSB-first into bytes.
func packBits(path bitpath) []byte {
	packed := make([]byte, (len(path)+7)/8)
	for i, bit := range path {
		if bit != 0 {
			packed[i/8] |= 1 << (7 - i%8)
		}
	}
	return packed
}

// unpackBits undoes packBits for a path of the given bit length.
func unpackBits(packed []byte, bits int) (bitpath, error) {
	if len(packed) != (bits+7)/8 {
		return nil, errors.New("trie: malformed packed path")
	}
	path := make(bitpath, bits)
	for i := range path {
		if packed[i/8]&(1<<(7-i%8)) != 0 {
			path[i] = 1
		}
	}
	return path, nil
}
