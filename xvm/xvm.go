// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xvm bridges the transaction execution engine and the state
// layer. Adapters translate the engine's native word encoding into tree
// keys, serve height-pinned reads, collect the write set of a block in
// flight and drive the whole block's state change into one atomic commit.
package xvm

import (
	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/felt"
)

// Word is the execution engine's native 32-byte big-endian scalar.
type Word [32]byte

// WordFromFelt converts a field element back into the engine encoding.
// The translation is lossless in both directions.
func WordFromFelt(f felt.Felt) Word {
	return f.Bytes()
}

var (
	// ErrEncoding is returned when an engine word does not fit the field
	// or the tree key space. It is fatal for the block carrying the word
	// and never touches committed state.
	ErrEncoding = errors.New("encoding failure")

	// ErrRootMismatch is returned when the locally computed state root
	// disagrees with the root expected from the settlement layer. The
	// block must be rejected, never recorded.
	ErrRootMismatch = errors.New("root mismatch")
)

// wordToKey translates an engine word into a tree key. Contract addresses
// and storage keys address tree paths, so beyond being a canonical field
// element they must fit the 251-bit key width.
func wordToKey(w Word) (felt.Felt, error) {
	if w[0]&0xf8 != 0 {
		return felt.Zero, errors.WithMessagef(ErrEncoding, "key %x exceeds tree key width", w)
	}
	var f felt.Felt
	if err := f.SetBytesCanonical(w[:]); err != nil {
		return felt.Zero, errors.WithMessagef(ErrEncoding, "key %x", w)
	}
	return f, nil
}

// wordToFelt translates an engine word into a field element, for values
// that are not used as tree keys.
func wordToFelt(w Word) (felt.Felt, error) {
	var f felt.Felt
	if err := f.SetBytesCanonical(w[:]); err != nil {
		return felt.Zero, errors.WithMessagef(ErrEncoding, "word %x", w)
	}
	return f, nil
}
