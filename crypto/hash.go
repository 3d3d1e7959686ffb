// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package crypto provides the hash functions that bind the state layer to
// the settlement layer's verifier.
//
// The node hash function is a pluggable parameter of the trie engine; the
// functions here are the wired defaults. A deployment whose verifier uses a
// different field hash plugs its own HashFunc into trie.New and the
// commitment helpers.
package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"

	"github.com/stellis-node/stellis/felt"
)

// HashFunc combines two field elements into one. Implementations must be
// collision resistant, since trie node identity relies on it.
type HashFunc func(a, b felt.Felt) felt.Felt

var (
	stateVersion     = felt.FromBytes([]byte("STARKNET_STATE_V0"))
	classLeafVersion = felt.FromBytes([]byte("CONTRACT_CLASS_LEAF_V0"))
)

// Pedersen computes the Pedersen hash of two field elements.
func Pedersen(a, b felt.Felt) felt.Felt {
	h := pedersenhash.Pedersen(a.Impl(), b.Impl())
	return felt.New(&h)
}

// PedersenArray computes the chained Pedersen hash of elems,
// finalized with the element count.
func PedersenArray(elems ...felt.Felt) felt.Felt {
	impls := make([]*fp.Element, 0, len(elems))
	for i := range elems {
		impls = append(impls, elems[i].Impl())
	}
	h := pedersenhash.PedersenArray(impls...)
	return felt.New(&h)
}

// StateCommitment combines the contract trie root and the class trie root
// into the global state commitment published on the settlement layer.
// While no class has ever been declared the commitment stays equal to the
// contract root, which keeps pre-class-trie roots verifiable.
func StateCommitment(h HashFunc, contractRoot, classRoot felt.Felt) felt.Felt {
	if classRoot.IsZero() {
		return contractRoot
	}
	return h(h(stateVersion, contractRoot), classRoot)
}

// ContractCommitment computes the leaf value of a contract in the global
// contract trie.
func ContractCommitment(h HashFunc, classHash, storageRoot, nonce felt.Felt) felt.Felt {
	return h(h(h(classHash, storageRoot), nonce), felt.Zero)
}

// ClassLeaf computes the leaf value of a declared class in the class trie.
func ClassLeaf(h HashFunc, compiledClassHash felt.Felt) felt.Felt {
	return h(classLeafVersion, compiledClassHash)
}
