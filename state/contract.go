// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
)

// Contract is the per-contract record kept in the global tree. The leaf
// value commits to it; the record itself rides along as leaf metadata so
// historical reads recover it by plain traversal.
type Contract struct {
	ClassHash    felt.Felt
	Nonce        felt.Felt
	StorageRoot  felt.Felt
	DeployHeight uint64
}

// IsEmpty returns if the contract is never deployed.
func (c *Contract) IsEmpty() bool {
	return c.ClassHash.IsZero() && c.Nonce.IsZero() && c.StorageRoot.IsZero()
}

// loadContract loads the contract record for the given address.
// The zero record is returned when the address is not deployed.
func loadContract(trie *muxdb.Trie, addr felt.Felt) (*Contract, bool, error) {
	value, meta, err := trie.Get(addr)
	if err != nil {
		return nil, false, err
	}
	if value.IsZero() {
		return &Contract{}, false, nil
	}
	var c Contract
	if err := rlp.DecodeBytes(meta, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

// saveContract writes the contract record under addr. The leaf value is
// the contract commitment; the full record goes into leaf metadata.
func saveContract(trie *muxdb.Trie, hash crypto.HashFunc, addr felt.Felt, c *Contract) error {
	if c.IsEmpty() {
		// a contract reduced to the zero record leaves no leaf behind,
		// so its tree shape matches one never deployed
		return trie.Update(addr, felt.Zero, nil)
	}
	meta, err := rlp.EncodeToBytes(c)
	if err != nil {
		return err
	}
	commitment := crypto.ContractCommitment(hash, c.ClassHash, c.StorageRoot, c.Nonce)
	return trie.Update(addr, commitment, meta)
}

// loadClass returns the compiled class hash recorded for classHash, or
// the zero felt when the class was never declared.
func loadClass(trie *muxdb.Trie, classHash felt.Felt) (felt.Felt, error) {
	value, meta, err := trie.Get(classHash)
	if err != nil {
		return felt.Zero, err
	}
	if value.IsZero() {
		return felt.Zero, nil
	}
	return felt.FromBytes(meta), nil
}

// saveClass records a declared class in the class tree.
func saveClass(trie *muxdb.Trie, hash crypto.HashFunc, classHash, compiledClassHash felt.Felt) error {
	if compiledClassHash.IsZero() {
		return trie.Update(classHash, felt.Zero, nil)
	}
	leaf := crypto.ClassLeaf(hash, compiledClassHash)
	return trie.Update(classHash, leaf, compiledClassHash.Marshal())
}
