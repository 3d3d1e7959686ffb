// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
)

// View is a read-only handle pinned at one committed version of the world
// state. It holds roots only; every read opens fresh tree handles over
// immutable content-addressed nodes, so a View is safe for concurrent use
// and its answers never change, regardless of later commits.
type View struct {
	db           *muxdb.MuxDB
	hash         crypto.HashFunc
	contractRoot felt.Felt
	classRoot    felt.Felt
}

// NewView create a View over the given tree roots.
func NewView(db *muxdb.MuxDB, hash crypto.HashFunc, contractRoot, classRoot felt.Felt) *View {
	return &View{db: db, hash: hash, contractRoot: contractRoot, classRoot: classRoot}
}

// Roots returns the pinned contract and class tree roots.
func (v *View) Roots() (contractRoot, classRoot felt.Felt) {
	return v.contractRoot, v.classRoot
}

// StateRoot returns the state commitment of the pinned version.
func (v *View) StateRoot() felt.Felt {
	return crypto.StateCommitment(v.hash, v.contractRoot, v.classRoot)
}

func (v *View) contract(addr felt.Felt) (*Contract, error) {
	c, _, err := loadContract(v.db.NewTrie(v.contractRoot, v.hash), addr)
	if err != nil {
		return nil, &Error{err}
	}
	return c, nil
}

// StorageAt returns the storage value of the given contract and key,
// zero when absent.
func (v *View) StorageAt(addr, key felt.Felt) (felt.Felt, error) {
	c, err := v.contract(addr)
	if err != nil {
		return felt.Zero, err
	}
	if c.StorageRoot.IsZero() {
		return felt.Zero, nil
	}
	value, _, err := v.db.NewTrie(c.StorageRoot, v.hash).Get(key)
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return value, nil
}

// NonceAt returns the nonce of the given contract, zero when not deployed.
func (v *View) NonceAt(addr felt.Felt) (felt.Felt, error) {
	c, err := v.contract(addr)
	if err != nil {
		return felt.Zero, err
	}
	return c.Nonce, nil
}

// ClassHashAt returns the class hash of the given contract, zero when not
// deployed.
func (v *View) ClassHashAt(addr felt.Felt) (felt.Felt, error) {
	c, err := v.contract(addr)
	if err != nil {
		return felt.Zero, err
	}
	return c.ClassHash, nil
}

// ContractAt returns the full contract record, and whether the contract
// is deployed.
func (v *View) ContractAt(addr felt.Felt) (*Contract, bool, error) {
	c, deployed, err := loadContract(v.db.NewTrie(v.contractRoot, v.hash), addr)
	if err != nil {
		return nil, false, &Error{err}
	}
	return c, deployed, nil
}

// CompiledClassHashAt returns the compiled class hash recorded for the
// given class hash, zero when undeclared.
func (v *View) CompiledClassHashAt(classHash felt.Felt) (felt.Felt, error) {
	cch, err := loadClass(v.db.NewTrie(v.classRoot, v.hash), classHash)
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return cch, nil
}

// CompiledClassAt returns the compiled class blob, nil when absent.
//
// Blobs are not part of the tree commitment; they are immutable once
// declared, so the latest stored blob is valid for any height at which
// the class exists.
func (v *View) CompiledClassAt(classHash felt.Felt) ([]byte, error) {
	cch, err := v.CompiledClassHashAt(classHash)
	if err != nil {
		return nil, err
	}
	if cch.IsZero() {
		return nil, nil
	}
	blob, err := loadClassBlob(v.db, classHash)
	if err != nil {
		return nil, &Error{err}
	}
	return blob, nil
}
