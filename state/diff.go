// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stellis-node/stellis/felt"
)

// Diff is the flattened set of state changes produced by executing one
// block. Entries are deduplicated; within one slice an address or class
// hash appears at most once.
type Diff struct {
	DeployedContracts []DeployedContract
	ReplacedClasses   []DeployedContract
	Nonces            []NonceUpdate
	StorageDiffs      []StorageDiff
	DeclaredClasses   []DeclaredClass
}

// DeployedContract binds a contract address to a class hash.
type DeployedContract struct {
	Address   felt.Felt
	ClassHash felt.Felt
}

// NonceUpdate is the new nonce of one contract.
type NonceUpdate struct {
	Address felt.Felt
	Nonce   felt.Felt
}

// StorageDiff is the set of changed storage cells of one contract.
type StorageDiff struct {
	Address felt.Felt
	Entries []StorageEntry
}

// StorageEntry is one changed storage cell. A zero value clears the cell.
type StorageEntry struct {
	Key   felt.Felt
	Value felt.Felt
}

// DeclaredClass binds a class hash to its compiled class hash.
type DeclaredClass struct {
	ClassHash         felt.Felt
	CompiledClassHash felt.Felt
}

// IsEmpty returns whether the diff carries no change at all.
func (d *Diff) IsEmpty() bool {
	return len(d.DeployedContracts) == 0 &&
		len(d.ReplacedClasses) == 0 &&
		len(d.Nonces) == 0 &&
		len(d.StorageDiffs) == 0 &&
		len(d.DeclaredClasses) == 0
}

// Apply drives all changes of the diff into the given state. Compiled
// class blobs travel outside the diff and are declared separately.
func (d *Diff) Apply(st *State) error {
	for _, dc := range d.DeployedContracts {
		if err := st.SetClassHash(dc.Address, dc.ClassHash); err != nil {
			return err
		}
	}
	for _, rc := range d.ReplacedClasses {
		if err := st.SetClassHash(rc.Address, rc.ClassHash); err != nil {
			return err
		}
	}
	for _, n := range d.Nonces {
		if err := st.SetNonce(n.Address, n.Nonce); err != nil {
			return err
		}
	}
	for _, sd := range d.StorageDiffs {
		for _, e := range sd.Entries {
			st.SetStorage(sd.Address, e.Key, e.Value)
		}
	}
	for _, dc := range d.DeclaredClasses {
		st.DeclareClass(dc.ClassHash, dc.CompiledClassHash, nil)
	}
	return nil
}
