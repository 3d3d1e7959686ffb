// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
)

// Stater is the factory of State and View instances sharing one DB and
// hash function.
type Stater struct {
	db   *muxdb.MuxDB
	hash crypto.HashFunc
}

// NewStater create a Stater bound to the given DB.
func NewStater(db *muxdb.MuxDB, hash crypto.HashFunc) *Stater {
	return &Stater{db: db, hash: hash}
}

// NewState create a mutable State on top of the given tree roots.
func (s *Stater) NewState(contractRoot, classRoot felt.Felt) *State {
	return New(s.db, s.hash, contractRoot, classRoot)
}

// NewView create a read-only View pinned at the given tree roots.
func (s *Stater) NewView(contractRoot, classRoot felt.Felt) *View {
	return NewView(s.db, s.hash, contractRoot, classRoot)
}
