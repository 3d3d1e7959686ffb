// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/state"
)

// DevAccounts returns the addresses of the contracts pre-deployed by the
// devnet preset.
func DevAccounts() []felt.Felt {
	accounts := make([]felt.Felt, 10)
	for i := range accounts {
		accounts[i] = felt.FromUint64(uint64(0x100 + i))
	}
	return accounts
}

var devClassHash = felt.MustParse("0xdec1a55")

// NewDevnet create genesis for local development, with a fixed set of
// pre-deployed contracts so runs are reproducible.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // '2025-01-01 00:00:00 +0000 UTC'

	builder := new(Builder).
		Timestamp(launchTime).
		State(func(st *state.State) error {
			st.DeclareClass(devClassHash, felt.FromUint64(0xcc), nil)
			for i, addr := range DevAccounts() {
				if err := st.SetClassHash(addr, devClassHash); err != nil {
					return err
				}
				// a seeded balance cell so transfers work out of the box
				st.SetStorage(addr, felt.Zero, felt.FromUint64(uint64(1000000*(i+1))))
			}
			return nil
		})

	id, err := builder.ComputeID()
	if err != nil {
		panic(err)
	}
	return &Genesis{builder, id, "devnet"}
}
