// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package trie

import (
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
)

// DeriveRoot computes the root of an ephemeral trie holding the given
// key/value pairs, without touching any database. Useful for computing
// commitments over small in-memory sets.
func DeriveRoot(hash crypto.HashFunc, kvs map[felt.Felt]felt.Felt) (felt.Felt, error) {
	t := New(felt.Zero, nil, hash)
	for k, v := range kvs {
		if err := t.Update(k, v, nil); err != nil {
			return felt.Zero, err
		}
	}
	return t.Hash(), nil
}
