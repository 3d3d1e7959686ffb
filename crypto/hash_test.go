// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stellis-node/stellis/felt"
)

func TestPedersen(t *testing.T) {
	a := felt.FromUint64(1)
	b := felt.FromUint64(2)

	h := Pedersen(a, b)
	assert.False(t, h.IsZero())
	// not commutative
	assert.NotEqual(t, h, Pedersen(b, a))
	// deterministic
	assert.Equal(t, h, Pedersen(a, b))
}

func TestPedersenArray(t *testing.T) {
	a := felt.FromUint64(1)
	b := felt.FromUint64(2)

	// length is part of the hash
	assert.NotEqual(t, PedersenArray(a, b), PedersenArray(a, b, felt.Zero))
	assert.NotEqual(t, PedersenArray(a), PedersenArray(a, a))
}

func TestStateCommitment(t *testing.T) {
	contractRoot := felt.FromUint64(100)

	// empty class trie keeps the commitment equal to the contract root
	assert.Equal(t, contractRoot, StateCommitment(Pedersen, contractRoot, felt.Zero))

	classRoot := felt.FromUint64(200)
	comm := StateCommitment(Pedersen, contractRoot, classRoot)
	assert.NotEqual(t, contractRoot, comm)
	assert.NotEqual(t, comm, StateCommitment(Pedersen, classRoot, contractRoot))
}

func TestContractCommitment(t *testing.T) {
	c1 := ContractCommitment(Pedersen, felt.FromUint64(1), felt.FromUint64(2), felt.FromUint64(3))
	c2 := ContractCommitment(Pedersen, felt.FromUint64(1), felt.FromUint64(2), felt.FromUint64(4))
	assert.NotEqual(t, c1, c2)
}
