// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/genesis"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/state"
)

func TestDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())
	// the preset id is stable across builds
	assert.Equal(t, gene.ID(), genesis.NewDevnet().ID())

	db := muxdb.NewMem()
	repo, err := chain.NewRepository(db)
	require.NoError(t, err)
	stater := state.NewStater(db, crypto.Pedersen)

	summary, err := gene.Bootstrap(repo, stater)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.Header.Number)
	assert.Equal(t, gene.ID(), summary.Header.Hash)
	assert.Equal(t, summary, repo.BestSummary())

	// bootstrapping again is a no-op
	again, err := gene.Bootstrap(repo, stater)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

	view := stater.NewView(summary.Commitment.ContractRoot, summary.Commitment.ClassRoot)
	for _, addr := range genesis.DevAccounts() {
		balance, err := view.StorageAt(addr, felt.Zero)
		require.NoError(t, err)
		assert.False(t, balance.IsZero())
	}
}

func TestCustomNet(t *testing.T) {
	raw := `{
		"launchTime": 1700000000,
		"contracts": [
			{
				"address": "0xa1",
				"classHash": "0xc1",
				"nonce": "0x2",
				"storage": [{"key": "0x1", "value": "0x5"}]
			}
		],
		"classes": [
			{"classHash": "0xc1", "compiledClassHash": "0xcc", "compiledClass": "deadbeef"}
		]
	}`
	custom, err := genesis.LoadCustomGenesis(strings.NewReader(raw))
	require.NoError(t, err)

	gene, err := genesis.NewCustomNet(custom)
	require.NoError(t, err)

	db := muxdb.NewMem()
	repo, err := chain.NewRepository(db)
	require.NoError(t, err)
	stater := state.NewStater(db, crypto.Pedersen)

	summary, err := gene.Bootstrap(repo, stater)
	require.NoError(t, err)

	view := stater.NewView(summary.Commitment.ContractRoot, summary.Commitment.ClassRoot)
	v, err := view.StorageAt(felt.MustParse("0xa1"), felt.MustParse("0x1"))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(5), v)
	nonce, err := view.NonceAt(felt.MustParse("0xa1"))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(2), nonce)
	blob, err := view.CompiledClassAt(felt.MustParse("0xc1"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, blob)

	// a different allocation yields a different chain id
	custom.LaunchTime++
	other, err := genesis.NewCustomNet(custom)
	require.NoError(t, err)
	assert.NotEqual(t, gene.ID(), other.ID())

	// contracts without a class hash are rejected
	_, err = genesis.NewCustomNet(&genesis.CustomGenesis{
		Contracts: []genesis.ContractAlloc{{Address: felt.FromUint64(1)}},
	})
	assert.Error(t, err)

	// unknown fields are rejected
	_, err = genesis.LoadCustomGenesis(strings.NewReader(`{"launchTime": 1, "bogus": true}`))
	assert.Error(t, err)
}

func TestBootstrapChainMismatch(t *testing.T) {
	db := muxdb.NewMem()
	repo, err := chain.NewRepository(db)
	require.NoError(t, err)
	stater := state.NewStater(db, crypto.Pedersen)

	_, err = genesis.NewDevnet().Bootstrap(repo, stater)
	require.NoError(t, err)

	other, err := genesis.NewCustomNet(&genesis.CustomGenesis{LaunchTime: 42})
	require.NoError(t, err)
	_, err = other.Bootstrap(repo, stater)
	assert.ErrorIs(t, err, chain.ErrBlockAlreadyRecorded)
}
