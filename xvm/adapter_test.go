// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/state"
)

func newTestEnv(t *testing.T) (*chain.Repository, *state.Stater) {
	db := muxdb.NewMem()
	repo, err := chain.NewRepository(db)
	require.NoError(t, err)
	return repo, state.NewStater(db, crypto.Pedersen)
}

func word(v uint64) Word {
	return WordFromFelt(felt.FromUint64(v))
}

func headerAt(height uint64, parentHash felt.Felt) *chain.Header {
	return &chain.Header{
		Number:     height,
		Hash:       felt.FromUint64(0x1000 + height),
		ParentHash: parentHash,
	}
}

func TestWordEncoding(t *testing.T) {
	f, err := wordToKey(word(42))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(42), f)
	assert.Equal(t, word(42), WordFromFelt(f))

	// 2^251 does not fit the tree key width
	var wide Word
	wide[0] = 0x08
	_, err = wordToKey(wide)
	assert.ErrorIs(t, err, ErrEncoding)

	// all-ones exceeds the field modulus
	var huge Word
	for i := range huge {
		huge[i] = 0xff
	}
	_, err = wordToFelt(huge)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestLiveAdapterBlockFlow(t *testing.T) {
	repo, stater := newTestEnv(t)

	contractA := word(0xaaaa)
	key0 := word(0)

	// genesis: deploy contractA with key0=5
	gen := NewGenesisAdapter(repo, stater)
	assert.Nil(t, gen.Parent())
	require.NoError(t, gen.Deploy(contractA, felt.FromUint64(0xc1)))
	require.NoError(t, gen.SetStorage(contractA, key0, word(5)))

	// the engine observes its own pending writes
	v, err := gen.StorageAt(contractA, key0)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(5), v)
	first, err := gen.IsFirstWrite(contractA, key0)
	require.NoError(t, err)
	assert.False(t, first)
	first, err = gen.IsFirstWrite(contractA, word(1))
	require.NoError(t, err)
	assert.True(t, first)

	h0 := headerAt(0, felt.Zero)
	s0, err := gen.Seal(h0, felt.Zero, true)
	require.NoError(t, err)

	// next block on top, key0=9
	live, err := NewLiveAdapter(repo, stater, 0)
	require.NoError(t, err)
	require.Equal(t, s0, live.Parent())

	v, err = live.StorageAt(contractA, key0)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(5), v)

	require.NoError(t, live.SetStorage(contractA, key0, word(9)))
	require.NoError(t, live.SetNonce(contractA, felt.FromUint64(1)))

	h1 := headerAt(1, h0.Hash)
	s1, err := live.Seal(h1, felt.Zero, true)
	require.NoError(t, err)
	assert.False(t, s0.Commitment.StateRoot.Equal(s1.Commitment.StateRoot))

	// historical adapters answer per height
	at0, err := NewHistoricalAdapter(repo, stater, 0)
	require.NoError(t, err)
	at1, err := NewHistoricalAdapter(repo, stater, 1)
	require.NoError(t, err)

	v, err = at0.StorageAt(contractA, key0)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(5), v)
	v, err = at1.StorageAt(contractA, key0)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(9), v)

	nonce, err := at1.NonceAt(contractA)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(1), nonce)

	first, err = at1.IsFirstWrite(contractA, key0)
	require.NoError(t, err)
	assert.True(t, first)

	_, err = NewHistoricalAdapter(repo, stater, 9)
	assert.True(t, repo.IsNotFound(err))
}

func TestDiffSplitsDeployAndReplace(t *testing.T) {
	repo, stater := newTestEnv(t)

	gen := NewGenesisAdapter(repo, stater)
	require.NoError(t, gen.Deploy(word(0xa1), felt.FromUint64(0xc1)))
	h0 := headerAt(0, felt.Zero)
	_, err := gen.Seal(h0, felt.Zero, true)
	require.NoError(t, err)

	live, err := NewLiveAdapter(repo, stater, 0)
	require.NoError(t, err)
	require.NoError(t, live.Deploy(word(0xa1), felt.FromUint64(0xc2)))
	require.NoError(t, live.Deploy(word(0xa2), felt.FromUint64(0xc1)))

	diff, err := live.Diff()
	require.NoError(t, err)
	require.Len(t, diff.ReplacedClasses, 1)
	assert.Equal(t, felt.FromUint64(0xa1), diff.ReplacedClasses[0].Address)
	require.Len(t, diff.DeployedContracts, 1)
	assert.Equal(t, felt.FromUint64(0xa2), diff.DeployedContracts[0].Address)
}

func TestDeclareRoundTrip(t *testing.T) {
	repo, stater := newTestEnv(t)

	classHash := felt.FromUint64(0xc1a55)
	blob := []byte("compiled casm")

	gen := NewGenesisAdapter(repo, stater)
	gen.Declare(classHash, felt.FromUint64(0xcc), blob)

	got, err := gen.CompiledClassAt(classHash)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	_, err = gen.Seal(headerAt(0, felt.Zero), felt.Zero, true)
	require.NoError(t, err)

	at0, err := NewHistoricalAdapter(repo, stater, 0)
	require.NoError(t, err)
	cch, err := at0.CompiledClassHashAt(classHash)
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(0xcc), cch)
	got, err = at0.CompiledClassAt(classHash)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	missing, err := at0.CompiledClassAt(felt.FromUint64(0xdead))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSealRootMismatch(t *testing.T) {
	repo, stater := newTestEnv(t)

	gen := NewGenesisAdapter(repo, stater)
	require.NoError(t, gen.SetStorage(word(0xa1), word(1), word(5)))

	_, err := gen.Seal(headerAt(0, felt.Zero), felt.FromUint64(0xbad), true)
	assert.ErrorIs(t, err, ErrRootMismatch)

	// the rejected block left nothing behind
	_, err = repo.GetCommitment(0)
	assert.True(t, repo.IsNotFound(err))
	assert.Nil(t, repo.BestSummary())

	// sealing with the correct expectation succeeds
	retry := NewGenesisAdapter(repo, stater)
	require.NoError(t, retry.SetStorage(word(0xa1), word(1), word(5)))
	summary, err := retry.Seal(headerAt(0, felt.Zero), felt.Zero, true)
	require.NoError(t, err)

	verify := NewGenesisAdapter(repo, stater)
	require.NoError(t, verify.SetStorage(word(0xa1), word(1), word(5)))
	_, err = verify.Seal(headerAt(0, felt.Zero), summary.Commitment.StateRoot, true)
	require.NoError(t, err)
}

func TestEncodingFailureIsFatalPerBlock(t *testing.T) {
	repo, stater := newTestEnv(t)

	var wide Word
	wide[0] = 0x08

	gen := NewGenesisAdapter(repo, stater)
	assert.ErrorIs(t, gen.SetStorage(wide, word(1), word(5)), ErrEncoding)
	assert.ErrorIs(t, gen.SetNonce(wide, felt.Zero), ErrEncoding)
	assert.ErrorIs(t, gen.Deploy(wide, felt.Zero), ErrEncoding)
	_, err := gen.StorageAt(word(0xa1), wide)
	assert.ErrorIs(t, err, ErrEncoding)
	_, err = gen.IsFirstWrite(wide, word(1))
	assert.ErrorIs(t, err, ErrEncoding)
}
