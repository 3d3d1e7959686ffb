// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/state"
)

func newTestRepo(t *testing.T) (*Repository, *muxdb.MuxDB, *state.Stater) {
	db := muxdb.NewMem()
	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo, db, state.NewStater(db, crypto.Pedersen)
}

// stageAt builds a stage on top of parent roots with a single storage
// write, contract 0xa1 key 1 = value.
func stageAt(t *testing.T, stater *state.Stater, parent Roots, height uint64, value uint64) *state.Stage {
	st := stater.NewState(parent.Contract, parent.Class)
	st.SetStorage(felt.FromUint64(0xa1), felt.FromUint64(1), felt.FromUint64(value))
	stage, err := st.Stage(height)
	require.NoError(t, err)
	return stage
}

// Roots aliases state.Roots for test helpers.
type Roots = state.Roots

func headerAt(height uint64, parentHash felt.Felt) *Header {
	return &Header{
		Number:     height,
		Hash:       felt.FromUint64(0x1000 + height),
		ParentHash: parentHash,
		Timestamp:  1700000000 + height,
	}
}

func TestEmptyRepository(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	assert.Nil(t, repo.BestSummary())

	_, err := repo.GetSummary(0)
	assert.True(t, repo.IsNotFound(err))
	_, err = repo.GetCommitment(7)
	assert.True(t, repo.IsNotFound(err))
	_, err = repo.GetSummaryByHash(felt.FromUint64(1))
	assert.True(t, repo.IsNotFound(err))
}

func TestAddBlock(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	stage := stageAt(t, stater, Roots{}, 0, 5)
	h0 := headerAt(0, felt.Zero)
	summary, err := repo.AddBlock(h0, stage, nil, true)
	require.NoError(t, err)

	assert.Equal(t, *h0, summary.Header)
	assert.True(t, summary.Commitment.StateRoot.Equal(stage.Hash()))

	got, err := repo.GetSummary(0)
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	byHash, err := repo.GetSummaryByHash(h0.Hash)
	require.NoError(t, err)
	assert.Equal(t, summary, byHash)

	rec, err := repo.GetCommitment(0)
	require.NoError(t, err)
	assert.Equal(t, &summary.Commitment, rec)

	assert.Equal(t, summary, repo.BestSummary())
}

func TestAddBlockDuplicate(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	stage := stageAt(t, stater, Roots{}, 0, 5)
	h0 := headerAt(0, felt.Zero)
	first, err := repo.AddBlock(h0, stage, nil, true)
	require.NoError(t, err)

	// identical re-record is a no-op
	again, err := repo.AddBlock(h0, stage, nil, true)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// same height, different roots
	other := stageAt(t, stater, Roots{}, 0, 9)
	_, err = repo.AddBlock(h0, other, nil, true)
	assert.ErrorIs(t, err, ErrBlockAlreadyRecorded)
}

func TestAddBlockParentLinkage(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	// parent not recorded yet
	stage := stageAt(t, stater, Roots{}, 1, 5)
	_, err := repo.AddBlock(headerAt(1, felt.FromUint64(0x999)), stage, nil, true)
	assert.Error(t, err)

	g := stageAt(t, stater, Roots{}, 0, 5)
	h0 := headerAt(0, felt.Zero)
	_, err = repo.AddBlock(h0, g, nil, true)
	require.NoError(t, err)

	// wrong parent hash
	s1 := stageAt(t, stater, g.Roots(), 1, 9)
	_, err = repo.AddBlock(headerAt(1, felt.FromUint64(0x999)), s1, nil, true)
	assert.Error(t, err)

	// correct linkage
	_, err = repo.AddBlock(headerAt(1, h0.Hash), s1, nil, true)
	assert.NoError(t, err)
}

func TestBestPointer(t *testing.T) {
	repo, db, stater := newTestRepo(t)

	g := stageAt(t, stater, Roots{}, 0, 5)
	h0 := headerAt(0, felt.Zero)
	_, err := repo.AddBlock(h0, g, nil, true)
	require.NoError(t, err)

	s1 := stageAt(t, stater, g.Roots(), 1, 9)
	h1 := headerAt(1, h0.Hash)
	// recorded but not made best
	_, err = repo.AddBlock(h1, s1, nil, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), repo.BestSummary().Header.Number)

	require.NoError(t, repo.SetBest(1))
	assert.Equal(t, uint64(1), repo.BestSummary().Header.Number)

	assert.Error(t, repo.SetBest(5))

	// a fresh repository on the same db restores the pointer
	reopened, err := NewRepository(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reopened.BestSummary().Header.Number)
}

func TestRevert(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	parent := Roots{}
	parentHash := felt.Zero
	var stages []*state.Stage
	for height := uint64(0); height < 4; height++ {
		stage := stageAt(t, stater, parent, height, 5+height)
		h := headerAt(height, parentHash)
		_, err := repo.AddBlock(h, stage, nil, true)
		require.NoError(t, err)
		parent = stage.Roots()
		parentHash = h.Hash
		stages = append(stages, stage)
	}

	require.NoError(t, repo.Revert(1))

	assert.Equal(t, uint64(1), repo.BestSummary().Header.Number)
	for height := uint64(2); height < 4; height++ {
		_, err := repo.GetSummary(height)
		assert.True(t, repo.IsNotFound(err), "height %d", height)
		_, err = repo.GetSummaryByHash(felt.FromUint64(0x1000 + height))
		assert.True(t, repo.IsNotFound(err))
	}

	// surviving heights stay readable, reverted state is not resurrected
	rec, err := repo.GetCommitment(1)
	require.NoError(t, err)
	assert.True(t, rec.StateRoot.Equal(stages[1].Hash()))

	view := stater.NewView(stages[1].Roots().Contract, stages[1].Roots().Class)
	v, err := view.StorageAt(felt.FromUint64(0xa1), felt.FromUint64(1))
	require.NoError(t, err)
	assert.Equal(t, felt.FromUint64(6), v)

	// reverting to an unknown height fails
	assert.True(t, repo.IsNotFound(repo.Revert(9)))
}

func TestDiffs(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	parent := Roots{}
	parentHash := felt.Zero
	for height := uint64(0); height < 3; height++ {
		stage := stageAt(t, stater, parent, height, 5+height)
		diff := &state.Diff{
			StorageDiffs: []state.StorageDiff{{
				Address: felt.FromUint64(0xa1),
				Entries: []state.StorageEntry{{
					Key:   felt.FromUint64(1),
					Value: felt.FromUint64(5 + height),
				}},
			}},
		}
		h := headerAt(height, parentHash)
		_, err := repo.AddBlock(h, stage, diff, true)
		require.NoError(t, err)
		parent = stage.Roots()
		parentHash = h.Hash
	}

	diff, err := repo.GetDiff(1)
	require.NoError(t, err)
	require.Len(t, diff.StorageDiffs, 1)
	assert.Equal(t, felt.FromUint64(6), diff.StorageDiffs[0].Entries[0].Value)

	_, err = repo.GetDiff(9)
	assert.True(t, repo.IsNotFound(err))

	require.NoError(t, repo.PruneDiffs(context.Background(), 2))

	pruned, err := repo.GetDiff(1)
	require.NoError(t, err)
	assert.True(t, pruned.IsEmpty())

	kept, err := repo.GetDiff(2)
	require.NoError(t, err)
	assert.False(t, kept.IsEmpty())
}

func TestTicker(t *testing.T) {
	repo, _, stater := newTestRepo(t)

	waiter := repo.NewTicker()
	done := make(chan struct{})
	go func() {
		<-waiter.C()
		close(done)
	}()

	stage := stageAt(t, stater, Roots{}, 0, 5)
	_, err := repo.AddBlock(headerAt(0, felt.Zero), stage, nil, true)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker not fired on best change")
	}
}
