// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chain stores finalized block records: per-height commitment
// records, the hash index and the best-height pointer. It is the single
// place where a block's tree nodes and its commitment become durable
// together.
package chain

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/cache"
	"github.com/stellis-node/stellis/co"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/state"
)

const (
	hdrStoreName  = "chain.hdr"   // for block summaries, keyed by height
	idxStoreName  = "chain.idx"   // for the block hash -> height index
	diffStoreName = "chain.diff"  // for per-block state diffs, kept for audit
	propStoreName = "chain.props" // for property-named records such as best height
)

var (
	logger = log15.New("pkg", "chain")

	bestHeightKey = []byte("best-height")

	// ErrUnknownHeight is returned when no commitment exists for the
	// requested height or hash.
	ErrUnknownHeight = errors.New("unknown height")
	// ErrBlockAlreadyRecorded is returned when a height is recorded twice
	// with a different root set. It indicates a double-execution bug in
	// the caller and must not be retried.
	ErrBlockAlreadyRecorded = errors.New("block already recorded")
)

// Repository stores block records and owns the best-height pointer.
//
// It's thread-safe. The write path (AddBlock, Revert, SetBest) must stay
// single-threaded; readers need no coordination.
type Repository struct {
	db        *muxdb.MuxDB
	hdrStore  kv.Store
	idxStore  kv.Store
	diffStore kv.Store
	propStore kv.Store

	bestSummary atomic.Value
	tick        co.Signal

	caches struct {
		summaries *cache.LRU
		stats     cache.Stats
	}
}

// NewRepository create an instance of repository. A fresh database starts
// empty; recording height 0 is the genesis writer's job.
func NewRepository(db *muxdb.MuxDB) (*Repository, error) {
	repo := &Repository{
		db:        db,
		hdrStore:  db.NewStore(hdrStoreName),
		idxStore:  db.NewStore(idxStoreName),
		diffStore: db.NewStore(diffStoreName),
		propStore: db.NewStore(propStoreName),
	}
	repo.caches.summaries, _ = cache.NewLRU(512)

	if data, err := repo.propStore.Get(bestHeightKey); err != nil {
		if !repo.propStore.IsNotFound(err) {
			return nil, err
		}
		repo.bestSummary.Store((*BlockSummary)(nil))
	} else {
		summary, err := repo.GetSummary(binary.BigEndian.Uint64(data))
		if err != nil {
			return nil, errors.Wrap(err, "load best block")
		}
		repo.bestSummary.Store(summary)
	}
	return repo, nil
}

// BestSummary returns the summary of the best block, nil when nothing has
// been recorded yet. Reads are lock-free.
func (r *Repository) BestSummary() *BlockSummary {
	if v := r.bestSummary.Load(); v != nil {
		return v.(*BlockSummary)
	}
	return nil
}

// NewTicker create a signal Waiter to receive event that the best block
// changed.
func (r *Repository) NewTicker() co.Waiter {
	return r.tick.NewWaiter()
}

// AddBlock records a finalized block: the staged tree nodes, the class
// blobs, the commitment record, the hash index and optionally the best
// pointer land in one atomic write.
//
// Re-recording a height with the identical header and root set is a
// no-op; a different root set fails with ErrBlockAlreadyRecorded.
func (r *Repository) AddBlock(header *Header, stage *state.Stage, diff *state.Diff, asBest bool) (*BlockSummary, error) {
	roots := stage.Roots()

	if existing, err := r.GetSummary(header.Number); err == nil {
		if existing.Header == *header && existing.Commitment.StateRoot.Equal(roots.State) {
			return existing, nil
		}
		return nil, errors.WithMessagef(ErrBlockAlreadyRecorded, "height %d", header.Number)
	} else if !r.IsNotFound(err) {
		return nil, err
	}

	if header.Number > 0 {
		parent, err := r.GetSummary(header.Number - 1)
		if err != nil {
			if r.IsNotFound(err) {
				return nil, errors.Errorf("parent of height %d missing", header.Number)
			}
			return nil, err
		}
		if !parent.Header.Hash.Equal(header.ParentHash) {
			return nil, errors.Errorf("parent hash mismatch at height %d", header.Number)
		}
	}

	var (
		startTime  = time.Now()
		bulk       = r.db.NewBulk()
		hdrPutter  = r.db.NewStorePutter(hdrStoreName, bulk)
		idxPutter  = r.db.NewStorePutter(idxStoreName, bulk)
		diffPutter = r.db.NewStorePutter(diffStoreName, bulk)
		propPutter = r.db.NewStorePutter(propStoreName, bulk)
	)

	if _, err := stage.CommitTo(bulk); err != nil {
		return nil, err
	}

	summary := &BlockSummary{
		Header: *header,
		Commitment: CommitmentRecord{
			StateRoot:    roots.State,
			ContractRoot: roots.Contract,
			ClassRoot:    roots.Class,
		},
	}
	if err := saveBlockSummary(hdrPutter, summary); err != nil {
		return nil, err
	}
	if err := saveHashIndex(idxPutter, header.Hash, header.Number); err != nil {
		return nil, err
	}
	if diff != nil && !diff.IsEmpty() {
		k := makeHeightKey(header.Number)
		if err := saveRLP(diffPutter, k[:], diff); err != nil {
			return nil, err
		}
	}
	if asBest {
		k := makeHeightKey(header.Number)
		if err := propPutter.Put(bestHeightKey, k[:]); err != nil {
			return nil, err
		}
	}

	if err := bulk.Write(); err != nil {
		return nil, err
	}

	r.caches.summaries.Add(header.Number, summary)
	if asBest {
		r.bestSummary.Store(summary)
		metricBestHeight().Set(int64(header.Number))
		r.tick.Broadcast()
	}
	metricBlockCommitDuration().Observe(time.Since(startTime).Milliseconds())
	return summary, nil
}

// GetSummary get block summary by height.
func (r *Repository) GetSummary(height uint64) (*BlockSummary, error) {
	if blk, ok := r.caches.summaries.Get(height); ok {
		if r.caches.stats.Hit()%2000 == 0 {
			_, hit, miss := r.caches.stats.Stats()
			metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
			metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
		}
		return blk.(*BlockSummary), nil
	}
	r.caches.stats.Miss()

	summary, err := loadBlockSummary(r.hdrStore, height)
	if err != nil {
		if r.hdrStore.IsNotFound(err) {
			return nil, errors.WithMessagef(ErrUnknownHeight, "height %d", height)
		}
		return nil, err
	}
	r.caches.summaries.Add(height, summary)
	return summary, nil
}

// GetSummaryByHash get block summary by block hash.
func (r *Repository) GetSummaryByHash(hash felt.Felt) (*BlockSummary, error) {
	height, err := loadHashIndex(r.idxStore, hash)
	if err != nil {
		if r.idxStore.IsNotFound(err) {
			return nil, errors.WithMessagef(ErrUnknownHeight, "hash %v", hash.AbbrevString())
		}
		return nil, err
	}
	summary, err := r.GetSummary(height)
	if err != nil {
		return nil, err
	}
	// a reverted branch may leave a stale index entry behind
	if !summary.Header.Hash.Equal(hash) {
		return nil, errors.WithMessagef(ErrUnknownHeight, "hash %v", hash.AbbrevString())
	}
	return summary, nil
}

// GetCommitment get the commitment record of the given height.
func (r *Repository) GetCommitment(height uint64) (*CommitmentRecord, error) {
	summary, err := r.GetSummary(height)
	if err != nil {
		return nil, err
	}
	return &summary.Commitment, nil
}

// GetDiff get the recorded state diff of the given height, nil when the
// block changed nothing.
func (r *Repository) GetDiff(height uint64) (*state.Diff, error) {
	// ensure the height exists at all
	if _, err := r.GetSummary(height); err != nil {
		return nil, err
	}
	var diff state.Diff
	k := makeHeightKey(height)
	if err := loadRLP(r.diffStore, k[:], &diff); err != nil {
		if r.diffStore.IsNotFound(err) {
			return &state.Diff{}, nil
		}
		return nil, err
	}
	return &diff, nil
}

// SetBest sets the best height pointer to an already recorded height.
func (r *Repository) SetBest(height uint64) error {
	summary, err := r.GetSummary(height)
	if err != nil {
		return err
	}
	k := makeHeightKey(height)
	if err := r.propStore.Put(bestHeightKey, k[:]); err != nil {
		return err
	}
	r.bestSummary.Store(summary)
	metricBestHeight().Set(int64(height))
	r.tick.Broadcast()
	return nil
}

// Revert discards all records above the given height, used on chain
// reorganization. The removal of summaries, index entries, diffs and the
// best pointer move is atomic. Tree nodes of discarded heights stay on
// disk until an external sweep collects them; nodes reachable from any
// height <= target are never touched.
func (r *Repository) Revert(height uint64) error {
	target, err := r.GetSummary(height)
	if err != nil {
		return err
	}

	var (
		bulk       = r.db.NewBulk()
		hdrPutter  = r.db.NewStorePutter(hdrStoreName, bulk)
		idxPutter  = r.db.NewStorePutter(idxStoreName, bulk)
		diffPutter = r.db.NewStorePutter(diffStoreName, bulk)
		propPutter = r.db.NewStorePutter(propStoreName, bulk)
		dropped    []uint64
	)

	start := makeHeightKey(height + 1)
	iter := r.hdrStore.Iterate(kv.Range{Start: start[:]})
	for iter.Next() {
		var summary BlockSummary
		if err := decodeRLP(iter.Value(), &summary); err != nil {
			iter.Release()
			return err
		}
		k := makeHeightKey(summary.Header.Number)
		h := summary.Header.Hash.Bytes()
		if err := hdrPutter.Delete(k[:]); err != nil {
			iter.Release()
			return err
		}
		if err := idxPutter.Delete(h[:]); err != nil {
			iter.Release()
			return err
		}
		if err := diffPutter.Delete(k[:]); err != nil {
			iter.Release()
			return err
		}
		dropped = append(dropped, summary.Header.Number)
	}
	if err := iter.Error(); err != nil {
		iter.Release()
		return err
	}
	iter.Release()

	k := makeHeightKey(height)
	if err := propPutter.Put(bestHeightKey, k[:]); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return err
	}

	for _, num := range dropped {
		r.caches.summaries.Remove(num)
	}
	r.bestSummary.Store(target)
	metricBestHeight().Set(int64(height))
	r.tick.Broadcast()

	logger.Info("chain reverted", "height", height, "dropped", len(dropped))
	return nil
}

// PruneDiffs drops audit diff records below the given height. Diffs are
// not part of any commitment, so pruning them never affects state reads.
func (r *Repository) PruneDiffs(ctx context.Context, belowHeight uint64) error {
	limit := makeHeightKey(belowHeight)
	return r.diffStore.DeleteRange(ctx, kv.Range{Limit: limit[:]})
}

// IsNotFound returns if the error means the queried height or hash is not
// recorded.
func (r *Repository) IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownHeight)
}
