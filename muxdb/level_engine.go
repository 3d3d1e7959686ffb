// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"context"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/stellis-node/stellis/kv"
)

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
	scanOpt  = opt.ReadOptions{DontFillCache: true}
)

// levelEngine wraps leveldb into the engine interface.
type levelEngine struct {
	db        *leveldb.DB
	batchPool *sync.Pool
}

func newLevelEngine(db *leveldb.DB) engine {
	return &levelEngine{
		db,
		&sync.Pool{
			New: func() any {
				return &leveldb.Batch{}
			},
		},
	}
}

func (ldb *levelEngine) Close() error {
	return ldb.db.Close()
}

func (ldb *levelEngine) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (ldb *levelEngine) Get(key []byte) ([]byte, error) {
	val, err := ldb.db.Get(key, &readOpt)
	// val will be []byte{} if error occurs, which is not expected
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (ldb *levelEngine) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *levelEngine) Put(key, val []byte) error {
	return ldb.db.Put(key, val, &writeOpt)
}

func (ldb *levelEngine) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

func (ldb *levelEngine) Snapshot() kv.Snapshot {
	s, err := ldb.db.GetSnapshot()
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.ReleaseFunc
	}{
		func(key []byte) ([]byte, error) {
			if err != nil {
				return nil, err
			}
			return s.Get(key, &readOpt)
		},
		func(key []byte) (bool, error) {
			if err != nil {
				return false, err
			}
			return s.Has(key, &readOpt)
		},
		ldb.IsNotFound,
		func() {
			if err == nil {
				s.Release()
			}
		},
	}
}

func (ldb *levelEngine) Bulk() kv.Bulk {
	var (
		batch     = ldb.batchPool.Get().(*leveldb.Batch)
		flushable = false
	)
	batch.Reset()

	flushIfNeeded := func() error {
		if flushable && len(batch.Dump()) >= 32*1024 {
			if err := ldb.db.Write(batch, &writeOpt); err != nil {
				return err
			}
			batch.Reset()
		}
		return nil
	}

	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.EnableAutoFlushFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			batch.Put(key, val)
			return flushIfNeeded()
		},
		func(key []byte) error {
			batch.Delete(key)
			return flushIfNeeded()
		},
		func() { flushable = true },
		func() error {
			defer func() {
				batch.Reset()
				ldb.batchPool.Put(batch)
			}()
			if batch.Len() == 0 {
				return nil
			}
			return ldb.db.Write(batch, &writeOpt)
		},
	}
}

func (ldb *levelEngine) Iterate(r kv.Range) kv.Iterator {
	it := ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &scanOpt)
	return &struct {
		kv.FirstFunc
		kv.LastFunc
		kv.NextFunc
		kv.PrevFunc
		kv.KeyFunc
		kv.ValueFunc
		kv.ReleaseFunc
		kv.ErrorFunc
	}{
		it.First,
		it.Last,
		it.Next,
		it.Prev,
		it.Key,
		it.Value,
		it.Release,
		it.Error,
	}
}

func (ldb *levelEngine) DeleteRange(ctx context.Context, r kv.Range) error {
	it := ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &scanOpt)
	defer it.Release()

	batch := ldb.batchPool.Get().(*leveldb.Batch)
	defer ldb.batchPool.Put(batch)
	batch.Reset()

	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		batch.Delete(k)

		if batch.Len() >= 4096 {
			if err := ldb.db.Write(batch, &writeOpt); err != nil {
				return err
			}
			batch.Reset()
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	return ldb.db.Write(batch, &writeOpt)
}
