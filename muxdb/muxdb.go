// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb multiplexes one kv engine into the trie node space and
// general purpose named kv-stores. Writes spanning both spaces can share
// a single bulk, which is how block commits stay atomic.
package muxdb

import (
	"encoding/json"
	"fmt"

	"github.com/inconshreveable/log15"
	"github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
)

var logger = log15.New("pkg", "muxdb")

const (
	trieSpace       = byte(0) // the key space for trie nodes, keyed by node hash.
	namedStoreSpace = byte(1) // the key space for named stores.
)

const (
	propStoreName = "muxdb.props"
	configKey     = "config"

	// bump when the node key scheme or encoding changes
	nodeSchema = "ca1"
)

// Options optional parameters for MuxDB.
type Options struct {
	// TrieNodeCacheSizeMB is the size of the cache for trie node blobs.
	TrieNodeCacheSizeMB int
	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int
}

// MuxDB is the database to efficiently store versioned state tries and
// chain records.
type MuxDB struct {
	engine  engine
	backend *backend
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	ldbOpts := opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.ReadCacheMB * opt.MiB,
		WriteBuffer:            options.WriteBufferMB * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		BlockSize:              1024 * 32, // balance performance of point reads and compression ratio.
		CompactionTableSize:    4 * opt.MiB,
	}

	ldb, err := leveldb.OpenFile(path, &ldbOpts)
	if _, corrupted := err.(*dberrors.ErrCorrupted); corrupted {
		ldb, err = leveldb.RecoverFile(path, &ldbOpts)
	}
	if err != nil {
		return nil, err
	}

	engine := newLevelEngine(ldb)

	// refuse to open a database laid out by an incompatible version
	propStore := kv.Bucket(string(namedStoreSpace) + propStoreName).NewStore(engine)
	cfg := config{NodeSchema: nodeSchema}
	if err := cfg.LoadOrSave(propStore); err != nil {
		_ = engine.Close()
		return nil, err
	}
	if cfg.NodeSchema != nodeSchema {
		_ = engine.Close()
		return nil, fmt.Errorf("muxdb: incompatible node schema %q, want %q", cfg.NodeSchema, nodeSchema)
	}

	return &MuxDB{
		engine: engine,
		backend: &backend{
			store: engine,
			cache: newCache(options.TrieNodeCacheSizeMB),
		},
	}, nil
}

// NewMem creates a memory-backed DB, mainly for testing.
func NewMem() *MuxDB {
	ldb, _ := leveldb.Open(storage.NewMemStorage(), nil)

	engine := newLevelEngine(ldb)
	return &MuxDB{
		engine: engine,
		backend: &backend{
			store: engine,
			cache: &dummyCache{},
		},
	}
}

// Close closes the DB.
func (db *MuxDB) Close() error {
	return db.engine.Close()
}

// NewTrie creates a trie on top of this DB, rooted at root. A zero root
// denotes the empty trie.
func (db *MuxDB) NewTrie(root felt.Felt, hash crypto.HashFunc) *Trie {
	return newTrie(db.backend, root, hash)
}

// NewStore creates named kv-store.
func (db *MuxDB) NewStore(name string) kv.Store {
	return kv.Bucket(string(namedStoreSpace) + name).NewStore(db.engine)
}

// NewBulk creates a bulk writing directly to the engine. Trie commits via
// Trie.CommitTo and named-store writes via NewStorePutter can be staged on
// the same bulk and land in one atomic write.
func (db *MuxDB) NewBulk() kv.Bulk {
	return db.engine.Bulk()
}

// NewStorePutter redirects writes of the named store into putter, which is
// usually a bulk from NewBulk.
func (db *MuxDB) NewStorePutter(name string, putter kv.Putter) kv.Putter {
	return kv.Bucket(string(namedStoreSpace) + name).NewPutter(putter)
}

// IsNotFound returns if the error indicates key not found.
func (db *MuxDB) IsNotFound(err error) bool {
	return db.engine.IsNotFound(err)
}

type config struct {
	NodeSchema string
}

func (c *config) LoadOrSave(store kv.Store) error {
	data, err := store.Get([]byte(configKey))
	if err == nil {
		return json.Unmarshal(data, c)
	}
	if !store.IsNotFound(err) {
		return err
	}
	data, err = json.Marshal(c)
	if err != nil {
		return err
	}
	return store.Put([]byte(configKey), data)
}
