// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
)

var (
	classBlobCache, _ = lru.NewARC(512)
	classBlobGroup    singleflight.Group
)

// cachedContract caches the record and storage of a contract.
type cachedContract struct {
	db       *muxdb.MuxDB
	hash     crypto.HashFunc
	addr     felt.Felt
	data     Contract
	deployed bool

	cache struct {
		storageTrie *muxdb.Trie
		storage     map[felt.Felt]felt.Felt
	}
}

func newCachedContract(db *muxdb.MuxDB, hash crypto.HashFunc, addr felt.Felt, data *Contract, deployed bool) *cachedContract {
	return &cachedContract{db: db, hash: hash, addr: addr, data: *data, deployed: deployed}
}

func (cc *cachedContract) getOrCreateStorageTrie() *muxdb.Trie {
	if cc.cache.storageTrie != nil {
		return cc.cache.storageTrie
	}
	if cc.data.StorageRoot.IsZero() {
		return nil
	}
	trie := cc.db.NewTrie(cc.data.StorageRoot, cc.hash)
	cc.cache.storageTrie = trie
	return trie
}

// GetStorage returns the committed storage value for given key.
func (cc *cachedContract) GetStorage(key felt.Felt) (felt.Felt, error) {
	cache := &cc.cache
	if cache.storage != nil {
		if v, ok := cache.storage[key]; ok {
			return v, nil
		}
	} else {
		cache.storage = make(map[felt.Felt]felt.Felt)
	}

	trie := cc.getOrCreateStorageTrie()
	if trie == nil {
		return felt.Zero, nil
	}

	v, _, err := trie.Get(key)
	if err != nil {
		return felt.Zero, err
	}
	cache.storage[key] = v
	return v, nil
}

// loadClassBlob loads the compiled class blob for the given class hash.
// nil is returned when no blob was ever stored. Concurrent views loading
// the same blob share one store read.
func loadClassBlob(db *muxdb.MuxDB, classHash felt.Felt) ([]byte, error) {
	k := classHash.Bytes()
	if blob, has := classBlobCache.Get(k); has {
		return blob.([]byte), nil
	}

	blob, err, _ := classBlobGroup.Do(string(k[:]), func() (interface{}, error) {
		store := db.NewStore(classStoreName)
		blob, err := store.Get(k[:])
		if err != nil {
			if store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		classBlobCache.Add(k, blob)
		return blob, nil
	})
	if err != nil {
		return nil, err
	}
	return blob.([]byte), nil
}
