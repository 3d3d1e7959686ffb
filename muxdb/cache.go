// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/qianbin/directcache"

	"github.com/stellis-node/stellis/cache"
	"github.com/stellis-node/stellis/felt"
)

// nodeCache caches trie node blobs. Nodes are content addressed, so a
// cached entry never goes stale and needs no version tagging.
type nodeCache interface {
	Add(hash felt.Felt, blob []byte)
	Get(hash felt.Felt) []byte
}

type blobCache struct {
	nodes       *directcache.Cache
	stats       cache.Stats
	lastLogTime atomic.Int64
}

func newCache(sizeMB int) nodeCache {
	if sizeMB <= 0 {
		return &dummyCache{}
	}
	c := &blobCache{nodes: directcache.New(sizeMB * 1024 * 1024)}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

func (c *blobCache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(time.Second*20) {
		changed, hit, miss := c.stats.Stats()
		if changed {
			logStats("node cache stats", hit, miss)
		}
		metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
		metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}

func (c *blobCache) Add(hash felt.Felt, blob []byte) {
	k := hash.Bytes()
	_ = c.nodes.Set(k[:], blob)
}

func (c *blobCache) Get(hash felt.Felt) []byte {
	k := hash.Bytes()
	var blob []byte
	if c.nodes.AdvGet(k[:], func(val []byte) {
		blob = append([]byte(nil), val...)
	}, false) && len(blob) > 0 {
		if c.stats.Hit()%2000 == 0 {
			c.log()
		}
		return blob
	}
	c.stats.Miss()
	return nil
}

func logStats(msg string, hit, miss int64) {
	lookups := hit + miss
	var str string
	if lookups > 0 {
		str = fmt.Sprintf("%.3f", float64(hit)/float64(lookups))
	} else {
		str = "n/a"
	}
	logger.Info(msg, "lookups", lookups, "hitrate", str)
}

type dummyCache struct{}

// Add is a no-op.
func (*dummyCache) Add(_ felt.Felt, _ []byte) {}

// Get always returns nil.
func (*dummyCache) Get(_ felt.Felt) []byte { return nil }
