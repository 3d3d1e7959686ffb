// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import "github.com/stellis-node/stellis/metrics"

var (
	metricCacheHitMiss        = metrics.LazyLoadGaugeVec("repo_cache_hit_miss_count", []string{"event"})
	metricBestHeight          = metrics.LazyLoadGauge("repo_best_height_gauge")
	metricBlockCommitDuration = metrics.LazyLoadHistogram("repo_block_commit_duration_ms", metrics.Bucket10s)
)
