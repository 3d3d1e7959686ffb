// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"io"

	"github.com/stellis-node/stellis/kv"
)

// engine is the underlying kv engine.
type engine interface {
	kv.Store
	io.Closer
}
