// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
)

// the key for height-indexed records: 8-byte big-endian height, so that
// iteration follows chain order.
type heightKey [8]byte

func makeHeightKey(height uint64) (k heightKey) {
	binary.BigEndian.PutUint64(k[:], height)
	return
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func decodeRLP(data []byte, val any) error {
	return rlp.DecodeBytes(data, val)
}

func saveBlockSummary(w kv.Putter, summary *BlockSummary) error {
	k := makeHeightKey(summary.Header.Number)
	return saveRLP(w, k[:], summary)
}

func loadBlockSummary(r kv.Getter, height uint64) (*BlockSummary, error) {
	var summary BlockSummary
	k := makeHeightKey(height)
	if err := loadRLP(r, k[:], &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func saveHashIndex(w kv.Putter, hash felt.Felt, height uint64) error {
	k := makeHeightKey(height)
	h := hash.Bytes()
	return w.Put(h[:], k[:])
}

func loadHashIndex(r kv.Getter, hash felt.Felt) (uint64, error) {
	h := hash.Bytes()
	data, err := r.Get(h[:])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}
