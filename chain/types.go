// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"github.com/stellis-node/stellis/felt"
)

// Header identifies one finalized block. The hash is assigned by the
// block producer; this layer treats it as opaque.
type Header struct {
	Number     uint64
	Hash       felt.Felt
	ParentHash felt.Felt
	Timestamp  uint64
}

// CommitmentRecord is the per-height snapshot of all tree roots.
// StateRoot is the published commitment; the other roots re-open the
// trees. Immutable once written.
type CommitmentRecord struct {
	StateRoot    felt.Felt
	ContractRoot felt.Felt
	ClassRoot    felt.Felt
}

// BlockSummary presents block summary: the header plus its commitment
// record.
type BlockSummary struct {
	Header     Header
	Commitment CommitmentRecord
}
