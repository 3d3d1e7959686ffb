// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/state"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64

	stateProcs []func(state *state.State) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis block hash over a throwaway in-memory db.
func (b *Builder) ComputeID() (felt.Felt, error) {
	db := muxdb.NewMem()
	header, _, err := b.Build(state.NewStater(db, crypto.Pedersen))
	if err != nil {
		return felt.Zero, err
	}
	return header.Hash, nil
}

// Build builds the genesis block according to presets. The returned stage
// is ready to be recorded at height 0.
func (b *Builder) Build(stater *state.Stater) (*chain.Header, *state.Stage, error) {
	st := stater.NewState(felt.Zero, felt.Zero)

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, errors.Wrap(err, "state process")
		}
	}

	stage, err := st.Stage(0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "stage")
	}

	header := &chain.Header{
		Number:     0,
		ParentHash: felt.Zero,
		Timestamp:  b.timestamp,
		Hash: crypto.PedersenArray(
			felt.Zero,
			stage.Hash(),
			felt.FromUint64(b.timestamp),
		),
	}
	return header, stage, nil
}
