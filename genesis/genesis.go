// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the height-0 block of a chain from a declarative
// preset, either built in or loaded from a JSON file.
package genesis

import (
	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/state"
)

// Genesis is a ready-made genesis block preset.
type Genesis struct {
	builder *Builder
	id      felt.Felt
	name    string
}

// ID returns the genesis block hash. It identifies the chain.
func (g *Genesis) ID() felt.Felt {
	return g.id
}

// Name returns the preset name.
func (g *Genesis) Name() string {
	return g.name
}

// Build builds the genesis block.
func (g *Genesis) Build(stater *state.Stater) (*chain.Header, *state.Stage, error) {
	header, stage, err := g.builder.Build(stater)
	if err != nil {
		return nil, nil, err
	}
	if !header.Hash.Equal(g.id) {
		return nil, nil, errors.New("built genesis hash diverged from preset id")
	}
	return header, stage, nil
}

// Bootstrap records the genesis block when the repository is empty.
// On an already initialized repository it verifies that height 0 matches
// the preset and fails otherwise, guarding against opening a data
// directory of a different chain.
func (g *Genesis) Bootstrap(repo *chain.Repository, stater *state.Stater) (*chain.BlockSummary, error) {
	header, stage, err := g.Build(stater)
	if err != nil {
		return nil, err
	}
	asBest := repo.BestSummary() == nil
	summary, err := repo.AddBlock(header, stage, nil, asBest)
	if err != nil {
		if errors.Is(err, chain.ErrBlockAlreadyRecorded) {
			return nil, errors.Wrapf(err, "data directory belongs to another chain, want genesis %v", g.id.AbbrevString())
		}
		return nil, err
	}
	return summary, nil
}
