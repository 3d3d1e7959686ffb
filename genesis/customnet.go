// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/state"
)

// CustomGenesis is the JSON schema of a user-supplied genesis file.
type CustomGenesis struct {
	LaunchTime uint64          `json:"launchTime"`
	Contracts  []ContractAlloc `json:"contracts"`
	Classes    []ClassAlloc    `json:"classes"`
}

// ContractAlloc pre-deploys one contract.
type ContractAlloc struct {
	Address   felt.Felt      `json:"address"`
	ClassHash felt.Felt      `json:"classHash"`
	Nonce     felt.Felt      `json:"nonce"`
	Storage   []StorageAlloc `json:"storage"`
}

// StorageAlloc seeds one storage cell.
type StorageAlloc struct {
	Key   felt.Felt `json:"key"`
	Value felt.Felt `json:"value"`
}

// ClassAlloc pre-declares one class. CompiledClass is hex encoded.
type ClassAlloc struct {
	ClassHash         felt.Felt `json:"classHash"`
	CompiledClassHash felt.Felt `json:"compiledClassHash"`
	CompiledClass     string    `json:"compiledClass"`
}

// LoadCustomGenesis decodes a genesis file.
func LoadCustomGenesis(r io.Reader) (*CustomGenesis, error) {
	var gen CustomGenesis
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	return &gen, nil
}

// LoadCustomGenesisFile reads and decodes a genesis file at the given path.
func LoadCustomGenesisFile(path string) (*CustomGenesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer f.Close()
	return LoadCustomGenesis(f)
}

// NewCustomNet builds a genesis preset from a user-supplied allocation.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(st *state.State) error {
			for _, class := range gen.Classes {
				var compiled []byte
				if class.CompiledClass != "" {
					var err error
					if compiled, err = hex.DecodeString(class.CompiledClass); err != nil {
						return errors.Wrapf(err, "class %v compiled blob", class.ClassHash.AbbrevString())
					}
				}
				st.DeclareClass(class.ClassHash, class.CompiledClassHash, compiled)
			}
			for _, contract := range gen.Contracts {
				if contract.ClassHash.IsZero() {
					return errors.Errorf("contract %v has no class hash", contract.Address.AbbrevString())
				}
				if err := st.SetClassHash(contract.Address, contract.ClassHash); err != nil {
					return err
				}
				if !contract.Nonce.IsZero() {
					if err := st.SetNonce(contract.Address, contract.Nonce); err != nil {
						return err
					}
				}
				for _, cell := range contract.Storage {
					st.SetStorage(contract.Address, cell.Key, cell.Value)
				}
			}
			return nil
		})

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, "customnet"}, nil
}
