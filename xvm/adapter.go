// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xvm

import (
	"github.com/pkg/errors"

	"github.com/stellis-node/stellis/chain"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/state"
)

// StateReader is the read contract consumed by the execution engine.
// Implementations answer as of one pinned version of the state and are
// safe for concurrent use unless noted otherwise.
type StateReader interface {
	StorageAt(contract, key Word) (felt.Felt, error)
	NonceAt(contract Word) (felt.Felt, error)
	ClassHashAt(contract Word) (felt.Felt, error)
	CompiledClassHashAt(classHash felt.Felt) (felt.Felt, error)
	CompiledClassAt(classHash felt.Felt) ([]byte, error)
	// IsFirstWrite reports whether the given storage cell has not been
	// written yet within the block in flight, used for fee accounting.
	IsFirstWrite(contract, key Word) (bool, error)
}

// viewReader serves the read contract from a height-pinned view.
type viewReader struct {
	view *state.View
}

func (r *viewReader) StorageAt(contract, key Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	k, err := wordToKey(key)
	if err != nil {
		return felt.Zero, err
	}
	return r.view.StorageAt(addr, k)
}

func (r *viewReader) NonceAt(contract Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	return r.view.NonceAt(addr)
}

func (r *viewReader) ClassHashAt(contract Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	return r.view.ClassHashAt(addr)
}

func (r *viewReader) CompiledClassHashAt(classHash felt.Felt) (felt.Felt, error) {
	return r.view.CompiledClassHashAt(classHash)
}

func (r *viewReader) CompiledClassAt(classHash felt.Felt) ([]byte, error) {
	return r.view.CompiledClassAt(classHash)
}

// HistoricalAdapter serves the engine's read contract for replay and RPC
// against an already recorded height. It is read-only and safe for
// concurrent use.
type HistoricalAdapter struct {
	viewReader
	height uint64
}

// NewHistoricalAdapter pins an adapter at the given recorded height.
// Unrecorded heights fail with chain.ErrUnknownHeight.
func NewHistoricalAdapter(repo *chain.Repository, stater *state.Stater, height uint64) (*HistoricalAdapter, error) {
	rec, err := repo.GetCommitment(height)
	if err != nil {
		return nil, err
	}
	return &HistoricalAdapter{
		viewReader: viewReader{stater.NewView(rec.ContractRoot, rec.ClassRoot)},
		height:     height,
	}, nil
}

// Height returns the pinned height.
func (a *HistoricalAdapter) Height() uint64 { return a.height }

// IsFirstWrite always reports true: no block is in flight on a
// historical adapter, so every cell is untouched.
func (a *HistoricalAdapter) IsFirstWrite(contract, key Word) (bool, error) {
	if _, err := wordToKey(contract); err != nil {
		return false, err
	}
	if _, err := wordToKey(key); err != nil {
		return false, err
	}
	return true, nil
}

type cell struct {
	addr, key felt.Felt
}

// LiveAdapter backs the execution of one block being produced or
// imported. Reads resolve against the pending write set first, then the
// parent view; writes accumulate into a state diff that Seal turns into
// one atomic commit.
//
// A LiveAdapter serves a single execution thread; it is not safe for
// concurrent use.
type LiveAdapter struct {
	viewReader
	repo   *chain.Repository
	stater *state.Stater
	parent *chain.BlockSummary

	storage      map[cell]felt.Felt
	storageOrder []cell
	nonces       map[felt.Felt]felt.Felt
	nonceOrder   []felt.Felt
	bindings     map[felt.Felt]felt.Felt
	bindingOrder []felt.Felt
	classes      map[felt.Felt]felt.Felt
	classOrder   []felt.Felt
	blobs        map[felt.Felt][]byte
}

// NewLiveAdapter creates an adapter executing on top of the given parent
// height, which must be recorded already. For the genesis block pass a
// nil parent by using height math at the caller and NewGenesisAdapter.
func NewLiveAdapter(repo *chain.Repository, stater *state.Stater, parentHeight uint64) (*LiveAdapter, error) {
	parent, err := repo.GetSummary(parentHeight)
	if err != nil {
		return nil, err
	}
	a := newLiveAdapter(repo, stater, parent.Commitment.ContractRoot, parent.Commitment.ClassRoot)
	a.parent = parent
	return a, nil
}

// NewGenesisAdapter creates an adapter executing on top of the empty
// state, for building height 0.
func NewGenesisAdapter(repo *chain.Repository, stater *state.Stater) *LiveAdapter {
	return newLiveAdapter(repo, stater, felt.Zero, felt.Zero)
}

func newLiveAdapter(repo *chain.Repository, stater *state.Stater, contractRoot, classRoot felt.Felt) *LiveAdapter {
	return &LiveAdapter{
		viewReader: viewReader{stater.NewView(contractRoot, classRoot)},
		repo:       repo,
		stater:     stater,
		storage:    make(map[cell]felt.Felt),
		nonces:     make(map[felt.Felt]felt.Felt),
		bindings:   make(map[felt.Felt]felt.Felt),
		classes:    make(map[felt.Felt]felt.Felt),
		blobs:      make(map[felt.Felt][]byte),
	}
}

// Parent returns the summary of the parent block, nil for a genesis
// adapter.
func (a *LiveAdapter) Parent() *chain.BlockSummary { return a.parent }

// StorageAt answers from the pending write set first, so the engine
// observes its own writes within the block.
func (a *LiveAdapter) StorageAt(contract, key Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	k, err := wordToKey(key)
	if err != nil {
		return felt.Zero, err
	}
	if v, ok := a.storage[cell{addr, k}]; ok {
		return v, nil
	}
	return a.view.StorageAt(addr, k)
}

// NonceAt answers from the pending write set first.
func (a *LiveAdapter) NonceAt(contract Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	if n, ok := a.nonces[addr]; ok {
		return n, nil
	}
	return a.view.NonceAt(addr)
}

// ClassHashAt answers from the pending write set first.
func (a *LiveAdapter) ClassHashAt(contract Word) (felt.Felt, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return felt.Zero, err
	}
	if ch, ok := a.bindings[addr]; ok {
		return ch, nil
	}
	return a.view.ClassHashAt(addr)
}

// CompiledClassHashAt answers from the pending declarations first.
func (a *LiveAdapter) CompiledClassHashAt(classHash felt.Felt) (felt.Felt, error) {
	if cch, ok := a.classes[classHash]; ok {
		return cch, nil
	}
	return a.view.CompiledClassHashAt(classHash)
}

// CompiledClassAt answers from the pending declarations first.
func (a *LiveAdapter) CompiledClassAt(classHash felt.Felt) ([]byte, error) {
	if blob, ok := a.blobs[classHash]; ok {
		return blob, nil
	}
	return a.view.CompiledClassAt(classHash)
}

// IsFirstWrite reports whether the cell has not been written within this
// block yet.
func (a *LiveAdapter) IsFirstWrite(contract, key Word) (bool, error) {
	addr, err := wordToKey(contract)
	if err != nil {
		return false, err
	}
	k, err := wordToKey(key)
	if err != nil {
		return false, err
	}
	_, written := a.storage[cell{addr, k}]
	return !written, nil
}

// SetStorage records a storage write. A zero value clears the cell.
func (a *LiveAdapter) SetStorage(contract, key, value Word) error {
	addr, err := wordToKey(contract)
	if err != nil {
		return err
	}
	k, err := wordToKey(key)
	if err != nil {
		return err
	}
	v, err := wordToFelt(value)
	if err != nil {
		return err
	}
	c := cell{addr, k}
	if _, ok := a.storage[c]; !ok {
		a.storageOrder = append(a.storageOrder, c)
	}
	a.storage[c] = v
	return nil
}

// SetNonce records a nonce update.
func (a *LiveAdapter) SetNonce(contract Word, nonce felt.Felt) error {
	addr, err := wordToKey(contract)
	if err != nil {
		return err
	}
	if _, ok := a.nonces[addr]; !ok {
		a.nonceOrder = append(a.nonceOrder, addr)
	}
	a.nonces[addr] = nonce
	return nil
}

// Deploy records a contract's class binding. It covers both fresh
// deployments and class replacement of existing contracts.
func (a *LiveAdapter) Deploy(contract Word, classHash felt.Felt) error {
	addr, err := wordToKey(contract)
	if err != nil {
		return err
	}
	if _, ok := a.bindings[addr]; !ok {
		a.bindingOrder = append(a.bindingOrder, addr)
	}
	a.bindings[addr] = classHash
	return nil
}

// Declare records a class declaration together with its compiled blob.
func (a *LiveAdapter) Declare(classHash, compiledClassHash felt.Felt, compiled []byte) {
	if _, ok := a.classes[classHash]; !ok {
		a.classOrder = append(a.classOrder, classHash)
	}
	a.classes[classHash] = compiledClassHash
	if len(compiled) > 0 {
		a.blobs[classHash] = compiled
	}
}

// Diff flattens the pending write set into a state diff. Entries keep
// first-write order; deployments are split from class replacements by
// checking the parent state.
func (a *LiveAdapter) Diff() (*state.Diff, error) {
	diff := &state.Diff{}

	for _, addr := range a.bindingOrder {
		prev, err := a.view.ClassHashAt(addr)
		if err != nil {
			return nil, err
		}
		bound := state.DeployedContract{Address: addr, ClassHash: a.bindings[addr]}
		if prev.IsZero() {
			diff.DeployedContracts = append(diff.DeployedContracts, bound)
		} else {
			diff.ReplacedClasses = append(diff.ReplacedClasses, bound)
		}
	}
	for _, addr := range a.nonceOrder {
		diff.Nonces = append(diff.Nonces, state.NonceUpdate{Address: addr, Nonce: a.nonces[addr]})
	}

	byAddr := make(map[felt.Felt]int)
	for _, c := range a.storageOrder {
		i, ok := byAddr[c.addr]
		if !ok {
			i = len(diff.StorageDiffs)
			byAddr[c.addr] = i
			diff.StorageDiffs = append(diff.StorageDiffs, state.StorageDiff{Address: c.addr})
		}
		diff.StorageDiffs[i].Entries = append(diff.StorageDiffs[i].Entries, state.StorageEntry{
			Key:   c.key,
			Value: a.storage[c],
		})
	}

	for _, classHash := range a.classOrder {
		diff.DeclaredClasses = append(diff.DeclaredClasses, state.DeclaredClass{
			ClassHash:         classHash,
			CompiledClassHash: a.classes[classHash],
		})
	}
	return diff, nil
}

// Seal applies the block's write set on top of the parent state and
// records the block, all in one atomic write. When expectedRoot is
// non-zero the computed state root must match it, otherwise the block is
// rejected with ErrRootMismatch and nothing is recorded.
func (a *LiveAdapter) Seal(header *chain.Header, expectedRoot felt.Felt, asBest bool) (*chain.BlockSummary, error) {
	diff, err := a.Diff()
	if err != nil {
		return nil, err
	}

	contractRoot, classRoot := a.view.Roots()
	st := a.stater.NewState(contractRoot, classRoot)
	if err := diff.Apply(st); err != nil {
		return nil, err
	}
	for _, declared := range diff.DeclaredClasses {
		if blob, ok := a.blobs[declared.ClassHash]; ok {
			st.DeclareClass(declared.ClassHash, declared.CompiledClassHash, blob)
		}
	}

	stage, err := st.Stage(header.Number)
	if err != nil {
		return nil, err
	}
	if !expectedRoot.IsZero() && !stage.Hash().Equal(expectedRoot) {
		return nil, errors.WithMessagef(ErrRootMismatch,
			"height %d: computed %v, expected %v",
			header.Number, stage.Hash().AbbrevString(), expectedRoot.AbbrevString())
	}
	return a.repo.AddBlock(header, stage, diff, asBest)
}
