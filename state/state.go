// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the world state: contract records, storage cells
// and declared classes, committed through authenticated trees whose roots
// form the published state commitment.
package state

import (
	"fmt"

	"github.com/stellis-node/stellis/crypto"
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/muxdb"
	"github.com/stellis-node/stellis/stackedmap"
)

const classStoreName = "state.classes"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// State buffers mutations of the world state on top of a committed
// version. All writes stay in memory until turned into a Stage and
// committed. It is not safe for concurrent use.
type State struct {
	db        *muxdb.MuxDB
	hash      crypto.HashFunc
	trie      *muxdb.Trie // the global contract tree reader
	classTrie *muxdb.Trie // the class tree reader
	cache     map[felt.Felt]*cachedContract
	sm        *stackedmap.StackedMap // keeps revisions of buffered writes
}

// New create state object on top of the given tree roots.
func New(db *muxdb.MuxDB, hash crypto.HashFunc, contractRoot, classRoot felt.Felt) *State {
	state := State{
		db:        db,
		hash:      hash,
		trie:      db.NewTrie(contractRoot, hash),
		classTrie: db.NewTrie(classRoot, hash),
		cache:     make(map[felt.Felt]*cachedContract),
	}

	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.cacheGetter(key)
	})
	// the base level holds writes made outside any checkpoint; Put
	// requires a pushed level, and checkpoints stack above this floor
	state.sm.Push()
	return &state
}

// journal key types
type (
	contractKey  felt.Felt                  // -> *Contract
	storageKey   struct{ addr, key felt.Felt } // -> felt.Felt
	classKey     felt.Felt                  // -> felt.Felt, compiled class hash
	classBlobKey felt.Felt                  // -> []byte
)

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case contractKey:
		cc, err := s.getCachedContract(felt.Felt(k))
		if err != nil {
			return nil, false, err
		}
		return &cc.data, true, nil
	case storageKey:
		cc, err := s.getCachedContract(k.addr)
		if err != nil {
			return nil, false, err
		}
		v, err := cc.GetStorage(k.key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case classKey:
		cch, err := loadClass(s.classTrie, felt.Felt(k))
		if err != nil {
			return nil, false, err
		}
		return cch, true, nil
	case classBlobKey:
		blob, err := loadClassBlob(s.db, felt.Felt(k))
		if err != nil {
			return nil, false, err
		}
		return blob, true, nil
	}
	panic(fmt.Errorf("state: unexpected key type %+v", key))
}

func (s *State) getCachedContract(addr felt.Felt) (*cachedContract, error) {
	if cc, ok := s.cache[addr]; ok {
		return cc, nil
	}
	c, deployed, err := loadContract(s.trie, addr)
	if err != nil {
		return nil, err
	}
	cc := newCachedContract(s.db, s.hash, addr, c, deployed)
	s.cache[addr] = cc
	return cc, nil
}

// getContract gets the contract record by address. The returned record
// must not be modified.
func (s *State) getContract(addr felt.Felt) (*Contract, error) {
	v, _, err := s.sm.Get(contractKey(addr))
	if err != nil {
		return nil, err
	}
	return v.(*Contract), nil
}

func (s *State) getContractCopy(addr felt.Felt) (Contract, error) {
	c, err := s.getContract(addr)
	if err != nil {
		return Contract{}, err
	}
	return *c, nil
}

func (s *State) updateContract(addr felt.Felt, c *Contract) {
	s.sm.Put(contractKey(addr), c)
}

// GetStorage returns the storage value for the given contract and key.
// Missing entries resolve to the zero felt.
func (s *State) GetStorage(addr, key felt.Felt) (felt.Felt, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return v.(felt.Felt), nil
}

// SetStorage sets the storage value for the given contract and key.
// The zero value clears the entry.
func (s *State) SetStorage(addr, key, value felt.Felt) {
	s.sm.Put(storageKey{addr, key}, value)
}

// GetNonce returns the nonce of the given contract, zero if not deployed.
func (s *State) GetNonce(addr felt.Felt) (felt.Felt, error) {
	c, err := s.getContract(addr)
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return c.Nonce, nil
}

// SetNonce sets the nonce of the given contract.
func (s *State) SetNonce(addr, nonce felt.Felt) error {
	cpy, err := s.getContractCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Nonce = nonce
	s.updateContract(addr, &cpy)
	return nil
}

// GetClassHash returns the class hash of the given contract, zero if not
// deployed.
func (s *State) GetClassHash(addr felt.Felt) (felt.Felt, error) {
	c, err := s.getContract(addr)
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return c.ClassHash, nil
}

// SetClassHash binds the contract to a class. It both deploys new
// contracts and replaces the class of existing ones.
func (s *State) SetClassHash(addr, classHash felt.Felt) error {
	cpy, err := s.getContractCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.ClassHash = classHash
	s.updateContract(addr, &cpy)
	return nil
}

// Exists returns whether a contract is deployed at the given address.
func (s *State) Exists(addr felt.Felt) (bool, error) {
	c, err := s.getContract(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !c.IsEmpty(), nil
}

// GetCompiledClassHash returns the compiled class hash recorded for the
// given class hash, zero if the class was never declared.
func (s *State) GetCompiledClassHash(classHash felt.Felt) (felt.Felt, error) {
	v, _, err := s.sm.Get(classKey(classHash))
	if err != nil {
		return felt.Zero, &Error{err}
	}
	return v.(felt.Felt), nil
}

// GetCompiledClass returns the compiled class blob, nil if absent.
func (s *State) GetCompiledClass(classHash felt.Felt) ([]byte, error) {
	v, _, err := s.sm.Get(classBlobKey(classHash))
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// DeclareClass records a class declaration: the class tree gains a leaf
// for classHash and the compiled blob becomes loadable.
func (s *State) DeclareClass(classHash, compiledClassHash felt.Felt, compiled []byte) {
	s.sm.Put(classKey(classHash), compiledClassHash)
	if len(compiled) > 0 {
		s.sm.Put(classBlobKey(classHash), compiled)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to compute the new tree roots or commit all
// buffered changes. newHeight stamps the deploy height of contracts first
// seen in this block.
func (s *State) Stage(newHeight uint64) (*Stage, error) {
	type changed struct {
		data            Contract
		wasDeployed     bool
		storage         map[felt.Felt]felt.Felt
		baseStorageTrie *muxdb.Trie
	}

	var (
		changes = make(map[felt.Felt]*changed)
		classes = make(map[felt.Felt]felt.Felt)
		blobs   = make(map[felt.Felt][]byte)
	)

	// get or create changed contract
	getChanged := func(addr felt.Felt) (*changed, error) {
		if c, ok := changes[addr]; ok {
			return c, nil
		}
		cc, err := s.getCachedContract(addr)
		if err != nil {
			return nil, &Error{err}
		}
		c := &changed{data: cc.data, wasDeployed: cc.deployed, baseStorageTrie: cc.cache.storageTrie}
		changes[addr] = c
		return c, nil
	}

	var jerr error
	// traverse journal to build changes
	s.sm.Journal(func(k, v any) bool {
		var c *changed
		switch key := k.(type) {
		case contractKey:
			if c, jerr = getChanged(felt.Felt(key)); jerr != nil {
				return false
			}
			c.data = *(v.(*Contract))
		case storageKey:
			if c, jerr = getChanged(key.addr); jerr != nil {
				return false
			}
			if c.storage == nil {
				c.storage = make(map[felt.Felt]felt.Felt)
			}
			c.storage[key.key] = v.(felt.Felt)
		case classKey:
			classes[felt.Felt(key)] = v.(felt.Felt)
		case classBlobKey:
			blobs[felt.Felt(key)] = v.([]byte)
		}
		return true
	})
	if jerr != nil {
		return nil, &Error{jerr}
	}

	var (
		trieCpy  = s.trie.Copy()
		classCpy = s.classTrie.Copy()
		tries    = make([]*muxdb.Trie, 0, len(changes)+2)
	)

	for addr, c := range changes {
		if len(c.storage) > 0 {
			var sTrie *muxdb.Trie
			if c.baseStorageTrie != nil {
				sTrie = c.baseStorageTrie.Copy()
			} else {
				sTrie = s.db.NewTrie(c.data.StorageRoot, s.hash)
			}
			for k, v := range c.storage {
				if err := sTrie.Update(k, v, nil); err != nil {
					return nil, &Error{err}
				}
			}
			c.data.StorageRoot = sTrie.Hash()
			tries = append(tries, sTrie)
		}
		if !c.wasDeployed && !c.data.IsEmpty() {
			c.data.DeployHeight = newHeight
		}
		if err := saveContract(trieCpy, s.hash, addr, &c.data); err != nil {
			return nil, &Error{err}
		}
	}

	for classHash, compiledClassHash := range classes {
		if err := saveClass(classCpy, s.hash, classHash, compiledClassHash); err != nil {
			return nil, &Error{err}
		}
	}
	tries = append(tries, trieCpy, classCpy)

	contractRoot := trieCpy.Hash()
	classRoot := classCpy.Hash()

	return &Stage{
		db: s.db,
		roots: Roots{
			State:    crypto.StateCommitment(s.hash, contractRoot, classRoot),
			Contract: contractRoot,
			Class:    classRoot,
		},
		tries: tries,
		blobs: blobs,
	}, nil
}
