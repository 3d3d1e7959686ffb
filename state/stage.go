// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/stellis-node/stellis/felt"
	"github.com/stellis-node/stellis/kv"
	"github.com/stellis-node/stellis/muxdb"
)

// Roots is the set of tree roots produced by committing one block's state
// changes. State is the published commitment derived from the other two.
type Roots struct {
	State    felt.Felt
	Contract felt.Felt
	Class    felt.Felt
}

// Stage holds the fully computed trees of one block's state transition,
// ready to be persisted. Roots are fixed at stage creation; committing
// twice is harmless since nodes are content addressed.
type Stage struct {
	db    *muxdb.MuxDB
	roots Roots
	tries []*muxdb.Trie
	blobs map[felt.Felt][]byte
}

// Roots returns the new tree roots.
func (s *Stage) Roots() Roots {
	return s.roots
}

// Hash returns the new state commitment.
func (s *Stage) Hash() felt.Felt {
	return s.roots.State
}

// CommitTo stages all tree nodes and class blobs on the given putter,
// which is usually a bulk shared with the block record writes. Nothing is
// durable until that bulk is written.
func (s *Stage) CommitTo(putter kv.Putter) (Roots, error) {
	for _, t := range s.tries {
		if _, err := t.CommitTo(putter); err != nil {
			return Roots{}, &Error{err}
		}
	}

	if len(s.blobs) > 0 {
		blobPutter := s.db.NewStorePutter(classStoreName, putter)
		for classHash, blob := range s.blobs {
			k := classHash.Bytes()
			if err := blobPutter.Put(k[:], blob); err != nil {
				return Roots{}, &Error{err}
			}
		}
	}
	return s.roots, nil
}

// Commit commits all changes in a bulk of its own.
func (s *Stage) Commit() (Roots, error) {
	bulk := s.db.NewBulk()
	roots, err := s.CommitTo(bulk)
	if err != nil {
		return Roots{}, err
	}
	if err := bulk.Write(); err != nil {
		return Roots{}, &Error{err}
	}
	return roots, nil
}
