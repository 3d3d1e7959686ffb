// Copyright (c) 2025 The Stellis developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides tiny concurrency helpers.
package co

import (
	"sync"
)

// Waiter hands out the channel to wait on. The value read tells how the
// wakeup happened: true for Signal, false for Broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal is a rendezvous point for goroutines announcing and waiting for
// an event. Unlike sync.Cond the waiting side is a channel, so it composes
// with select. The zero value is ready to use.
type Signal struct {
	l  sync.Mutex
	ch chan bool
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
}

// Signal wakes one waiter. A wakeup posted with no waiter around is kept
// and delivered to the next one.
func (s *Signal) Signal() {
	s.l.Lock()

	s.init()
	select {
	case s.ch <- true:
	default:
	}

	s.l.Unlock()
}

// Broadcast wakes every current waiter.
func (s *Signal) Broadcast() {
	s.l.Lock()

	s.init()
	close(s.ch)
	s.ch = make(chan bool, 1)

	s.l.Unlock()
}

// NewWaiter creates a Waiter bound to this signal. Each call to C picks up
// the channel of the current broadcast generation.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()

	s.init()
	ref := s.ch

	s.l.Unlock()

	return waiterFunc(func() (ch <-chan bool) {
		ch = ref

		s.l.Lock()
		ref = s.ch
		s.l.Unlock()

		return
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool {
	return w()
}
