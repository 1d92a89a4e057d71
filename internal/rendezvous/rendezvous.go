// SPDX-License-Identifier: Unlicense OR MIT

// Package rendezvous implements a reusable barrier for a fixed number of
// parties.
//
// A Barrier has no timeout and no cancellation: a party that never arrives
// blocks every other party forever. The optional watchdog only reports such
// stalls.
package rendezvous

import (
	"sync"
	"time"
)

// Barrier blocks callers of Wait until Parties callers have arrived, then
// releases them all and resets for the next round.
type Barrier struct {
	parties int

	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	round   uint64

	watchdog time.Duration
	onStall  func(round uint64)
}

// New returns a barrier for n parties.
func New(n int) *Barrier {
	if n < 1 {
		panic("rendezvous: barrier needs at least one party")
	}
	b := &Barrier{parties: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// SetWatchdog arranges for stall to be called, once per round, when a
// party has waited longer than d without the round completing. A zero d
// disables the watchdog. Waiting parties keep waiting regardless.
func (b *Barrier) SetWatchdog(d time.Duration, stall func(round uint64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watchdog = d
	b.onStall = stall
}

// Wait blocks until every party has called Wait for the current round.
// It reports whether the caller was the last to arrive.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	round := b.round
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.round++
		b.cond.Broadcast()
		return true
	}
	if b.watchdog > 0 && b.onStall != nil {
		d, stall := b.watchdog, b.onStall
		t := time.AfterFunc(d, func() {
			b.mu.Lock()
			stuck := b.round == round
			b.mu.Unlock()
			if stuck {
				stall(round)
			}
		})
		defer t.Stop()
	}
	for b.round == round {
		b.cond.Wait()
	}
	return false
}

// Round returns the number of completed rounds.
func (b *Barrier) Round() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}
