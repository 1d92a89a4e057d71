// SPDX-License-Identifier: Unlicense OR MIT

// Package handle implements a slot table that hands out stable 64-bit
// identifiers for Go values referenced from foreign code.
//
// An ID packs a slot index and the slot's generation. Removing a value
// bumps the generation of its slot, so an ID that outlives its value is
// detected instead of resolving to whatever value reuses the slot. The zero
// ID is never issued.
package handle

// ID identifies a value stored in a Table.
type ID uint64

// Table maps IDs to values. It is not safe for concurrent use.
type Table[T any] struct {
	slots []slot[T]
	free  []uint32
	n     int
}

type slot[T any] struct {
	gen  uint32
	used bool
	val  T
}

func pack(index, gen uint32) ID {
	return ID(uint64(gen)<<32 | uint64(index+1))
}

func (id ID) unpack() (index, gen uint32, ok bool) {
	lo := uint32(id)
	if lo == 0 {
		return 0, 0, false
	}
	return lo - 1, uint32(id >> 32), true
}

// Insert stores v and returns its ID.
func (t *Table[T]) Insert(v T) ID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{gen: 1})
	}
	s := &t.slots[idx]
	s.used = true
	s.val = v
	t.n++
	return pack(idx, s.gen)
}

// Get returns the value for id and whether id is live.
func (t *Table[T]) Get(id ID) (T, bool) {
	var zero T
	s := t.lookup(id)
	if s == nil {
		return zero, false
	}
	return s.val, true
}

// Remove deletes the value for id. It reports whether id was live.
func (t *Table[T]) Remove(id ID) bool {
	s := t.lookup(id)
	if s == nil {
		return false
	}
	var zero T
	s.val = zero
	s.used = false
	s.gen++
	idx, _, _ := id.unpack()
	t.free = append(t.free, idx)
	t.n--
	return true
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	return t.n
}

// Range calls f for every live value until f returns false.
func (t *Table[T]) Range(f func(id ID, v T) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.used {
			continue
		}
		if !f(pack(uint32(i), s.gen), s.val) {
			return
		}
	}
}

func (t *Table[T]) lookup(id ID) *slot[T] {
	idx, gen, ok := id.unpack()
	if !ok || int(idx) >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	if !s.used || s.gen != gen {
		return nil
	}
	return s
}
