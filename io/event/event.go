// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains the types shared by all toolkit events.
package event

// Event is the marker interface for events.
type Event interface {
	ImplementsEvent()
}

// Sequence identifies one touch contact from its begin to its end or
// cancel event. Sequences of concurrently active contacts differ.
type Sequence uint64

// mix is the splitmix64 finalizer.
func mix(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

// BaseSequence derives the sequence base of a gesture from its down time
// and the identifier of the event stream that reported it.
func BaseSequence(downTime int64, stream int32) Sequence {
	return Sequence(mix(uint64(downTime)) ^ mix(uint64(uint32(stream))|1<<32))
}

// Contact returns the sequence of one contact of the gesture.
func (s Sequence) Contact(pointerID int32) Sequence {
	// Offset the id so that contact 0 does not map to the base itself.
	return s ^ Sequence(mix(uint64(uint32(pointerID))+0x9e3779b97f4a7c15))
}
