// SPDX-License-Identifier: Unlicense OR MIT

// Package key implements key and focus events and the keymap.
package key

import (
	"strings"
	"time"
)

// A FocusEvent is generated when a surface gains or loses
// keyboard focus.
type FocusEvent struct {
	Focus bool
}

// An Event is generated when a key is pressed or released.
type Event struct {
	// State is the state of the key when the event was fired.
	State State
	// Keycode is the platform key code.
	Keycode int32
	// Keyval is the translated key symbol.
	Keyval Keyval
	// Modifiers is the set of active modifiers.
	Modifiers Modifiers
	// Consumed is the subset of Modifiers used by the translation.
	Consumed Modifiers
	// Level is the shift level of the translation.
	Level int
	Time  time.Duration
}

// Keyval is an X11 key symbol.
type Keyval uint32

// State is the state of a key during an event.
type State uint8

const (
	// Press is the state of a pressed key.
	Press State = iota
	// Release is the state of a key that has been released.
	Release
)

// Modifiers
type Modifiers uint32

const (
	// ModCtrl is the ctrl modifier key.
	ModCtrl Modifiers = 1 << iota
	// ModShift is the shift modifier key.
	ModShift
	// ModAlt is the alt modifier key.
	ModAlt
	// ModSuper is the "logo" modifier key, Meta on Android.
	ModSuper
	// ModCapsLock is set while caps lock is engaged.
	ModCapsLock
)

// Contain reports whether m contains all modifiers
// in m2.
func (m Modifiers) Contain(m2 Modifiers) bool {
	return m&m2 == m2
}

func (FocusEvent) ImplementsEvent() {}
func (Event) ImplementsEvent()      {}

func (m Modifiers) String() string {
	var strs []string
	if m.Contain(ModCtrl) {
		strs = append(strs, "Ctrl")
	}
	if m.Contain(ModShift) {
		strs = append(strs, "Shift")
	}
	if m.Contain(ModAlt) {
		strs = append(strs, "Alt")
	}
	if m.Contain(ModSuper) {
		strs = append(strs, "Super")
	}
	if m.Contain(ModCapsLock) {
		strs = append(strs, "CapsLock")
	}
	return strings.Join(strs, "-")
}

func (s State) String() string {
	switch s {
	case Press:
		return "Press"
	case Release:
		return "Release"
	default:
		panic("invalid State")
	}
}
