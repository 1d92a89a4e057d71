// SPDX-License-Identifier: Unlicense OR MIT

// Package system contains the surface lifecycle events delivered to the
// toolkit.
package system

import (
	"image"
	"strings"
)

// A ConfigureEvent is generated when the logical size or scale of a
// surface changes.
type ConfigureEvent struct {
	// Width and Height are in logical units, the device size divided by
	// Scale and rounded up.
	Width, Height int
	Scale         float64
}

// A MapEvent is generated when a surface is mapped or unmapped.
type MapEvent struct {
	Mapped bool
}

// A FrameEvent asks the toolkit to paint a mapped surface.
type FrameEvent struct {
	// Region is the invalidated area in logical units.
	Region image.Rectangle
}

// DeleteEvent asks the toolkit to close a toplevel, for example after the
// platform destroyed its activity or the back button was pressed.
type DeleteEvent struct{}

// A StateEvent is generated when the window state of a toplevel changes.
type StateEvent struct {
	State State
}

// State is a set of toplevel window states.
type State uint8

const (
	StateFocused State = 1 << iota
	StateFullscreen
)

// Contain reports whether s contains all states in s2.
func (s State) Contain(s2 State) bool {
	return s&s2 == s2
}

func (s State) String() string {
	var strs []string
	if s.Contain(StateFocused) {
		strs = append(strs, "Focused")
	}
	if s.Contain(StateFullscreen) {
		strs = append(strs, "Fullscreen")
	}
	return strings.Join(strs, "|")
}

func (ConfigureEvent) ImplementsEvent() {}
func (MapEvent) ImplementsEvent()       {}
func (FrameEvent) ImplementsEvent()     {}
func (DeleteEvent) ImplementsEvent()    {}
func (StateEvent) ImplementsEvent()     {}
