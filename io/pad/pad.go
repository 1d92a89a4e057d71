// SPDX-License-Identifier: Unlicense OR MIT

// Package pad implements events of game controllers and drawing tablet
// pads.
package pad

import (
	"time"
)

// A ButtonEvent is generated when a pad button is pressed or released.
type ButtonEvent struct {
	// Button is the pad button index, starting at zero.
	Button int
	Press  bool
	Time   time.Duration
}

// A RingEvent reports the position of a rotary ring.
type RingEvent struct {
	Ring int
	// Value is the ring angle in degrees, in [0, 360].
	Value float64
	Time  time.Duration
}

// Android game controller key codes.
const (
	// KeycodeButtonA through KeycodeButtonMode are AKEYCODE_BUTTON_A
	// through AKEYCODE_BUTTON_MODE.
	KeycodeButtonA    = 96
	KeycodeButtonMode = 110
	// KeycodeButton1 through KeycodeButton16 are AKEYCODE_BUTTON_1
	// through AKEYCODE_BUTTON_16.
	KeycodeButton1  = 188
	KeycodeButton16 = 203
)

// ButtonForKeycode returns the pad button of a game controller key code.
// The lettered buttons come first, followed by the numbered ones.
func ButtonForKeycode(code int32) (int, bool) {
	switch {
	case code >= KeycodeButtonA && code <= KeycodeButtonMode:
		return int(code - KeycodeButtonA), true
	case code >= KeycodeButton1 && code <= KeycodeButton16:
		return KeycodeButtonMode - KeycodeButtonA + 1 + int(code-KeycodeButton1), true
	}
	return 0, false
}

func (ButtonEvent) ImplementsEvent() {}
func (RingEvent) ImplementsEvent()   {}
