// SPDX-License-Identifier: Unlicense OR MIT

// Package pointer implements pointer, touch and scroll events.
package pointer

import (
	"strings"
	"time"

	"github.com/GNOME/gtk-sub015/io/event"
	"github.com/GNOME/gtk-sub015/io/key"
)

// Event is a pointer, touch, crossing or scroll event. Coordinates are
// in surface-logical units.
type Event struct {
	Kind Kind
	// Device is the logical device that produced the event.
	Device Device
	// Tool is the physical tool, nil for touch contacts and crossings.
	Tool *Tool
	// Time is the platform event time.
	Time time.Duration
	X, Y float64
	// Button is the button that changed for Press and Release.
	Button Button
	// Buttons is the set of buttons held after the event.
	Buttons Buttons
	// Modifiers is the set of active modifiers.
	Modifiers key.Modifiers
	// Sequence identifies the contact of touch events.
	Sequence event.Sequence
	// DX and DY are the scroll deltas of Scroll events.
	DX, DY float64
	// IsStop reports whether a Scroll event ends a scroll gesture.
	IsStop bool
	// Axes holds the normalized tool axes, if any.
	Axes Axes
}

// Axes are tool axis values normalized to the toolkit ranges: pressure
// and distance in [0, 1], tilts in [-1, 1].
type Axes struct {
	Valid    AxisFlags
	Pressure float64
	Distance float64
	XTilt    float64
	YTilt    float64
}

// AxisFlags is a set of axes.
type AxisFlags uint8

const (
	AxisPressure AxisFlags = 1 << iota
	AxisDistance
	AxisXTilt
	AxisYTilt
)

// Kind of an Event.
type Kind uint

// Device is one of the logical seat devices.
type Device uint8

// Button is a toolkit button number. Zero means no button.
type Button uint8

// Buttons is a set of buttons.
type Buttons uint8

// ToolKind is the kind of a physical tool.
type ToolKind uint8

// Tool is a physical input tool. Tools live for the lifetime of the
// process; compare them by pointer.
type Tool struct {
	Kind ToolKind
}

// Cursor is a CSS cursor name.
type Cursor string

const (
	// Press of a button, or of a stylus tip.
	Press Kind = 1 << iota
	// Release of a button.
	Release
	// Motion of a pointer.
	Motion
	// Enter is sent when the pointer moves over a surface.
	Enter
	// Leave is sent when the pointer leaves a surface.
	Leave
	// Scroll of a wheel or touchpad.
	Scroll
	// TouchBegin starts a touch sequence.
	TouchBegin
	// TouchUpdate moves a touch sequence.
	TouchUpdate
	// TouchEnd ends a touch sequence.
	TouchEnd
	// TouchCancel aborts a touch sequence.
	TouchCancel
)

const (
	DevicePointer Device = iota
	DeviceTouchscreen
	DeviceKeyboard
)

const (
	ButtonPrimary   Button = 1
	ButtonMiddle    Button = 2
	ButtonSecondary Button = 3
	// ButtonStylusPrimary and ButtonStylusSecondary are the barrel
	// buttons of a stylus.
	ButtonStylusPrimary   Button = 8
	ButtonStylusSecondary Button = 9
)

const (
	ToolMouse ToolKind = iota
	ToolPen
	ToolEraser
)

const (
	CursorDefault  Cursor = "default"
	CursorNone     Cursor = "none"
	CursorText     Cursor = "text"
	CursorPointer  Cursor = "pointer"
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
	CursorWait     Cursor = "wait"
)

// Mask returns the Buttons bit of b.
func (b Button) Mask() Buttons {
	switch b {
	case ButtonPrimary:
		return 1 << 0
	case ButtonMiddle:
		return 1 << 1
	case ButtonSecondary:
		return 1 << 2
	case ButtonStylusPrimary:
		return 1 << 3
	case ButtonStylusSecondary:
		return 1 << 4
	}
	return 0
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	for _, btn := range []Button{ButtonPrimary, ButtonMiddle, ButtonSecondary, ButtonStylusPrimary, ButtonStylusSecondary} {
		if b.Contain(btn.Mask()) {
			strs = append(strs, btn.String())
		}
	}
	return strings.Join(strs, "|")
}

func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "Primary"
	case ButtonMiddle:
		return "Middle"
	case ButtonSecondary:
		return "Secondary"
	case ButtonStylusPrimary:
		return "StylusPrimary"
	case ButtonStylusSecondary:
		return "StylusSecondary"
	default:
		return "None"
	}
}

func (t Kind) String() string {
	var buf strings.Builder
	for tt := Kind(1); tt > 0; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Motion:
		return "Motion"
	case Enter:
		return "Enter"
	case Leave:
		return "Leave"
	case Scroll:
		return "Scroll"
	case TouchBegin:
		return "TouchBegin"
	case TouchUpdate:
		return "TouchUpdate"
	case TouchEnd:
		return "TouchEnd"
	case TouchCancel:
		return "TouchCancel"
	default:
		panic("unknown Kind")
	}
}

// IsTouch reports whether t is a touch sequence kind.
func (t Kind) IsTouch() bool {
	return t&(TouchBegin|TouchUpdate|TouchEnd|TouchCancel) != 0
}

func (d Device) String() string {
	switch d {
	case DevicePointer:
		return "Pointer"
	case DeviceTouchscreen:
		return "Touchscreen"
	case DeviceKeyboard:
		return "Keyboard"
	default:
		panic("unknown device")
	}
}

func (k ToolKind) String() string {
	switch k {
	case ToolMouse:
		return "Mouse"
	case ToolPen:
		return "Pen"
	case ToolEraser:
		return "Eraser"
	default:
		panic("unknown tool")
	}
}

func (Event) ImplementsEvent() {}
