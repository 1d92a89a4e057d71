// SPDX-License-Identifier: Unlicense OR MIT

package app

// Android input constants, from android/input.h and the android.view
// classes.
const (
	actionDown          = 0
	actionUp            = 1
	actionMove          = 2
	actionCancel        = 3
	actionPointerDown   = 5
	actionPointerUp     = 6
	actionHoverMove     = 7
	actionScroll        = 8
	actionHoverEnter    = 9
	actionHoverExit     = 10
	actionButtonPress   = 11
	actionButtonRelease = 12
)

const (
	toolTypeFinger = 1
	toolTypeStylus = 2
	toolTypeMouse  = 3
	toolTypeEraser = 4
)

const (
	buttonPrimary         = 1 << 0
	buttonSecondary       = 1 << 1
	buttonTertiary        = 1 << 2
	buttonStylusPrimary   = 1 << 5
	buttonStylusSecondary = 1 << 6
)

const (
	axisX           = 0
	axisY           = 1
	axisPressure    = 2
	axisOrientation = 8
	axisVScroll     = 9
	axisHScroll     = 10
	axisWheel       = 21
	axisDistance    = 24
	axisTilt        = 25
)

const (
	sourceClassJoystick = 0x10
	sourceMouse         = 0x2002
	sourceJoystick      = 0x1000010
)

const (
	keyActionDown     = 0
	keyActionUp       = 1
	keyActionMultiple = 2
)

// dragActionEnded is DragEvent.ACTION_DRAG_ENDED.
const dragActionEnded = 4

// sampledAxes are the axes read from every pointer of a MotionEvent.
var sampledAxes = []int32{
	axisPressure,
	axisOrientation,
	axisVScroll,
	axisHScroll,
	axisWheel,
	axisDistance,
	axisTilt,
}

// rangedAxes are the axes whose declared ranges are read from an
// InputDevice.
var rangedAxes = []int32{
	axisPressure,
	axisDistance,
	axisWheel,
}

// ringAxes are the axes probed on joystick sources, in ring order.
var ringAxes = []int32{
	axisWheel,
}
