// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"
	"weak"

	"github.com/GNOME/gtk-sub015/io/event"
	"github.com/GNOME/gtk-sub015/io/key"
	"github.com/GNOME/gtk-sub015/io/pointer"
)

// Capabilities is a set of seat devices.
type Capabilities uint8

const (
	CapPointer Capabilities = 1 << iota
	CapTouch
	CapKeyboard

	CapAll = CapPointer | CapTouch | CapKeyboard
)

// GrabStatus is the outcome of Seat.Grab.
type GrabStatus uint8

const (
	GrabSuccess GrabStatus = iota
	// GrabAlreadyGrabbed means a device is implicitly grabbed by another
	// surface.
	GrabAlreadyGrabbed
	GrabNotViewable
	GrabFailed
)

// Tools are shared by every event of their kind.
var (
	toolMouse  = &pointer.Tool{Kind: pointer.ToolMouse}
	toolPen    = &pointer.Tool{Kind: pointer.ToolPen}
	toolEraser = &pointer.Tool{Kind: pointer.ToolEraser}
)

// Seat is the display's single seat with a pointer, a touchscreen and a
// keyboard. It is owned by the main loop.
type Seat struct {
	d *Display

	pointer  pointerDevice
	touch    touchDevice
	keyboard keyboardDevice
}

type grab struct {
	surface     *Surface
	ownerEvents bool
}

type pointerDevice struct {
	grab
	buttons pointer.Buttons
	// implicit is the surface that received the first held button.
	implicit *Surface
	// over is the surface last reported under the pointer.
	over weak.Pointer[Surface]
	// cursor overrides the grab surface's cursor during the grab.
	cursor pointer.Cursor
}

type touchDevice struct {
	grab
	sequences map[event.Sequence]*Surface
}

type keyboardDevice struct {
	grab
	// keys maps held key codes to the surface that received their press.
	keys  map[int32]*Surface
	focus weak.Pointer[Surface]
}

func newSeat(d *Display) *Seat {
	return &Seat{
		d:        d,
		touch:    touchDevice{sequences: make(map[event.Sequence]*Surface)},
		keyboard: keyboardDevice{keys: make(map[int32]*Surface)},
	}
}

// Capabilities returns the devices of the seat.
func (st *Seat) Capabilities() Capabilities { return CapAll }

// Buttons returns the held pointer buttons.
func (st *Seat) Buttons() pointer.Buttons { return st.pointer.buttons }

// Focus returns the surface with keyboard focus.
func (st *Seat) Focus() *Surface { return st.keyboard.focus.Value() }

// PointerSurface returns the surface last reported under the pointer.
func (st *Seat) PointerSurface() *Surface { return st.pointer.over.Value() }

// Grabbed returns the surface explicitly grabbing the device c.
func (st *Seat) Grabbed(c Capabilities) *Surface {
	if g := st.grabOf(c); g != nil {
		return g.surface
	}
	return nil
}

func (st *Seat) grabOf(c Capabilities) *grab {
	switch c {
	case CapPointer:
		return &st.pointer.grab
	case CapTouch:
		return &st.touch.grab
	case CapKeyboard:
		return &st.keyboard.grab
	}
	return nil
}

// Grab routes the input of the devices in caps to s. Devices are grabbed
// in pointer, touch, keyboard order; if one fails, the grabs already
// taken are released.
func (st *Seat) Grab(s *Surface, caps Capabilities, ownerEvents bool, cursor pointer.Cursor) GrabStatus {
	if s == nil || s.destroyed || !s.mapped {
		return GrabNotViewable
	}
	var taken Capabilities
	for _, c := range []Capabilities{CapPointer, CapTouch, CapKeyboard} {
		if caps&c == 0 {
			continue
		}
		if status := st.grabDevice(c, s, ownerEvents, cursor); status != GrabSuccess {
			st.Ungrab(taken)
			return status
		}
		taken |= c
	}
	return GrabSuccess
}

func (st *Seat) grabDevice(c Capabilities, s *Surface, ownerEvents bool, cursor pointer.Cursor) GrabStatus {
	switch c {
	case CapPointer:
		if imp := st.pointer.implicit; imp != nil && imp != s {
			return GrabAlreadyGrabbed
		}
		if s.peer == nil {
			return GrabFailed
		}
		if err := st.setPlatformGrab(s, s.peer); err != nil {
			slog.Warn("app: platform grab failed", "id", uint64(s.id), "err", err)
			return GrabFailed
		}
		st.pointer.cursor = cursor
		if cursor != "" {
			if err := s.peer.SetCursor(string(cursor)); err != nil {
				slog.Warn("app: failed to set grab cursor", "id", uint64(s.id), "err", err)
			}
		}
	case CapTouch:
		for _, t := range st.touch.sequences {
			if t != s {
				return GrabAlreadyGrabbed
			}
		}
	case CapKeyboard:
		for _, t := range st.keyboard.keys {
			if t != s {
				return GrabAlreadyGrabbed
			}
		}
	}
	*st.grabOf(c) = grab{surface: s, ownerEvents: ownerEvents}
	return GrabSuccess
}

// setPlatformGrab informs the container of s's toplevel of the grabbed
// view. A nil p clears it.
func (st *Seat) setPlatformGrab(s *Surface, p Peer) error {
	t := s.toplevelAncestor()
	if t == nil || t.activity == nil {
		if p == nil {
			return nil
		}
		return ErrNotBound
	}
	c, err := t.activity.Container()
	if err != nil {
		return err
	}
	return c.SetGrabbedSurface(p)
}

// Ungrab releases the explicit grabs of the devices in caps. Devices
// without a grab are left alone.
func (st *Seat) Ungrab(caps Capabilities) {
	if caps&CapPointer != 0 {
		if s := st.pointer.surface; s != nil {
			st.pointer.grab = grab{}
			if err := st.setPlatformGrab(s, nil); err != nil {
				slog.Warn("app: failed to clear platform grab", "id", uint64(s.id), "err", err)
			}
			if st.pointer.cursor != "" && s.peer != nil {
				if err := s.peer.SetCursor(s.cursor); err != nil {
					slog.Warn("app: failed to restore cursor", "id", uint64(s.id), "err", err)
				}
			}
			st.pointer.cursor = ""
		}
	}
	if caps&CapTouch != 0 {
		st.touch.grab = grab{}
	}
	if caps&CapKeyboard != 0 {
		st.keyboard.grab = grab{}
	}
}

// cross reports the pointer over s. Crossings are suppressed while a
// button is held.
func (st *Seat) cross(s *Surface, e pointer.Event) {
	if st.pointer.buttons != 0 {
		return
	}
	old := st.pointer.over.Value()
	if old == s {
		return
	}
	if old != nil && !old.destroyed {
		leave := e
		leave.Kind = pointer.Leave
		st.d.emit(old, leave)
	}
	st.pointer.over = weak.Make(s)
	enter := e
	enter.Kind = pointer.Enter
	st.d.emit(s, enter)
}

// leave reports that the pointer left s.
func (st *Seat) leave(s *Surface, e pointer.Event) {
	if st.pointer.buttons != 0 || st.pointer.over.Value() != s {
		return
	}
	st.pointer.over = weak.Pointer[Surface]{}
	e.Kind = pointer.Leave
	st.d.emit(s, e)
}

// setButton records a button transition and emits it. It reports whether
// the button changed.
func (st *Seat) setButton(s *Surface, btn pointer.Button, pressed bool, e pointer.Event) bool {
	mask := btn.Mask()
	if st.pointer.buttons.Contain(mask) == pressed {
		return false
	}
	if pressed {
		st.pointer.buttons |= mask
		e.Kind = pointer.Press
		if st.pointer.implicit == nil {
			st.pointer.implicit = s
		}
	} else {
		st.pointer.buttons &^= mask
		e.Kind = pointer.Release
		if st.pointer.buttons == 0 {
			st.pointer.implicit = nil
		}
	}
	e.Button = btn
	e.Buttons = st.pointer.buttons
	st.d.emit(s, e)
	return true
}

// setFocus moves the keyboard focus to s if s can hold it.
func (st *Seat) setFocus(s *Surface) {
	if s.kind != KindToplevel && (s.pop == nil || !s.pop.autohide) {
		return
	}
	old := st.keyboard.focus.Value()
	if old == s {
		return
	}
	if old != nil && !old.destroyed {
		st.d.emit(old, key.FocusEvent{Focus: false})
	}
	st.keyboard.focus = weak.Make(s)
	st.d.emit(s, key.FocusEvent{Focus: true})
}

// blur removes the keyboard focus from s.
func (st *Seat) blur(s *Surface) {
	if st.keyboard.focus.Value() != s {
		return
	}
	st.keyboard.focus = weak.Pointer[Surface]{}
	st.d.emit(s, key.FocusEvent{Focus: false})
}

// forget drops every reference the seat holds to s.
func (st *Seat) forget(s *Surface) {
	if st.pointer.over.Value() == s {
		st.pointer.over = weak.Pointer[Surface]{}
	}
	if st.pointer.implicit == s {
		st.pointer.implicit = nil
		st.pointer.buttons = 0
	}
	var caps Capabilities
	for _, c := range []Capabilities{CapPointer, CapTouch, CapKeyboard} {
		if st.grabOf(c).surface == s {
			caps |= c
		}
	}
	st.Ungrab(caps)
	for seq, t := range st.touch.sequences {
		if t == s {
			delete(st.touch.sequences, seq)
		}
	}
	for code, t := range st.keyboard.keys {
		if t == s {
			delete(st.keyboard.keys, code)
		}
	}
	if st.keyboard.focus.Value() == s {
		st.keyboard.focus = weak.Pointer[Surface]{}
		if t := s.toplevelAncestor(); t != nil && t.Surface != s && t.focused && !t.destroyed {
			st.setFocus(t.Surface)
		}
	}
}
