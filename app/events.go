// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"
	"time"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/io/event"
	"github.com/GNOME/gtk-sub015/io/key"
	"github.com/GNOME/gtk-sub015/io/pad"
	"github.com/GNOME/gtk-sub015/io/pointer"
)

type buttonMapping struct {
	bit    int32
	button pointer.Button
}

var mouseButtons = []buttonMapping{
	{buttonPrimary, pointer.ButtonPrimary},
	{buttonSecondary, pointer.ButtonSecondary},
	{buttonTertiary, pointer.ButtonMiddle},
}

var stylusButtons = []buttonMapping{
	{buttonStylusPrimary, pointer.ButtonStylusPrimary},
	{buttonStylusSecondary, pointer.ButtonStylusSecondary},
}

// NotifyMotionEvent translates a motion event of surface id.
func (d *Display) NotifyMotionEvent(id handle.ID, ev *MotionEvent) {
	d.withSurface("notifyMotionEvent", id, func(s *Surface) {
		d.seat.handleMotion(s, ev)
	})
}

// NotifyKeyEvent translates a key event of surface id.
func (d *Display) NotifyKeyEvent(id handle.ID, ev *KeyEvent) {
	d.withSurface("notifyKeyEvent", id, func(s *Surface) {
		d.seat.handleKey(s, ev)
	})
}

func eventTime(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (st *Seat) handleMotion(s *Surface, ev *MotionEvent) {
	if ev.Source&sourceClassJoystick == sourceClassJoystick {
		st.handleRing(s, ev)
		return
	}
	if len(ev.Pointers) == 0 {
		return
	}
	idx := int(ev.ActionIndex)
	if idx < 0 || idx >= len(ev.Pointers) {
		idx = 0
	}
	switch ev.Pointers[idx].ToolType {
	case toolTypeMouse:
		st.handleMouse(s, ev)
	case toolTypeStylus:
		st.handleStylus(s, ev, toolPen)
	case toolTypeEraser:
		st.handleStylus(s, ev, toolEraser)
	default:
		st.handleTouch(s, ev, idx)
	}
}

// handleRing emits ring events for the rotary axes of a joystick. A raw
// zero cannot be told apart from a released ring and emits nothing.
func (st *Seat) handleRing(s *Surface, ev *MotionEvent) {
	if len(ev.Pointers) == 0 {
		return
	}
	p := ev.Pointers[0]
	for i, a := range ringAxes {
		v := p.Axis(a)
		if v == 0 {
			continue
		}
		value := float64(v)
		if r, ok := ev.Device.Range(a); ok {
			value = float64(normalize(v, r.Min, r.Max, 0, 360))
		}
		st.d.emit(s, pad.RingEvent{Ring: i, Value: value, Time: eventTime(ev.EventTime)})
	}
}

func (st *Seat) pointerEvent(s *Surface, ev *MotionEvent, p PointerSample) pointer.Event {
	return pointer.Event{
		Device:    pointer.DevicePointer,
		Time:      eventTime(ev.EventTime),
		X:         float64(p.X) / s.scale,
		Y:         float64(p.Y) / s.scale,
		Buttons:   st.pointer.buttons,
		Modifiers: key.ModifiersFromMeta(ev.MetaState),
	}
}

// handleTouch emits touch events. The pointer at index idx begins or ends
// its sequence on down and up actions; every other pointer of a batch is
// an update.
func (st *Seat) handleTouch(s *Surface, ev *MotionEvent, idx int) {
	base := event.BaseSequence(ev.DownTime, ev.Stream)
	touch := func(kind pointer.Kind, p PointerSample) event.Sequence {
		e := st.pointerEvent(s, ev, p)
		e.Kind = kind
		e.Device = pointer.DeviceTouchscreen
		e.Sequence = base.Contact(p.ID)
		st.d.emit(s, e)
		return e.Sequence
	}
	switch ev.Action {
	case actionDown, actionPointerDown:
		for i, p := range ev.Pointers {
			if i != idx {
				if _, ok := st.touch.sequences[base.Contact(p.ID)]; ok {
					touch(pointer.TouchUpdate, p)
				}
				continue
			}
			st.touch.sequences[touch(pointer.TouchBegin, p)] = s
		}
		st.setFocus(s)
	case actionUp, actionPointerUp:
		for i, p := range ev.Pointers {
			if i != idx {
				if _, ok := st.touch.sequences[base.Contact(p.ID)]; ok {
					touch(pointer.TouchUpdate, p)
				}
				continue
			}
			delete(st.touch.sequences, touch(pointer.TouchEnd, p))
		}
	case actionMove:
		for _, p := range ev.Pointers {
			if _, ok := st.touch.sequences[base.Contact(p.ID)]; ok {
				touch(pointer.TouchUpdate, p)
			}
		}
	case actionCancel:
		for _, p := range ev.Pointers {
			delete(st.touch.sequences, touch(pointer.TouchCancel, p))
		}
	}
}

func (st *Seat) handleMouse(s *Surface, ev *MotionEvent) {
	p := ev.Pointers[0]
	e := st.pointerEvent(s, ev, p)
	e.Tool = toolMouse
	switch ev.Action {
	case actionHoverExit:
		st.leave(s, e)
		return
	case actionScroll:
		scale := st.d.cfg.ScrollScale
		e.Kind = pointer.Scroll
		e.DX = float64(p.Axis(axisHScroll)) * scale
		e.DY = -float64(p.Axis(axisVScroll)) * scale
		e.IsStop = false
		st.d.emit(s, e)
		return
	}
	st.cross(s, e)
	if ev.Action == actionMove || ev.Action == actionHoverMove {
		e.Kind = pointer.Motion
		st.d.emit(s, e)
	}
	st.diffButtons(s, ev.ButtonState, mouseButtons, e)
}

// handleStylus treats the tip as the primary button. The barrel buttons
// are only reported through the button state of moves.
func (st *Seat) handleStylus(s *Surface, ev *MotionEvent, tool *pointer.Tool) {
	p := ev.Pointers[0]
	e := st.pointerEvent(s, ev, p)
	e.Tool = tool
	e.Axes = toolAxes(ev.Device, p)
	switch ev.Action {
	case actionDown:
		st.cross(s, e)
		if st.setButton(s, pointer.ButtonPrimary, true, e) {
			st.setFocus(s)
		}
	case actionUp, actionCancel:
		st.setButton(s, pointer.ButtonPrimary, false, e)
	case actionMove, actionHoverMove:
		st.cross(s, e)
		e.Kind = pointer.Motion
		st.d.emit(s, e)
		st.diffButtons(s, ev.ButtonState, stylusButtons, e)
	case actionHoverEnter:
		st.cross(s, e)
	case actionHoverExit:
		st.leave(s, e)
	}
}

// diffButtons emits a press or release for every mapped button whose state
// differs from the recorded one.
func (st *Seat) diffButtons(s *Surface, state int32, mappings []buttonMapping, e pointer.Event) {
	pressed := false
	for _, m := range mappings {
		held := state&m.bit != 0
		if st.setButton(s, m.button, held, e) && held {
			pressed = true
		}
	}
	if pressed {
		st.setFocus(s)
	}
}

// handleKey emits key and pad button events. Keys the keymap does not know
// are dropped.
func (st *Seat) handleKey(s *Surface, ev *KeyEvent) {
	var pressed bool
	switch ev.Action {
	case keyActionDown:
		pressed = true
	case keyActionUp:
	default:
		return
	}
	t := eventTime(ev.EventTime)
	st.setFocus(s)
	if btn, ok := pad.ButtonForKeycode(ev.KeyCode); ok {
		st.d.emit(s, pad.ButtonEvent{Button: btn, Press: pressed, Time: t})
		return
	}
	mods := key.ModifiersFromMeta(ev.MetaState)
	val, consumed, level, ok := st.d.keymap.Translate(ev.KeyCode, mods)
	if !ok {
		slog.Debug("app: dropped untranslatable key", "keycode", ev.KeyCode, "scancode", ev.ScanCode)
		return
	}
	e := key.Event{
		State:     key.Release,
		Keycode:   ev.KeyCode,
		Keyval:    val,
		Modifiers: mods,
		Consumed:  consumed,
		Level:     level,
		Time:      t,
	}
	if pressed {
		e.State = key.Press
		st.keyboard.keys[ev.KeyCode] = s
	} else {
		delete(st.keyboard.keys, ev.KeyCode)
	}
	st.d.emit(s, e)
}
