// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"math"
	"testing"
	"time"

	"github.com/GNOME/gtk-sub015/app/config"
	"github.com/GNOME/gtk-sub015/io/event"
	"github.com/GNOME/gtk-sub015/io/key"
	"github.com/GNOME/gtk-sub015/io/pad"
	"github.com/GNOME/gtk-sub015/io/pointer"
)

func TestTouchSequences(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	p0, p1, p2 := finger(0, 10, 10), finger(1, 20, 20), finger(2, 30, 30)
	for _, ev := range []*MotionEvent{
		touchEvent(actionDown, 0, p0),
		touchEvent(actionPointerDown, 1, p0, p1),
		touchEvent(actionPointerDown, 2, p0, p1, p2),
		touchEvent(actionMove, 0, p0, p1, p2),
		touchEvent(actionPointerUp, 1, p0, p1, p2),
		touchEvent(actionPointerUp, 0, p0, p2),
		touchEvent(actionUp, 0, p2),
	} {
		d.NotifyMotionEvent(top.ID(), ev)
	}
	drain(d)
	counts := make(map[pointer.Kind]int)
	// Contacts do not move, so each sequence maps to one position.
	positions := make(map[event.Sequence]float64)
	for _, e := range of[pointer.Event](r, top.Surface) {
		counts[e.Kind]++
		if e.Device != pointer.DeviceTouchscreen {
			t.Errorf("touch event from device %v", e.Device)
		}
		if x, ok := positions[e.Sequence]; ok && x != e.X {
			t.Errorf("sequence %#x reported at x %v and %v", e.Sequence, x, e.X)
		}
		positions[e.Sequence] = e.X
	}
	want := map[pointer.Kind]int{
		pointer.TouchBegin:  3,
		pointer.TouchUpdate: 9,
		pointer.TouchEnd:    3,
	}
	for k, n := range want {
		if counts[k] != n {
			t.Errorf("%d %v events, want %d", counts[k], k, n)
		}
	}
	if len(positions) != 3 {
		t.Errorf("%d sequences, want 3", len(positions))
	}
	if n := len(d.Seat().touch.sequences); n != 0 {
		t.Errorf("%d sequences left active", n)
	}
	// Coordinates are logical.
	if _, ok := positions[event.BaseSequence(1000, 3).Contact(2)]; !ok {
		t.Error("sequence of contact 2 not derived from its down time and stream")
	}
	for _, x := range positions {
		if x != 5 && x != 10 && x != 15 {
			t.Errorf("touch at x %v, want device pixels halved", x)
		}
	}
}

func TestTouchSequenceStreams(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	a := touchEvent(actionDown, 0, finger(0, 1, 1))
	b := touchEvent(actionDown, 0, finger(0, 1, 1))
	b.Stream = 4
	c := touchEvent(actionDown, 0, finger(0, 1, 1))
	c.DownTime = 2000
	for _, ev := range []*MotionEvent{a, b, c} {
		d.NotifyMotionEvent(top.ID(), ev)
	}
	drain(d)
	seen := make(map[event.Sequence]bool)
	for _, e := range of[pointer.Event](r, top.Surface) {
		seen[e.Sequence] = true
	}
	if len(seen) != 3 {
		t.Errorf("%d distinct sequences, want 3", len(seen))
	}
}

func TestTouchCancel(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	d.NotifyMotionEvent(top.ID(), touchEvent(actionDown, 0, finger(0, 1, 1)))
	d.NotifyMotionEvent(top.ID(), touchEvent(actionCancel, 0, finger(0, 1, 1)))
	drain(d)
	kinds := pointerKinds(r, top.Surface)
	if len(kinds) != 2 || kinds[1] != pointer.TouchCancel {
		t.Errorf("events %v, want a begin and a cancel", kinds)
	}
	if n := len(d.Seat().touch.sequences); n != 0 {
		t.Errorf("%d sequences left active", n)
	}
}

func TestMouseButtonDiff(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	for _, state := range []int32{0, 1, 1, 3, 2, 0, 1} {
		d.NotifyMotionEvent(top.ID(), mouseEvent(actionMove, state, 4, 4))
	}
	drain(d)
	type transition struct {
		kind   pointer.Kind
		button pointer.Button
	}
	var got []transition
	for _, e := range of[pointer.Event](r, top.Surface) {
		if e.Kind == pointer.Press || e.Kind == pointer.Release {
			got = append(got, transition{e.Kind, e.Button})
		}
	}
	want := []transition{
		{pointer.Press, pointer.ButtonPrimary},
		{pointer.Press, pointer.ButtonSecondary},
		{pointer.Release, pointer.ButtonPrimary},
		{pointer.Release, pointer.ButtonSecondary},
		{pointer.Press, pointer.ButtonPrimary},
	}
	if len(got) != len(want) {
		t.Fatalf("transitions %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d: %v, want %v", i, got[i], want[i])
		}
	}
	if b := d.Seat().Buttons(); b != pointer.ButtonPrimary.Mask() {
		t.Errorf("held buttons %v, want primary", b)
	}
}

func TestMouseMotion(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	ev := mouseEvent(actionHoverMove, 0, 30, 50)
	ev.MetaState = key.MetaCtrlOn
	ev.EventTime = 1500
	d.NotifyMotionEvent(top.ID(), ev)
	drain(d)
	evs := of[pointer.Event](r, top.Surface)
	if len(evs) != 2 {
		t.Fatalf("%d events, want an enter and a motion", len(evs))
	}
	e := evs[1]
	if e.Kind != pointer.Motion || e.X != 15 || e.Y != 25 {
		t.Errorf("motion %v at (%v, %v), want (15, 25)", e.Kind, e.X, e.Y)
	}
	if e.Tool == nil || e.Tool.Kind != pointer.ToolMouse {
		t.Errorf("tool %v, want the mouse", e.Tool)
	}
	if e.Modifiers != key.ModCtrl {
		t.Errorf("modifiers %v, want ctrl", e.Modifiers)
	}
	if e.Time != 1500*time.Millisecond {
		t.Errorf("time %v, want 1.5s", e.Time)
	}
	d.NotifyMotionEvent(top.ID(), mouseEvent(actionHoverExit, 0, 30, 50))
	drain(d)
	if kinds := pointerKinds(r, top.Surface); kinds[len(kinds)-1] != pointer.Leave {
		t.Errorf("events %v, want a final leave", kinds)
	}
}

func TestScroll(t *testing.T) {
	cfg := config.Default()
	cfg.ScrollScale = 2
	d, r := newTestDisplay(t, WithConfig(cfg))
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	ev := mouseEvent(actionScroll, 0, 0, 0)
	ev.Pointers[0].Axes = map[int32]float32{axisHScroll: 1, axisVScroll: 1.5}
	d.NotifyMotionEvent(top.ID(), ev)
	drain(d)
	evs := of[pointer.Event](r, top.Surface)
	if len(evs) != 1 || evs[0].Kind != pointer.Scroll {
		t.Fatalf("events %v, want one scroll", evs)
	}
	if e := evs[0]; e.DX != 2 || e.DY != -3 {
		t.Errorf("scroll delta (%v, %v), want (2, -3)", e.DX, e.DY)
	}
}

func TestStylus(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	dev := &InputDevice{Ranges: map[int32]AxisRange{axisPressure: {0, 2}}}
	sample := PointerSample{
		ToolType: toolTypeStylus,
		X:        10,
		Y:        10,
		Axes:     map[int32]float32{axisPressure: 1, axisOrientation: 0, axisTilt: 0},
	}
	d.NotifyMotionEvent(top.ID(), &MotionEvent{Action: actionDown, Pointers: []PointerSample{sample}, Device: dev})
	d.NotifyMotionEvent(top.ID(), &MotionEvent{Action: actionUp, Pointers: []PointerSample{sample}, Device: dev})
	drain(d)
	var presses []pointer.Event
	for _, e := range of[pointer.Event](r, top.Surface) {
		if e.Kind == pointer.Press || e.Kind == pointer.Release {
			presses = append(presses, e)
		}
	}
	if len(presses) != 2 {
		t.Fatalf("%d button events, want 2", len(presses))
	}
	e := presses[0]
	if e.Button != pointer.ButtonPrimary || e.Tool.Kind != pointer.ToolPen {
		t.Errorf("press of %v with %v, want the primary button of a pen", e.Button, e.Tool.Kind)
	}
	if e.Axes.Pressure != 0.5 || e.Axes.Valid&pointer.AxisPressure == 0 {
		t.Errorf("pressure %v valid %v, want 0.5", e.Axes.Pressure, e.Axes.Valid)
	}
	if e.Axes.Valid&pointer.AxisXTilt == 0 || e.Axes.XTilt != 0 || e.Axes.YTilt != 0 {
		t.Errorf("tilt (%v, %v) valid %v, want (0, 0)", e.Axes.XTilt, e.Axes.YTilt, e.Axes.Valid)
	}
	if e.Axes.Valid&pointer.AxisDistance != 0 {
		t.Error("distance reported without a declared range")
	}
	if d.Seat().Focus() != top.Surface {
		t.Error("stylus press did not focus the surface")
	}
}

func TestEraser(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	sample := PointerSample{ToolType: toolTypeEraser, X: 2, Y: 2}
	d.NotifyMotionEvent(top.ID(), &MotionEvent{Action: actionHoverEnter, Pointers: []PointerSample{sample}})
	drain(d)
	evs := of[pointer.Event](r, top.Surface)
	if len(evs) != 1 || evs[0].Kind != pointer.Enter || evs[0].Tool.Kind != pointer.ToolEraser {
		t.Errorf("events %v, want an eraser enter", evs)
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name  string
		event *KeyEvent
		want  []key.Event
	}{
		{
			name:  "press",
			event: keyEvent(keyActionDown, 29, 0),
			want:  []key.Event{{State: key.Press, Keycode: 29, Keyval: 'a', Consumed: key.ModShift | key.ModCapsLock}},
		},
		{
			name:  "shifted",
			event: keyEvent(keyActionDown, 29, key.MetaShiftOn),
			want: []key.Event{{
				State:     key.Press,
				Keycode:   29,
				Keyval:    'A',
				Modifiers: key.ModShift,
				Consumed:  key.ModShift | key.ModCapsLock,
				Level:     1,
			}},
		},
		{
			name:  "release",
			event: keyEvent(keyActionUp, 66, 0),
			want:  []key.Event{{State: key.Release, Keycode: 66, Keyval: key.KeyReturn}},
		},
		{
			name:  "unknown",
			event: keyEvent(keyActionDown, 1000, 0),
		},
		{
			name:  "multiple",
			event: keyEvent(keyActionMultiple, 29, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, r := newTestDisplay(t)
			top, _, _ := mappedToplevel(t, d)
			r.reset()
			d.NotifyKeyEvent(top.ID(), tt.event)
			drain(d)
			got := of[key.Event](r, top.Surface)
			if len(got) != len(tt.want) {
				t.Fatalf("events %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d: %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeyMultipleIgnored(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	d.NotifyKeyEvent(top.ID(), keyEvent(keyActionMultiple, 29, 0))
	drain(d)
	if n := len(r.events); n != 0 {
		t.Errorf("%d events for a repeated key action, want 0", n)
	}
}

func TestPadButtons(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	r.reset()
	d.NotifyKeyEvent(top.ID(), keyEvent(keyActionDown, pad.KeycodeButtonA, 0))
	d.NotifyKeyEvent(top.ID(), keyEvent(keyActionUp, pad.KeycodeButton1, 0))
	drain(d)
	got := of[pad.ButtonEvent](r, top.Surface)
	want := []pad.ButtonEvent{{Button: 0, Press: true}, {Button: 15, Press: false}}
	if len(got) != len(want) {
		t.Fatalf("events %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: %+v, want %+v", i, got[i], want[i])
		}
	}
	if n := len(of[key.Event](r, top.Surface)); n != 0 {
		t.Errorf("%d key events for pad buttons", n)
	}
}

func TestRing(t *testing.T) {
	tests := []struct {
		name  string
		value float32
		dev   *InputDevice
		want  []float64
	}{
		{name: "released", value: 0, dev: &InputDevice{Ranges: map[int32]AxisRange{axisWheel: {-1, 1}}}},
		{name: "ranged", value: 0.5, dev: &InputDevice{Ranges: map[int32]AxisRange{axisWheel: {-1, 1}}}, want: []float64{270}},
		{name: "clamped", value: 4, dev: &InputDevice{Ranges: map[int32]AxisRange{axisWheel: {-1, 1}}}, want: []float64{360}},
		{name: "raw", value: 0.25, want: []float64{0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, r := newTestDisplay(t)
			top, _, _ := mappedToplevel(t, d)
			r.reset()
			d.NotifyMotionEvent(top.ID(), &MotionEvent{
				Action:   actionMove,
				Source:   sourceJoystick,
				Pointers: []PointerSample{{Axes: map[int32]float32{axisWheel: tt.value}}},
				Device:   tt.dev,
			})
			drain(d)
			got := of[pad.RingEvent](r, top.Surface)
			if len(got) != len(tt.want) {
				t.Fatalf("events %v, want values %v", got, tt.want)
			}
			for i, e := range got {
				if e.Ring != 0 || math.Abs(e.Value-tt.want[i]) > 1e-9 {
					t.Errorf("event %d: ring %d value %v, want ring 0 value %v", i, e.Ring, e.Value, tt.want[i])
				}
			}
			if n := len(of[pointer.Event](r, top.Surface)); n != 0 {
				t.Errorf("%d pointer events from a joystick", n)
			}
		})
	}
}
