// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"testing"

	"github.com/GNOME/gtk-sub015/io/key"
	"github.com/GNOME/gtk-sub015/io/pointer"
)

func mouseEvent(action, buttons int32, x, y float32) *MotionEvent {
	return &MotionEvent{
		Action:      action,
		ButtonState: buttons,
		Source:      sourceMouse,
		Pointers:    []PointerSample{{ToolType: toolTypeMouse, X: x, Y: y}},
	}
}

func touchEvent(action, index int32, pointers ...PointerSample) *MotionEvent {
	return &MotionEvent{
		Action:      action,
		ActionIndex: index,
		DownTime:    1000,
		Stream:      3,
		Pointers:    pointers,
	}
}

func finger(id int32, x, y float32) PointerSample {
	return PointerSample{ID: id, ToolType: toolTypeFinger, X: x, Y: y}
}

func keyEvent(action, code, meta int32) *KeyEvent {
	return &KeyEvent{Action: action, KeyCode: code, MetaState: meta}
}

// pointerKinds returns the kinds of the pointer events delivered to s.
func pointerKinds(r *recorder, s *Surface) []pointer.Kind {
	var kinds []pointer.Kind
	for _, e := range of[pointer.Event](r, s) {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestGrabNotViewable(t *testing.T) {
	d, _ := newTestDisplay(t)
	top := d.NewToplevel()
	act := new(fakeActivity)
	top.Present()
	d.BindToplevel(top.ID(), act)
	d.BindSurface(top.ID(), new(fakePeer))
	drain(d)
	if got := d.Seat().Grab(top.Surface, CapAll, false, ""); got != GrabNotViewable {
		t.Errorf("grab of an unmapped surface: %v, want %v", got, GrabNotViewable)
	}
	if act.container.grabs != 0 {
		t.Errorf("%d platform grabs attempted", act.container.grabs)
	}
	if got := d.Seat().Grab(nil, CapAll, false, ""); got != GrabNotViewable {
		t.Errorf("grab of nil: %v, want %v", got, GrabNotViewable)
	}
}

func TestGrabAtomic(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Display, top *Toplevel)
	}{
		{
			name: "pointer held by another surface",
			setup: func(d *Display, top *Toplevel) {
				d.NotifyMotionEvent(top.ID(), mouseEvent(actionDown, buttonPrimary, 1, 1))
			},
		},
		{
			name: "touch on another surface",
			setup: func(d *Display, top *Toplevel) {
				d.NotifyMotionEvent(top.ID(), touchEvent(actionDown, 0, finger(0, 1, 1)))
			},
		},
		{
			name: "key held on another surface",
			setup: func(d *Display, top *Toplevel) {
				d.NotifyKeyEvent(top.ID(), keyEvent(keyActionDown, 29, 0))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDisplay(t)
			top, act, _ := mappedToplevel(t, d)
			p, _ := mappedPopup(t, d, top.Surface, true)
			tt.setup(d, top)
			drain(d)
			st := d.Seat()
			if got := st.Grab(p.Surface, CapAll, false, ""); got != GrabAlreadyGrabbed {
				t.Errorf("grab: %v, want %v", got, GrabAlreadyGrabbed)
			}
			for _, c := range []Capabilities{CapPointer, CapTouch, CapKeyboard} {
				if s := st.Grabbed(c); s != nil {
					t.Errorf("device %d still grabbed by %d", c, s.ID())
				}
			}
			if act.container.grabbed != nil {
				t.Error("platform grab left in place")
			}
		})
	}
}

func TestGrabAndUngrab(t *testing.T) {
	d, _ := newTestDisplay(t)
	top, act, _ := mappedToplevel(t, d)
	p, ppeer := mappedPopup(t, d, top.Surface, true)
	st := d.Seat()
	if got := st.Grab(p.Surface, CapAll, true, ""); got != GrabSuccess {
		t.Fatalf("grab: %v", got)
	}
	if act.container.grabbed != ppeer {
		t.Error("container does not route input to the grabbing view")
	}
	for _, c := range []Capabilities{CapPointer, CapTouch, CapKeyboard} {
		if s := st.Grabbed(c); s != p.Surface {
			t.Errorf("device %d grabbed by %v", c, s)
		}
	}
	st.Ungrab(CapTouch)
	if st.Grabbed(CapTouch) != nil || st.Grabbed(CapPointer) == nil {
		t.Error("partial ungrab released the wrong devices")
	}
	p.Destroy()
	if act.container.grabbed != nil {
		t.Error("platform grab survived the grabbing surface")
	}
	if st.Grabbed(CapPointer) != nil || st.Grabbed(CapKeyboard) != nil {
		t.Error("grab survived the grabbing surface")
	}
}

func TestGrabWithoutPeer(t *testing.T) {
	d, _ := newTestDisplay(t)
	top := d.NewToplevel()
	top.Present()
	act := new(fakeActivity)
	d.BindToplevel(top.ID(), act)
	d.NotifyLayoutPosition(top.ID(), 0, 0)
	drain(d)
	top.applyVisibility(true)
	st := d.Seat()
	if got := st.Grab(top.Surface, CapPointer, false, ""); got != GrabFailed {
		t.Errorf("pointer grab without a view: %v, want %v", got, GrabFailed)
	}
	if got := st.Grab(top.Surface, CapKeyboard, false, ""); got != GrabSuccess {
		t.Errorf("keyboard grab without a view: %v, want %v", got, GrabSuccess)
	}
}

func TestGrabPlatformFailure(t *testing.T) {
	d, _ := newTestDisplay(t)
	top, act, _ := mappedToplevel(t, d)
	act.container.grabErr = errFake
	if got := d.Seat().Grab(top.Surface, CapAll, false, ""); got != GrabFailed {
		t.Errorf("grab: %v, want %v", got, GrabFailed)
	}
	if s := d.Seat().Grabbed(CapPointer); s != nil {
		t.Error("failed grab recorded")
	}
}

func TestUngrabRestoresCursor(t *testing.T) {
	d, _ := newTestDisplay(t)
	top, _, peer := mappedToplevel(t, d)
	top.SetCursor("text")
	st := d.Seat()
	if got := st.Grab(top.Surface, CapPointer, false, "grabbing"); got != GrabSuccess {
		t.Fatalf("grab: %v", got)
	}
	st.Ungrab(CapPointer)
	want := []string{"text", "grabbing", "text"}
	if len(peer.cursors) != len(want) {
		t.Fatalf("cursors %v, want %v", peer.cursors, want)
	}
	for i := range want {
		if peer.cursors[i] != want[i] {
			t.Errorf("cursor %d: %q, want %q", i, peer.cursors[i], want[i])
		}
	}
}

func TestCrossingWhileHeld(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	p, _ := mappedPopup(t, d, top.Surface, false)
	r.reset()
	d.NotifyMotionEvent(top.ID(), mouseEvent(actionDown, buttonPrimary, 2, 2))
	d.NotifyMotionEvent(p.ID(), mouseEvent(actionMove, buttonPrimary, 4, 4))
	d.NotifyMotionEvent(p.ID(), mouseEvent(actionUp, 0, 4, 4))
	drain(d)
	if got, want := pointerKinds(r, top.Surface), []pointer.Kind{pointer.Enter, pointer.Press}; !equalKinds(got, want) {
		t.Errorf("toplevel events %v, want %v", got, want)
	}
	if got, want := pointerKinds(r, p.Surface), []pointer.Kind{pointer.Motion, pointer.Release}; !equalKinds(got, want) {
		t.Errorf("popup events %v, want %v", got, want)
	}
	if s := d.Seat().PointerSurface(); s != top.Surface {
		t.Error("pointer surface changed while a button was held")
	}
	r.reset()
	d.NotifyMotionEvent(p.ID(), mouseEvent(actionHoverMove, 0, 5, 5))
	drain(d)
	if got, want := pointerKinds(r, top.Surface), []pointer.Kind{pointer.Leave}; !equalKinds(got, want) {
		t.Errorf("toplevel events %v, want %v", got, want)
	}
	if got, want := pointerKinds(r, p.Surface), []pointer.Kind{pointer.Enter, pointer.Motion}; !equalKinds(got, want) {
		t.Errorf("popup events %v, want %v", got, want)
	}
}

func equalKinds(a, b []pointer.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPopupFocus(t *testing.T) {
	d, r := newTestDisplay(t)
	top, _, _ := mappedToplevel(t, d)
	d.NotifyStateChange(top.ID(), true, false)
	drain(d)
	st := d.Seat()
	if st.Focus() != top.Surface {
		t.Fatal("focused toplevel does not hold the keyboard focus")
	}
	plain, _ := mappedPopup(t, d, top.Surface, false)
	d.NotifyMotionEvent(plain.ID(), touchEvent(actionDown, 0, finger(0, 1, 1)))
	drain(d)
	if st.Focus() != top.Surface {
		t.Error("popup without autohide took the focus")
	}
	auto, _ := mappedPopup(t, d, top.Surface, true)
	d.NotifyMotionEvent(auto.ID(), touchEvent(actionDown, 0, finger(1, 1, 1)))
	drain(d)
	if st.Focus() != auto.Surface {
		t.Fatal("autohide popup did not take the focus")
	}
	if evs := of[key.FocusEvent](r, top.Surface); len(evs) != 2 || evs[1].Focus {
		t.Errorf("toplevel focus events %v, want gain then loss", evs)
	}
	auto.Destroy()
	if st.Focus() != top.Surface {
		t.Error("focus not returned to the toplevel")
	}
	d.NotifyStateChange(top.ID(), false, false)
	drain(d)
	if st.Focus() != nil {
		t.Error("unfocused toplevel kept the keyboard focus")
	}
}
