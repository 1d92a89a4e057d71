// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"log/slog"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
)

// The methods in this file are the entry points of platform callbacks.
// They may be called from any thread and run their work on the main loop.

// BindSurface binds the view p to surface id. It fails for unknown
// identifiers, leaving p to the caller.
func (d *Display) BindSurface(id handle.ID, p Peer) error {
	s, ok := d.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, uint64(id))
	}
	d.runOnMain(func() {
		if s.destroyed {
			p.Release()
			return
		}
		s.bind(p)
	})
	return nil
}

// BindToplevel binds the activity a to toplevel id.
func (d *Display) BindToplevel(id handle.ID, a Activity) error {
	s, ok := d.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSurface, uint64(id))
	}
	if s.top == nil {
		return fmt.Errorf("app: surface %d is a %v, not a toplevel", uint64(id), s.kind)
	}
	d.runOnMain(func() {
		if s.destroyed {
			a.Release()
			return
		}
		s.top.bindActivity(a)
	})
	return nil
}

// NotifyAttached reports that the view of surface id was attached to a
// window.
func (d *Display) NotifyAttached(id handle.ID) {
	d.withSurface("notifyAttached", id, func(s *Surface) {
		slog.Debug("app: surface attached", "id", uint64(id))
		// Pointer icons only take effect on attached views.
		if s.cursor != "" && s.peer != nil {
			if err := s.peer.SetCursor(s.cursor); err != nil {
				slog.Warn("app: failed to restore cursor", "id", uint64(id), "err", err)
			}
		}
	})
}

// NotifyDetached reports that the view of surface id left its window.
func (d *Display) NotifyDetached(id handle.ID) {
	d.withSurface("notifyDetached", id, func(s *Surface) {
		slog.Debug("app: surface detached", "id", uint64(id))
	})
}

// NotifyLayoutSurface reports the size of the view of surface id in pixels
// and its density scale.
func (d *Display) NotifyLayoutSurface(id handle.ID, width, height int, scale float64) {
	d.withSurface("notifyLayoutSurface", id, func(s *Surface) {
		s.onLayoutSurface(width, height, scale)
	})
}

// NotifyLayoutPosition reports the position of the view of surface id in
// pixels, relative to its toplevel.
func (d *Display) NotifyLayoutPosition(id handle.ID, x, y int) {
	d.withSurface("notifyLayoutPosition", id, func(s *Surface) {
		s.onLayoutPosition(x, y)
	})
}

func (d *Display) withToplevel(callback string, id handle.ID, f func(t *Toplevel)) {
	d.withSurface(callback, id, func(s *Surface) {
		if s.top == nil {
			slog.Error("app: toplevel callback for non-toplevel", "callback", callback, "id", uint64(id))
			return
		}
		f(s.top)
	})
}

// NotifyConfigurationChange reports a platform configuration change, such
// as a new density, for toplevel id.
func (d *Display) NotifyConfigurationChange(id handle.ID) {
	d.withToplevel("notifyConfigurationChange", id, (*Toplevel).onConfigurationChange)
}

// NotifyStateChange reports the window focus and fullscreen state of
// toplevel id.
func (d *Display) NotifyStateChange(id handle.ID, focused, fullscreen bool) {
	d.withToplevel("notifyStateChange", id, func(t *Toplevel) {
		t.onStateChange(focused, fullscreen)
	})
}

// NotifyBackPress reports a press of the back button in toplevel id.
func (d *Display) NotifyBackPress(id handle.ID) {
	d.withToplevel("notifyOnBackPress", id, (*Toplevel).onBackPress)
}

// NotifyDestroy reports that the platform destroyed the activity of
// toplevel id.
func (d *Display) NotifyDestroy(id handle.ID) {
	d.withToplevel("notifyDestroy", id, (*Toplevel).onDestroy)
}

// NotifyActivityResult delivers the result of an activity started by
// toplevel id. The toplevel takes ownership of data.
func (d *Display) NotifyActivityResult(id handle.ID, requestCode, resultCode int32, data *jni.GlobalRef) {
	s, ok := d.Lookup(id)
	if !ok || s.top == nil {
		slog.Error("app: activity result for unknown toplevel", "id", uint64(id))
		releaseGlobal(data)
		return
	}
	d.runOnMain(func() {
		if s.destroyed {
			releaseGlobal(data)
			return
		}
		s.top.onActivityResult(requestCode, resultCode, data)
	})
}
