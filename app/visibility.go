// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/rendezvous"
)

// NotifyVisibility reports that the view of surface id became visible or
// hidden. It is called on the platform UI thread and returns once the
// surface's native window reflects the new state, with the main loop
// parked while the window is replaced. The toolkit map or unmap follows on
// the main loop.
func (d *Display) NotifyVisibility(id handle.ID, visible bool) {
	s, ok := d.Lookup(id)
	if !ok {
		slog.Error("app: callback for unknown surface", "callback", "notifyVisibility", "id", uint64(id))
		return
	}
	if d.loop.InLoop() {
		if !s.destroyed {
			s.swapWindow(visible)
			s.applyVisibility(visible)
		}
		return
	}
	b := rendezvous.New(2)
	if wd := d.cfg.BarrierWatchdog.Duration; wd > 0 {
		b.SetWatchdog(wd, func(round uint64) {
			slog.Warn("app: visibility handshake stalled", "id", uint64(id), "visible", visible, "phase", round+1)
		})
	}
	d.loop.Invoke(d.cfg.VisibilityPriority.Priority, func() {
		// Phase 1 parks the loop; phase 2 releases it once the window is
		// swapped.
		b.Wait()
		b.Wait()
		if !s.destroyed {
			s.applyVisibility(visible)
		}
	})
	b.Wait()
	s.swapWindow(visible)
	b.Wait()
}

// swapWindow replaces the native window from the bound view. The caller
// has the main loop parked or is the main loop.
func (s *Surface) swapWindow(visible bool) {
	s.winMu.Lock()
	defer s.winMu.Unlock()
	if s.released {
		return
	}
	if s.win != nil {
		if s.gl != nil {
			s.gl.unbindLocked()
		}
		s.win.Release()
		s.win = nil
	}
	if !visible || s.peer == nil {
		return
	}
	w, err := s.peer.NativeWindow()
	if err != nil {
		slog.Error("app: failed to acquire native window", "id", uint64(s.id), "err", err)
		return
	}
	if w == nil {
		return
	}
	s.win = w
	if s.gl != nil {
		s.gl.bindLocked()
	}
}

func (s *Surface) applyVisibility(visible bool) {
	if visible {
		if !s.positionKnown() {
			s.delayedMap = true
			return
		}
		s.setMapped(true)
		return
	}
	s.delayedMap = false
	if s.mapped {
		// The handler may hide the surface while processing the unmap;
		// platform visibility must not change the toolkit's intent.
		v := s.visible
		s.setMapped(false)
		s.visible = v
	}
}
