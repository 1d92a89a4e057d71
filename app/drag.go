// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/io/system"
)

// DragSurface is the content of a drag shadow. It has no platform view;
// its frames are drawn with a RasterContext and shown by the drag session.
type DragSurface struct {
	*Surface

	session DragSession
}

// NewDragSurface creates a drag surface of the given size in pixels.
func (d *Display) NewDragSurface(width, height int) *DragSurface {
	ds := &DragSurface{}
	ds.Surface = newSurface(d, KindDrag)
	ds.Surface.drag = ds
	ds.width, ds.height = width, height
	ds.x, ds.y = 0, 0
	return ds
}

// Active reports whether a drag session shows the surface.
func (ds *DragSurface) Active() bool { return ds.session != nil }

// Resize changes the shadow size.
func (ds *DragSurface) Resize(width, height int) {
	if width == ds.width && height == ds.height {
		return
	}
	ds.width, ds.height = width, height
	ds.d.emit(ds.Surface, system.ConfigureEvent{Width: width, Height: height, Scale: ds.scale})
	ds.Invalidate(image.Rectangle{Max: ds.Size()})
}

// Cancel ends the drag session without a drop.
func (ds *DragSurface) Cancel() error {
	return ds.endSession(true)
}

// endSession detaches the surface from its drag session and releases the
// session, cancelling the platform drag first if cancel is set.
func (ds *DragSurface) endSession(cancel bool) error {
	sess := ds.session
	if sess == nil {
		return nil
	}
	ds.session = nil
	delete(ds.d.drags, ds)
	ds.setMapped(false)
	var err error
	if cancel {
		err = sess.Cancel()
	}
	sess.Release()
	return err
}

// StartDrag starts a platform drag from s with shadow as its drag shadow.
func (s *Surface) StartDrag(shadow *DragSurface, actions DragAction) error {
	if s.destroyed || shadow.destroyed {
		return ErrDestroyed
	}
	if s.peer == nil {
		return ErrNotBound
	}
	if shadow.session != nil {
		return fmt.Errorf("app: drag surface already in use")
	}
	sess, err := s.peer.StartDrag(shadow.id, actions)
	if err != nil {
		return fmt.Errorf("app: start drag: %w", err)
	}
	shadow.session = sess
	if s.d.drags == nil {
		s.d.drags = make(map[*DragSurface]struct{})
	}
	s.d.drags[shadow] = struct{}{}
	shadow.visible = true
	shadow.setMapped(true)
	return nil
}

// NotifyDragStartFailed reports that the platform refused the drag of
// shadow id.
func (d *Display) NotifyDragStartFailed(id handle.ID) {
	d.withSurface("notifyDNDStartFailed", id, func(s *Surface) {
		if s.drag == nil {
			return
		}
		slog.Warn("app: platform refused drag", "id", uint64(id))
		s.drag.endSession(false)
	})
}

// NotifyDragEvent delivers a drag event for surface id and reports whether
// the surface accepts it. It blocks until the main loop handled it. The
// end of a drag releases the sessions of every active drag surface.
func (d *Display) NotifyDragEvent(id handle.ID, e DragEvent) bool {
	s, ok := d.Lookup(id)
	if !ok {
		slog.Error("app: callback for unknown surface", "callback", "notifyDragEvent", "id", uint64(id))
		return false
	}
	var accepted bool
	d.loop.Sync(func() {
		if e.Action == dragActionEnded {
			for ds := range d.drags {
				ds.endSession(false)
			}
		}
		if s.destroyed || d.dragHandler == nil {
			return
		}
		scale := s.scale
		e.X /= scale
		e.Y /= scale
		accepted = d.dragHandler(s, e)
	})
	return accepted
}
