// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/mainloop"
	"github.com/GNOME/gtk-sub015/io/system"
)

// Kind of a Surface.
type Kind uint8

const (
	KindToplevel Kind = iota
	KindPopup
	KindDrag
)

// originUnset marks a position the platform has not reported yet.
const originUnset = math.MinInt32

// Surface is the native side of a platform surface view. Apart from the
// native window, its state is owned by the main loop.
type Surface struct {
	d    *Display
	id   handle.ID
	kind Kind

	peer Peer
	// Geometry in device pixels. Popup positions are relative to the
	// toplevel.
	x, y          int
	width, height int
	scale         float64

	// visible is the toolkit's intent, set by Present and Hide.
	visible    bool
	mapped     bool
	delayedMap bool
	destroyed  bool
	cursor     string

	parent   *Surface
	children []*Surface

	damage       image.Rectangle
	redrawQueued bool

	// winMu guards win and gl. The platform replaces win on the UI thread;
	// drawing contexts read it.
	winMu sync.Mutex
	win   NativeWindow
	gl    *GLContext
	// released is set when the surface is destroyed; no window is
	// acquired after.
	released bool

	top  *Toplevel
	pop  *Popup
	drag *DragSurface
}

func newSurface(d *Display, kind Kind) *Surface {
	s := &Surface{
		d:     d,
		kind:  kind,
		x:     originUnset,
		y:     originUnset,
		scale: 1,
	}
	d.register(s)
	return s
}

func (s *Surface) ID() handle.ID       { return s.id }
func (s *Surface) Kind() Kind          { return s.kind }
func (s *Surface) Display() *Display   { return s.d }
func (s *Surface) Toplevel() *Toplevel { return s.top }
func (s *Surface) Popup() *Popup       { return s.pop }
func (s *Surface) Parent() *Surface    { return s.parent }
func (s *Surface) Mapped() bool        { return s.mapped }
func (s *Surface) Visible() bool       { return s.visible }
func (s *Surface) Destroyed() bool     { return s.destroyed }
func (s *Surface) Scale() float64      { return s.scale }
func (s *Surface) Bound() bool         { return s.peer != nil }

// DelayedMap reports whether the surface waits for its position before
// mapping.
func (s *Surface) DelayedMap() bool { return s.delayedMap }

// Children returns the popups attached to s.
func (s *Surface) Children() []*Surface {
	return append([]*Surface(nil), s.children...)
}

// Size returns the logical size, the device size divided by the scale and
// rounded up.
func (s *Surface) Size() image.Point {
	return image.Point{
		X: int(math.Ceil(float64(s.width) / s.scale)),
		Y: int(math.Ceil(float64(s.height) / s.scale)),
	}
}

// DeviceBounds returns the device pixel geometry.
func (s *Surface) DeviceBounds() image.Rectangle {
	return image.Rect(s.x, s.y, s.x+s.width, s.y+s.height)
}

func (s *Surface) positionKnown() bool {
	return s.x != originUnset && s.y != originUnset
}

// HasNativeWindow reports whether the platform drawable is available.
func (s *Surface) HasNativeWindow() bool {
	s.winMu.Lock()
	defer s.winMu.Unlock()
	return s.win != nil
}

func (s *Surface) toplevelAncestor() *Toplevel {
	for p := s; p != nil; p = p.parent {
		if p.top != nil {
			return p.top
		}
	}
	return nil
}

// Present shows the surface.
func (s *Surface) Present() error {
	if s.destroyed {
		return ErrDestroyed
	}
	switch s.kind {
	case KindToplevel:
		return s.top.present()
	case KindPopup:
		return s.pop.present()
	default:
		return ErrNotAvailable
	}
}

// Hide hides the surface. A failed platform request leaves it visible.
func (s *Surface) Hide() error {
	if !s.visible {
		return nil
	}
	if s.mapped && s.peer != nil {
		if err := s.peer.SetVisibility(false); err != nil {
			return fmt.Errorf("app: hide: %w", err)
		}
	}
	s.visible = false
	s.damage = image.Rectangle{}
	return nil
}

// SetCursor sets the named CSS cursor. It is applied when the surface is
// bound.
func (s *Surface) SetCursor(name string) error {
	s.cursor = name
	if s.peer == nil {
		return nil
	}
	return s.peer.SetCursor(name)
}

// Invalidate schedules a FrameEvent for r, in logical units.
func (s *Surface) Invalidate(r image.Rectangle) {
	s.damage = s.damage.Union(r)
	if s.redrawQueued || !s.mapped || s.damage.Empty() {
		return
	}
	s.redrawQueued = true
	s.d.loop.Invoke(mainloop.PriorityRedraw, func() {
		s.redrawQueued = false
		if !s.mapped || s.destroyed || s.damage.Empty() {
			return
		}
		r := s.damage
		s.damage = image.Rectangle{}
		s.d.emit(s, system.FrameEvent{Region: r})
	})
}

// Destroy destroys the surface and its popups and asks the platform to
// remove their views.
func (s *Surface) Destroy() {
	s.destroy(false)
}

// destroy unwinds the platform-visible state before the surface leaves the
// registry. A foreign destroy comes from the platform, whose views are
// already gone.
func (s *Surface) destroy(foreign bool) {
	if s.destroyed {
		return
	}
	for len(s.children) > 0 {
		s.children[len(s.children)-1].destroy(foreign)
	}
	if !foreign {
		s.terminatePeer()
	}
	s.destroyed = true
	s.mapped = false
	s.delayedMap = false
	s.d.seat.forget(s)
	switch s.kind {
	case KindToplevel:
		s.top.teardown()
	case KindDrag:
		if err := s.drag.endSession(true); err != nil {
			slog.Warn("app: failed to cancel drag", "id", uint64(s.id), "err", err)
		}
	}
	if p := s.parent; p != nil {
		p.removeChild(s)
		s.parent = nil
	}
	s.releasePeer()
	s.winMu.Lock()
	s.released = true
	if s.gl != nil {
		s.gl.detachLocked()
	}
	if s.win != nil {
		s.win.Release()
		s.win = nil
	}
	s.winMu.Unlock()
	s.d.unregister(s)
	slog.Debug("app: surface destroyed", "id", uint64(s.id), "foreign", foreign)
}

func (s *Surface) terminatePeer() {
	var err error
	switch {
	case s.kind == KindToplevel && s.top.activity != nil:
		err = s.top.activity.Finish()
	case s.peer != nil:
		err = s.peer.Drop()
	}
	if err != nil {
		slog.Warn("app: failed to terminate platform view", "id", uint64(s.id), "err", err)
	}
}

func (s *Surface) removeChild(c *Surface) {
	for i, e := range s.children {
		if e == c {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// bind attaches the platform view p. A previous view, and with it every
// descendant's view, is dropped first.
func (s *Surface) bind(p Peer) {
	if s.peer != nil {
		s.dropPeers()
	}
	s.peer = p
	slog.Debug("app: surface bound", "id", uint64(s.id))
	if s.cursor != "" {
		if err := p.SetCursor(s.cursor); err != nil {
			slog.Warn("app: failed to restore cursor", "id", uint64(s.id), "err", err)
		}
	}
	if s.kind == KindPopup && s.visible {
		s.pop.pushed = false
		if err := p.SetVisibility(true); err != nil {
			slog.Warn("app: failed to show rebound popup", "id", uint64(s.id), "err", err)
		}
	}
	s.repositionChildren()
}

// dropPeers releases the views of the descendants, then of s.
func (s *Surface) dropPeers() {
	for _, c := range s.children {
		c.dropPeers()
	}
	s.releasePeer()
	if s.pop != nil {
		s.pop.pushed = false
	}
}

func (s *Surface) releasePeer() {
	if s.peer != nil {
		s.peer.Release()
		s.peer = nil
	}
}

func (s *Surface) onLayoutSurface(width, height int, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	changed := width != s.width || height != s.height || scale != s.scale
	s.width, s.height, s.scale = width, height, scale
	// Buffers may be swapped without a size change, as when toggling
	// fullscreen.
	s.rebindGL()
	if changed {
		size := s.Size()
		s.d.emit(s, system.ConfigureEvent{Width: size.X, Height: size.Y, Scale: scale})
		s.Invalidate(image.Rectangle{Max: size})
	}
	s.repositionChildren()
	s.maybeCompleteMap()
}

func (s *Surface) onLayoutPosition(x, y int) {
	s.x, s.y = x, y
	s.repositionChildren()
	s.maybeCompleteMap()
}

func (s *Surface) repositionChildren() {
	for _, c := range s.children {
		if c.pop == nil {
			continue
		}
		if err := c.pop.reposition(); err != nil {
			slog.Warn("app: failed to reposition popup", "id", uint64(c.id), "err", err)
		}
	}
}

func (s *Surface) maybeCompleteMap() {
	if s.delayedMap && s.positionKnown() {
		s.delayedMap = false
		s.setMapped(true)
	}
}

func (s *Surface) setMapped(mapped bool) {
	if s.mapped == mapped {
		return
	}
	s.mapped = mapped
	slog.Debug("app: surface mapped", "id", uint64(s.id), "mapped", mapped)
	s.d.emit(s, system.MapEvent{Mapped: mapped})
	if mapped {
		s.Invalidate(image.Rectangle{Max: s.Size()})
	}
}

func (k Kind) String() string {
	switch k {
	case KindToplevel:
		return "Toplevel"
	case KindPopup:
		return "Popup"
	case KindDrag:
		return "Drag"
	default:
		panic("unknown surface kind")
	}
}
