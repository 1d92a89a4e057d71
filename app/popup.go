// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Gravity names a point of a rectangle: a corner, an edge midpoint or the
// center.
type Gravity uint8

const (
	GravityCenter Gravity = iota
	GravityNorth
	GravitySouth
	GravityWest
	GravityEast
	GravityNorthWest
	GravityNorthEast
	GravitySouthWest
	GravitySouthEast
)

// Constraint is a set of adjustments applied to a popup that does not fit
// its toplevel.
type Constraint uint8

const (
	// ConstrainFlipX mirrors the anchor horizontally.
	ConstrainFlipX Constraint = 1 << iota
	ConstrainFlipY
	// ConstrainSlideX shifts the popup horizontally into the toplevel.
	ConstrainSlideX
	ConstrainSlideY
)

// PopupLayout positions a popup relative to its parent. Lengths are
// logical.
type PopupLayout struct {
	// AnchorRect is the anchor rectangle in parent coordinates.
	AnchorRect image.Rectangle
	// RectAnchor is the point of AnchorRect the popup attaches to.
	RectAnchor Gravity
	// SurfaceAnchor is the point of the popup placed at the attachment
	// point.
	SurfaceAnchor Gravity
	Offset        image.Point
	Size          image.Point
	Constraints   Constraint
}

// Popup is a surface placed relative to a parent surface inside the
// parent's toplevel.
type Popup struct {
	*Surface

	layout   PopupLayout
	autohide bool
	// bounds is the last placement, logical and relative to the toplevel.
	bounds image.Rectangle
	// pushed is set once the container was asked to create the view.
	pushed bool
}

var errNoToplevel = errors.New("app: popup parent has no toplevel")

// NewPopup creates an unmapped popup child of parent. Autohide popups take
// the keyboard focus when mapped.
func (d *Display) NewPopup(parent *Surface, layout PopupLayout, autohide bool) (*Popup, error) {
	if parent == nil || parent.destroyed || parent.kind == KindDrag {
		return nil, fmt.Errorf("app: invalid popup parent")
	}
	p := &Popup{layout: layout, autohide: autohide}
	p.Surface = newSurface(d, KindPopup)
	p.Surface.pop = p
	p.parent = parent
	parent.children = append(parent.children, p.Surface)
	return p, nil
}

// Autohide reports whether the popup was created with autohide.
func (p *Popup) Autohide() bool { return p.autohide }

// Bounds returns the last computed placement relative to the toplevel.
func (p *Popup) Bounds() image.Rectangle { return p.bounds }

// Layout returns the current layout.
func (p *Popup) Layout() PopupLayout { return p.layout }

// SetLayout replaces the layout and moves the popup and its children.
func (p *Popup) SetLayout(l PopupLayout) error {
	p.layout = l
	return p.reposition()
}

func (p *Popup) present() error {
	if p.peer != nil {
		if err := p.peer.SetVisibility(true); err != nil {
			return fmt.Errorf("app: present popup: %w", err)
		}
		p.visible = true
		return p.reposition()
	}
	p.visible = true
	if err := p.reposition(); err != nil {
		p.visible = false
		return fmt.Errorf("app: present popup: %w", err)
	}
	return nil
}

// reposition recomputes the placement and forwards it to the platform:
// to the view when bound, otherwise to the container as a request to
// create the view.
func (p *Popup) reposition() error {
	t := p.toplevelAncestor()
	if t == nil {
		return errNoToplevel
	}
	var origin image.Point
	if pp := p.parent.pop; pp != nil {
		origin = pp.bounds.Min
	}
	p.bounds = p.layout.place(origin, image.Rectangle{Max: t.Size()})
	x, y, w, h := toDevice(p.bounds, t.scale)
	defer p.repositionChildren()
	if p.peer != nil {
		return p.peer.Reposition(x, y, w, h)
	}
	if !p.visible || p.pushed || t.activity == nil {
		return nil
	}
	c, err := t.activity.Container()
	if err != nil {
		return err
	}
	if err := c.PushPopup(p.id, x, y, w, h); err != nil {
		return err
	}
	p.pushed = true
	return nil
}

func toDevice(r image.Rectangle, scale float64) (x, y, w, h int) {
	x = int(math.Round(float64(r.Min.X) * scale))
	y = int(math.Round(float64(r.Min.Y) * scale))
	w = int(math.Ceil(float64(r.Dx()) * scale))
	h = int(math.Ceil(float64(r.Dy()) * scale))
	return
}

// place computes the popup rectangle for a parent at origin inside area.
func (l PopupLayout) place(origin image.Point, area image.Rectangle) image.Rectangle {
	anchor := l.AnchorRect.Add(origin)
	r := l.position(anchor, l.RectAnchor, l.SurfaceAnchor, l.Offset)
	if l.Constraints&ConstrainFlipX != 0 && !fitsX(r, area) {
		f := l.position(anchor, l.RectAnchor.flipX(), l.SurfaceAnchor.flipX(), image.Pt(-l.Offset.X, l.Offset.Y))
		if fitsX(f, area) {
			r.Min.X, r.Max.X = f.Min.X, f.Max.X
		}
	}
	if l.Constraints&ConstrainFlipY != 0 && !fitsY(r, area) {
		f := l.position(anchor, l.RectAnchor.flipY(), l.SurfaceAnchor.flipY(), image.Pt(l.Offset.X, -l.Offset.Y))
		if fitsY(f, area) {
			r.Min.Y, r.Max.Y = f.Min.Y, f.Max.Y
		}
	}
	if l.Constraints&ConstrainSlideX != 0 {
		if d := r.Max.X - area.Max.X; d > 0 {
			r = r.Sub(image.Pt(d, 0))
		}
		if d := area.Min.X - r.Min.X; d > 0 {
			r = r.Add(image.Pt(d, 0))
		}
	}
	if l.Constraints&ConstrainSlideY != 0 {
		if d := r.Max.Y - area.Max.Y; d > 0 {
			r = r.Sub(image.Pt(0, d))
		}
		if d := area.Min.Y - r.Min.Y; d > 0 {
			r = r.Add(image.Pt(0, d))
		}
	}
	return r
}

func (l PopupLayout) position(anchor image.Rectangle, ra, sa Gravity, off image.Point) image.Rectangle {
	p := ra.point(anchor)
	min := p.Sub(sa.point(image.Rectangle{Max: l.Size})).Add(off)
	return image.Rectangle{Min: min, Max: min.Add(l.Size)}
}

func fitsX(r, area image.Rectangle) bool {
	return r.Min.X >= area.Min.X && r.Max.X <= area.Max.X
}

func fitsY(r, area image.Rectangle) bool {
	return r.Min.Y >= area.Min.Y && r.Max.Y <= area.Max.Y
}

// axes returns the horizontal and vertical components of g, each -1, 0
// or 1.
func (g Gravity) axes() (h, v int) {
	switch g {
	case GravityNorth:
		return 0, -1
	case GravitySouth:
		return 0, 1
	case GravityWest:
		return -1, 0
	case GravityEast:
		return 1, 0
	case GravityNorthWest:
		return -1, -1
	case GravityNorthEast:
		return 1, -1
	case GravitySouthWest:
		return -1, 1
	case GravitySouthEast:
		return 1, 1
	}
	return 0, 0
}

func gravityOf(h, v int) Gravity {
	for g := GravityCenter; g <= GravitySouthEast; g++ {
		if gh, gv := g.axes(); gh == h && gv == v {
			return g
		}
	}
	return GravityCenter
}

func (g Gravity) flipX() Gravity {
	h, v := g.axes()
	return gravityOf(-h, v)
}

func (g Gravity) flipY() Gravity {
	h, v := g.axes()
	return gravityOf(h, -v)
}

func (g Gravity) point(r image.Rectangle) image.Point {
	h, v := g.axes()
	return image.Point{
		X: pick(h, r.Min.X, (r.Min.X+r.Max.X)/2, r.Max.X),
		Y: pick(v, r.Min.Y, (r.Min.Y+r.Max.Y)/2, r.Max.Y),
	}
}

func pick(c, lo, mid, hi int) int {
	switch {
	case c < 0:
		return lo
	case c > 0:
		return hi
	}
	return mid
}

func (g Gravity) String() string {
	switch g {
	case GravityCenter:
		return "Center"
	case GravityNorth:
		return "North"
	case GravitySouth:
		return "South"
	case GravityWest:
		return "West"
	case GravityEast:
		return "East"
	case GravityNorthWest:
		return "NorthWest"
	case GravityNorthEast:
		return "NorthEast"
	case GravitySouthWest:
		return "SouthWest"
	case GravitySouthEast:
		return "SouthEast"
	default:
		panic("unknown gravity")
	}
}
