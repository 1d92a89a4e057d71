// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/GNOME/gtk-sub015/app/config"
	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/mainloop"
	"github.com/GNOME/gtk-sub015/io/event"
	"github.com/GNOME/gtk-sub015/io/key"
)

var (
	// ErrNotAvailable is returned for operations a surface kind does not
	// support, such as accelerated drawing on drag surfaces.
	ErrNotAvailable = errors.New("app: not available on this surface")
	// ErrUnknownSurface is returned when a platform callback names an
	// identifier missing from the registry.
	ErrUnknownSurface = errors.New("app: unknown surface identifier")
	ErrDestroyed      = errors.New("app: surface destroyed")
	ErrCancelled      = errors.New("app: request cancelled")
	ErrNotBound       = errors.New("app: surface has no platform peer")
)

// Handler receives the events of a display's surfaces on the main loop.
type Handler func(s *Surface, e event.Event)

// DragHandler receives drag events and reports whether the surface accepts
// the drag.
type DragHandler func(s *Surface, e DragEvent) bool

// Display owns the surfaces of one platform connection. Surfaces are
// created and manipulated on the main loop; platform callbacks reach them
// through the registry.
type Display struct {
	loop     *mainloop.Loop
	cfg      config.Config
	platform Platform
	keymap   *key.Keymap
	seat     *Seat

	handler     Handler
	dragHandler DragHandler
	// drags are the drag surfaces with an active session. Loop only.
	drags map[*DragSurface]struct{}

	// mu guards surfaces. It is never held together with a surface's
	// window lock.
	mu       sync.Mutex
	surfaces handle.Table[*Surface]
}

// Option configures a Display.
type Option func(d *Display)

// WithConfig replaces the default configuration.
func WithConfig(c config.Config) Option {
	return func(d *Display) {
		d.cfg = c
	}
}

// WithPlatform sets the activity launcher.
func WithPlatform(p Platform) Option {
	return func(d *Display) {
		d.platform = p
	}
}

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(d *Display) {
		d.handler = h
	}
}

// WithDragHandler sets the drag event handler.
func WithDragHandler(h DragHandler) Option {
	return func(d *Display) {
		d.dragHandler = h
	}
}

// NewDisplay returns a display whose toolkit work runs on loop.
func NewDisplay(loop *mainloop.Loop, opts ...Option) *Display {
	d := &Display{
		loop:   loop,
		cfg:    config.Default(),
		keymap: key.NewKeymap(),
	}
	for _, o := range opts {
		o(d)
	}
	d.seat = newSeat(d)
	return d
}

// Loop returns the display's main loop.
func (d *Display) Loop() *mainloop.Loop {
	return d.loop
}

// Seat returns the display's only seat.
func (d *Display) Seat() *Seat {
	return d.seat
}

// SetHandler replaces the event handler. Call it on the main loop.
func (d *Display) SetHandler(h Handler) {
	d.handler = h
}

// Lookup returns the surface registered under id.
func (d *Display) Lookup(id handle.ID) (*Surface, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaces.Get(id)
}

// Surfaces returns the number of registered surfaces.
func (d *Display) Surfaces() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaces.Len()
}

func (d *Display) register(s *Surface) {
	d.mu.Lock()
	s.id = d.surfaces.Insert(s)
	d.mu.Unlock()
	slog.Debug("app: surface registered", "id", uint64(s.id), "kind", s.kind)
}

func (d *Display) unregister(s *Surface) {
	d.mu.Lock()
	ok := d.surfaces.Remove(s.id)
	d.mu.Unlock()
	if !ok {
		slog.Warn("app: surface removed twice", "id", uint64(s.id))
	}
}

// emit delivers e to the handler. It runs on the main loop.
func (d *Display) emit(s *Surface, e event.Event) {
	if d.handler != nil {
		d.handler(s, e)
	}
}

// runOnMain runs f on the main loop: directly when called from it, queued
// behind earlier callbacks otherwise.
func (d *Display) runOnMain(f func()) {
	if d.loop.InLoop() {
		f()
		return
	}
	d.loop.Invoke(mainloop.PriorityDefault, f)
}

// withSurface resolves id and runs f with the surface on the main loop.
// Unknown identifiers are logged and ignored.
func (d *Display) withSurface(callback string, id handle.ID, f func(s *Surface)) {
	s, ok := d.Lookup(id)
	if !ok {
		slog.Error("app: callback for unknown surface", "callback", callback, "id", uint64(id))
		return
	}
	d.runOnMain(func() {
		if s.destroyed {
			return
		}
		f(s)
	})
}
