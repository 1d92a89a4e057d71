// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"log/slog"
)

// ErrNoWindow is returned when a frame is started without a native window.
var ErrNoWindow = errors.New("app: no native window")

// GLContext draws a surface through EGL. Its window surface follows the
// surface's native window.
type GLContext struct {
	s     *Surface
	egl   EGL
	bound bool
}

// NewGLContext returns an unrealized context for s.
func (s *Surface) NewGLContext() *GLContext {
	return &GLContext{s: s}
}

// Realize takes ownership of egl and attaches the context. Drag surfaces
// have no accelerated rendering.
func (c *GLContext) Realize(egl EGL) error {
	if c.s.kind == KindDrag {
		return ErrNotAvailable
	}
	if c.egl != nil {
		return errors.New("app: GL context already realized")
	}
	c.egl = egl
	return c.Attach()
}

// Attach makes c the surface's context and binds the current native
// window, if any.
func (c *GLContext) Attach() error {
	if c.egl == nil {
		return errors.New("app: GL context not realized")
	}
	s := c.s
	s.winMu.Lock()
	defer s.winMu.Unlock()
	if s.released {
		return ErrDestroyed
	}
	if s.gl != nil && s.gl != c {
		s.gl.detachLocked()
	}
	s.gl = c
	c.bindLocked()
	return nil
}

// Detach unbinds c from the surface.
func (c *GLContext) Detach() {
	c.s.winMu.Lock()
	defer c.s.winMu.Unlock()
	if c.s.gl == c {
		c.detachLocked()
	}
}

// Resize rebinds the window surface. Some configuration changes replace
// the buffers without a visibility change.
func (c *GLContext) Resize() {
	c.s.winMu.Lock()
	defer c.s.winMu.Unlock()
	if c.s.gl != c {
		return
	}
	c.unbindLocked()
	c.bindLocked()
}

// BeginFrame makes the context current on its window surface.
func (c *GLContext) BeginFrame() error {
	c.s.winMu.Lock()
	defer c.s.winMu.Unlock()
	if !c.bound {
		return ErrNoWindow
	}
	return c.egl.MakeCurrent()
}

// EndFrame presents the frame.
func (c *GLContext) EndFrame() error {
	c.s.winMu.Lock()
	defer c.s.winMu.Unlock()
	if !c.bound {
		return ErrNoWindow
	}
	err := c.egl.SwapBuffers()
	c.egl.ReleaseCurrent()
	return err
}

// Release detaches the context and releases its EGL resources.
func (c *GLContext) Release() {
	c.Detach()
	if c.egl != nil {
		c.egl.Release()
		c.egl = nil
	}
}

func (c *GLContext) bindLocked() {
	w := c.s.win
	if w == nil || c.bound {
		return
	}
	if err := c.egl.CreateSurface(w); err != nil {
		slog.Error("app: failed to create EGL surface", "id", uint64(c.s.id), "err", err)
		return
	}
	c.bound = true
}

func (c *GLContext) unbindLocked() {
	if !c.bound {
		return
	}
	c.egl.ReleaseSurface()
	c.bound = false
}

func (c *GLContext) detachLocked() {
	c.unbindLocked()
	c.s.gl = nil
}

// rebindGL follows a resize of the surface.
func (s *Surface) rebindGL() {
	s.winMu.Lock()
	gl := s.gl
	s.winMu.Unlock()
	if gl != nil {
		gl.Resize()
	}
}
