// SPDX-License-Identifier: Unlicense OR MIT

//go:build android

package egl

import (
	"errors"
	"fmt"
)

// Context is an EGL context on the default display with at most one
// window surface.
type Context struct {
	disp        _EGLDisplay
	config      _EGLConfig
	ctx         _EGLContext
	visualID    int
	srgb        bool
	surfaceless bool

	surf _EGLSurface
	win  NativeWindowType
}

var (
	noDisplay _EGLDisplay
	noSurface _EGLSurface
	noContext _EGLContext
	noConfig  _EGLConfig
	noWindow  NativeWindowType
)

// NewContext initializes the default display and creates the newest GLES
// context it supports.
func NewContext() (*Context, error) {
	disp := eglGetDisplay(defaultDisplay)
	if disp == noDisplay {
		return nil, fmt.Errorf("egl: no default display: 0x%x", eglGetError())
	}
	major, minor, ok := eglInitialize(disp)
	if !ok {
		return nil, fmt.Errorf("egl: initialize: 0x%x", eglGetError())
	}
	exts := parseExtensions(eglQueryString(disp, attrExtensions))
	c := &Context{
		disp:        disp,
		srgb:        srgbCapable(int32(major), int32(minor), exts),
		surfaceless: exts[extSurfacelessContext],
	}
	cfg, ok := eglChooseConfig(disp, cints(configAttribs(c.srgb)))
	switch {
	case !ok:
		eglTerminate(disp)
		return nil, fmt.Errorf("egl: choose config: 0x%x", eglGetError())
	case cfg == noConfig:
		eglTerminate(disp)
		return nil, errors.New("egl: no matching config")
	}
	c.config = cfg
	vis, ok := eglGetConfigAttrib(disp, cfg, attrNativeVisualID)
	if !ok {
		eglTerminate(disp)
		return nil, errors.New("egl: config has no native visual")
	}
	c.visualID = int(vis)
	for _, v := range clientVersions {
		if c.ctx = eglCreateContext(disp, cfg, noContext, cints(contextAttribs(v))); c.ctx != noContext {
			break
		}
	}
	if c.ctx == noContext {
		eglTerminate(disp)
		return nil, fmt.Errorf("egl: create context: 0x%x", eglGetError())
	}
	return c, nil
}

// VisualID is the native visual of the chosen config, suitable for
// ANativeWindow_setBuffersGeometry.
func (c *Context) VisualID() int {
	return c.visualID
}

// CreateSurface replaces the window surface with one for win. The sRGB
// colorspace is dropped for good if the window rejects it.
func (c *Context) CreateSurface(win NativeWindowType) error {
	c.ReleaseSurface()
	surf := eglCreateWindowSurface(c.disp, c.config, win, cints(surfaceAttribs(c.srgb)))
	if surf == noSurface && c.srgb {
		c.srgb = false
		surf = eglCreateWindowSurface(c.disp, c.config, win, cints(surfaceAttribs(false)))
	}
	if surf == noSurface {
		return fmt.Errorf("egl: create window surface: 0x%x", eglGetError())
	}
	c.surf, c.win = surf, win
	return nil
}

// ReleaseSurface waits for pending GL commands and destroys the window
// surface, if any.
func (c *Context) ReleaseSurface() {
	if c.surf == noSurface {
		return
	}
	eglWaitClient()
	eglMakeCurrent(c.disp, noSurface, noSurface, noContext)
	eglDestroySurface(c.disp, c.surf)
	c.surf, c.win = noSurface, noWindow
}

func (c *Context) MakeCurrent() error {
	if c.surf == noSurface && !c.surfaceless {
		return errors.New("egl: no window surface and no surfaceless contexts")
	}
	if !eglMakeCurrent(c.disp, c.surf, c.surf, c.ctx) {
		return fmt.Errorf("egl: make current: 0x%x", eglGetError())
	}
	// Frames are paced by the platform choreographer.
	eglSwapInterval(c.disp, 0)
	return nil
}

func (c *Context) ReleaseCurrent() {
	eglMakeCurrent(c.disp, noSurface, noSurface, noContext)
}

func (c *Context) SwapBuffers() error {
	if c.win == noWindow {
		return errors.New("egl: no window surface")
	}
	if !eglSwapBuffers(c.disp, c.surf) {
		return fmt.Errorf("egl: swap buffers: 0x%x", eglGetError())
	}
	return nil
}

// Release destroys the surface and the context and terminates the
// display. The Context is unusable afterwards.
func (c *Context) Release() {
	if c.ctx == noContext {
		return
	}
	c.ReleaseSurface()
	eglDestroyContext(c.disp, c.ctx)
	eglTerminate(c.disp)
	eglReleaseThread()
	c.ctx = noContext
}
