// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
)

// Peer is the platform view bound to a surface. Methods may be called from
// any thread.
type Peer interface {
	SetVisibility(visible bool) error
	// Reposition moves and resizes a popup view, in device pixels relative
	// to its toplevel.
	Reposition(x, y, width, height int) error
	// NativeWindow acquires the drawable currently backing the view, or
	// returns nil when there is none. The caller owns the returned
	// reference.
	NativeWindow() (NativeWindow, error)
	// SetCursor shows the named CSS cursor over the view. The empty name
	// restores the platform default.
	SetCursor(name string) error
	StartDrag(id handle.ID, actions DragAction) (DragSession, error)
	// Drop asks the platform to remove the view.
	Drop() error
	// Release drops the reference to the view.
	Release()
}

// Container is the root view of a toplevel activity, hosting its surface
// views.
type Container interface {
	// SetGrabbedSurface routes the input of every view in the container
	// to p. A nil p clears the grab.
	SetGrabbedSurface(p Peer) error
	// PushPopup asks the container to create the view of popup id at the
	// given bounds.
	PushPopup(id handle.ID, x, y, width, height int) error
}

// Activity is the platform activity bound to a toplevel.
type Activity interface {
	Container() (Container, error)
	// AttachToplevelSurface asks the activity to create the toplevel's
	// surface view.
	AttachToplevelSurface() error
	PostTitle(title string) error
	PostWindowConfiguration(color uint32, fullscreen bool) error
	StartActivityForResult(intent jni.Object, requestCode int32) error
	FinishActivity(requestCode int32) error
	Finish() error
	Release()
}

// Platform launches toplevel activities.
type Platform interface {
	// ClaimRoot binds id to the activity that started the application, if
	// that activity is still unbound. It reports whether it was.
	ClaimRoot(id handle.ID) (bool, error)
	// LaunchToplevel starts a new activity for toplevel id.
	LaunchToplevel(id handle.ID) error
}

// NativeWindow is a reference counted platform drawable.
type NativeWindow interface {
	Acquire()
	Release()
	// Size returns the buffer size in pixels.
	Size() (width, height int)
	// Lock locks the buffer for writing. The locked bounds may exceed
	// dirty.
	Lock(dirty image.Rectangle) (WindowBuffer, error)
	UnlockAndPost() error
}

// WindowBuffer is a locked native window buffer in premultiplied BGRA
// order.
type WindowBuffer struct {
	// Bounds is the area the platform locked.
	Bounds image.Rectangle
	// Stride is the distance in bytes between rows.
	Stride int
	// Pix holds the whole buffer starting at (0, 0).
	Pix []byte
}

// EGL binds an accelerated context to native windows.
type EGL interface {
	CreateSurface(win NativeWindow) error
	ReleaseSurface()
	MakeCurrent() error
	ReleaseCurrent()
	SwapBuffers() error
	Release()
}

// DragSession is a platform drag operation.
type DragSession interface {
	// UpdateShadow replaces the drag shadow with pix, non-premultiplied
	// ARGB pixels in row order.
	UpdateShadow(pix []uint32, width, height int) error
	// Cancel ends the drag without a drop.
	Cancel() error
	// Release drops the references the session holds. The session is
	// unusable afterwards.
	Release()
}

// DragAction is a set of drag and drop actions.
type DragAction uint8

const (
	DragCopy DragAction = 1 << iota
	DragMove
	DragLink
)

// DragEvent is a platform drag event delivered to a surface.
type DragEvent struct {
	Action int32
	X, Y   float64
}

// MotionEvent is a snapshot of an android.view.MotionEvent. Coordinates
// are device pixels relative to the view.
type MotionEvent struct {
	Action      int32
	ActionIndex int32
	ButtonState int32
	MetaState   int32
	Source      int32
	DeviceID    int32
	// Stream identifies the view's event stream. Touch sequences of
	// different streams never collide.
	Stream int32
	// DownTime and EventTime are in milliseconds.
	DownTime  int64
	EventTime int64
	Pointers  []PointerSample
	// Device holds the axis ranges of the source device, if known.
	Device *InputDevice
}

// PointerSample is one pointer of a MotionEvent.
type PointerSample struct {
	ID       int32
	ToolType int32
	X, Y     float32
	// Axes holds the sampled values of the axes in sampledAxes.
	Axes map[int32]float32
}

// KeyEvent is a snapshot of an android.view.KeyEvent.
type KeyEvent struct {
	Action    int32
	KeyCode   int32
	ScanCode  int32
	MetaState int32
	Source    int32
	DeviceID  int32
	// EventTime is in milliseconds.
	EventTime int64
}

// InputDevice holds the declared ranges of a device's axes.
type InputDevice struct {
	ID      int32
	Sources int32
	Ranges  map[int32]AxisRange
}

// AxisRange is the declared range of a device axis.
type AxisRange struct {
	Min, Max float32
}

// Axis returns the sampled value of axis a.
func (p PointerSample) Axis(a int32) float32 {
	return p.Axes[a]
}

// Range returns the declared range of axis a.
func (d *InputDevice) Range(a int32) (AxisRange, bool) {
	if d == nil {
		return AxisRange{}, false
	}
	r, ok := d.Ranges[a]
	return r, ok
}
