// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/refcache"
)

// dragFlagGlobal is View.DRAG_FLAG_GLOBAL.
const dragFlagGlobal = 1 << 8

// javaBackend implements the platform interfaces on top of the Java
// classes of the Android port.
type javaBackend struct {
	d     *Display
	jvm   *jni.Manager
	cache *refcache.Cache

	// windowFromSurface returns the native window of an
	// android.view.Surface.
	windowFromSurface func(env jni.Env, surface jni.Object) (NativeWindow, error)

	mu sync.Mutex
	// latest is the most recently created activity.
	latest *jni.GlobalRef
	// devices caches the axis ranges of input devices.
	devices map[int32]*InputDevice
}

func newJavaBackend(jvm *jni.Manager, cache *refcache.Cache) *javaBackend {
	return &javaBackend{
		jvm:     jvm,
		cache:   cache,
		devices: make(map[int32]*InputDevice),
	}
}

// setLatestActivity records activity as the activity new toplevels are
// started from. A previous toplevel activity that was never bound to a
// toplevel is finished.
func (b *javaBackend) setLatestActivity(env jni.Env, activity jni.Object) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev := b.latest.Object(); prev != 0 {
		if activity != 0 && env.IsSameObject(prev, activity) {
			return nil
		}
		t := &b.cache.Toplevel
		if env.IsInstanceOf(prev, t.Class) && env.GetLongField(prev, t.NativeIdentifier) == 0 {
			if err := env.CallVoidMethod(prev, b.cache.Activity.Finish); err != nil {
				slog.Warn("app: failed to finish unbound activity", "err", err)
			}
		}
		b.latest.Release(env)
	}
	b.latest = jni.NewGlobalRef(env, activity)
	return nil
}

// ClaimRoot implements Platform.
func (b *javaBackend) ClaimRoot(id handle.ID) (bool, error) {
	claimed := false
	err := b.jvm.Do(func(env jni.Env) error {
		b.mu.Lock()
		act := b.latest.Object()
		b.mu.Unlock()
		t := &b.cache.Toplevel
		if act == 0 || !env.IsInstanceOf(act, t.Class) || env.GetLongField(act, t.NativeIdentifier) != 0 {
			return nil
		}
		claimed = true
		return env.CallVoidMethod(act, t.BindNative, jni.Long(int64(id)))
	})
	return claimed, err
}

// LaunchToplevel implements Platform.
func (b *javaBackend) LaunchToplevel(id handle.ID) error {
	return b.jvm.Do(func(env jni.Env) error {
		b.mu.Lock()
		ctx := b.latest.Object()
		b.mu.Unlock()
		if ctx == 0 {
			return errors.New("app: no activity to launch from")
		}
		_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
			if err := fr.Reserve(4); err != nil {
				return 0, err
			}
			c := b.cache
			intent, err := env.NewObject(c.Intent.Class, c.Intent.New, jni.Value(ctx), jni.Value(c.Toplevel.Class))
			if err != nil {
				return 0, err
			}
			if _, err := env.CallObjectMethod(intent, c.Intent.PutExtraLong, jni.Value(c.Toplevel.IdentifierKey), jni.Long(int64(id))); err != nil {
				return 0, err
			}
			flags := c.Intent.FlagActivityNewTask | c.Intent.FlagMultipleTask
			if _, err := env.CallObjectMethod(intent, c.Intent.AddFlags, jni.Int(flags)); err != nil {
				return 0, err
			}
			return 0, env.CallVoidMethod(ctx, c.Activity.StartActivity, jni.Value(intent))
		})
		return err
	})
}

// bindSurface handles Surface.bindNative: it binds the view to surface id
// or throws UnregisteredSurfaceException back into Java.
func (b *javaBackend) bindSurface(env jni.Env, view jni.Object, id handle.ID) {
	p := &javaPeer{b: b, view: jni.NewGlobalRef(env, view)}
	err := b.d.BindSurface(id, p)
	if err == nil {
		return
	}
	p.view.Release(env)
	b.throwUnregistered(env, view, err)
}

// bindToplevel handles ToplevelActivity.bindNative.
func (b *javaBackend) bindToplevel(env jni.Env, activity jni.Object, id handle.ID) {
	a := &javaActivity{b: b, activity: jni.NewGlobalRef(env, activity)}
	err := b.d.BindToplevel(id, a)
	if err == nil {
		return
	}
	a.activity.Release(env)
	b.throwUnregistered(env, activity, err)
}

func (b *javaBackend) throwUnregistered(env jni.Env, obj jni.Object, cause error) {
	slog.Error("app: bind of unregistered surface", "err", cause)
	e := &b.cache.SurfaceException
	thr, err := env.NewObject(e.Class, e.New, jni.Value(obj))
	if err != nil {
		slog.Error("app: failed to create exception", "err", err)
		return
	}
	if err := env.Throw(thr); err != nil {
		slog.Error("app: failed to throw exception", "err", err)
	}
	env.DeleteLocalRef(thr)
}

// surfaceID reads the identifier of a Java surface view.
func (b *javaBackend) surfaceID(env jni.Env, view jni.Object) handle.ID {
	return handle.ID(env.GetLongField(view, b.cache.Surface.SurfaceIdentifier))
}

// toplevelID reads the identifier of a ToplevelActivity.
func (b *javaBackend) toplevelID(env jni.Env, activity jni.Object) handle.ID {
	return handle.ID(env.GetLongField(activity, b.cache.Toplevel.NativeIdentifier))
}

// javaPeer is a ToplevelView$Surface.
type javaPeer struct {
	b    *javaBackend
	view *jni.GlobalRef
}

func (p *javaPeer) call(m jni.MethodID, args ...jni.Value) error {
	return p.b.jvm.Do(func(env jni.Env) error {
		return env.CallVoidMethod(p.view.Object(), m, args...)
	})
}

func (p *javaPeer) SetVisibility(visible bool) error {
	return p.call(p.b.cache.Surface.SetVisibility, jni.Bool(visible))
}

func (p *javaPeer) Reposition(x, y, width, height int) error {
	return p.call(p.b.cache.Surface.Reposition,
		jni.Int(int32(x)), jni.Int(int32(y)), jni.Int(int32(width)), jni.Int(int32(height)))
}

func (p *javaPeer) NativeWindow() (NativeWindow, error) {
	if p.b.windowFromSurface == nil {
		return nil, ErrNotAvailable
	}
	var win NativeWindow
	err := p.b.jvm.Do(func(env jni.Env) error {
		c := &p.b.cache.Surface
		holder, err := env.CallObjectMethod(p.view.Object(), c.GetHolder)
		if err != nil || holder == 0 {
			return err
		}
		defer env.DeleteLocalRef(holder)
		surf, err := env.CallObjectMethod(holder, p.b.cache.SurfaceHolder.GetSurface)
		if err != nil || surf == 0 {
			return err
		}
		defer env.DeleteLocalRef(surf)
		win, err = p.b.windowFromSurface(env, surf)
		return err
	})
	return win, err
}

// SetCursor shows the PointerIcon matching the CSS name, or the arrow for
// names without one.
func (p *javaPeer) SetCursor(name string) error {
	c := p.b.cache
	if name == "" {
		return p.call(c.Surface.DropCursorIcon)
	}
	t, ok := c.CursorType(name)
	if !ok {
		t, _ = c.CursorType("arrow")
	}
	return p.call(c.Surface.SetCursorFromID, jni.Int(t))
}

func (p *javaPeer) StartDrag(id handle.ID, actions DragAction) (DragSession, error) {
	var sess *javaDragSession
	err := p.b.jvm.Do(func(env jni.Env) error {
		_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
			if err := fr.Reserve(2); err != nil {
				return 0, err
			}
			c := &p.b.cache.DragShadow
			view := p.view.Object()
			shadow, err := env.NewObject(c.Empty, c.NewEmpty, jni.Value(view))
			if err != nil {
				return 0, err
			}
			ident, err := env.NewObject(c.Identifier, c.NewIdentifier, jni.Long(int64(id)))
			if err != nil {
				return 0, err
			}
			if err := env.CallVoidMethod(view, p.b.cache.Surface.StartDND, 0, jni.Value(shadow), jni.Value(ident), jni.Int(dragFlagGlobal)); err != nil {
				return 0, err
			}
			sess = &javaDragSession{b: p.b, view: jni.NewGlobalRef(env, view)}
			return 0, nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("app: start drag %v: %w", actions, err)
	}
	return sess, nil
}

func (p *javaPeer) Drop() error {
	return p.call(p.b.cache.Surface.Drop)
}

func (p *javaPeer) Release() {
	releaseRef(p.b.jvm, p.view)
}

func releaseRef(jvm *jni.Manager, r *jni.GlobalRef) {
	if err := jvm.Do(func(env jni.Env) error {
		r.Release(env)
		return nil
	}); err != nil {
		slog.Warn("app: failed to release reference", "err", err)
	}
}

// javaDragSession is a drag started from a surface view.
type javaDragSession struct {
	b    *javaBackend
	view *jni.GlobalRef
}

// UpdateShadow replaces the drag shadow with a bitmap of pix, anchored at
// its center.
func (s *javaDragSession) UpdateShadow(pix []uint32, width, height int) error {
	if len(pix) != width*height {
		return fmt.Errorf("app: shadow of %d pixels for %dx%d", len(pix), width, height)
	}
	return s.b.jvm.Do(func(env jni.Env) error {
		_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
			if err := fr.Reserve(3); err != nil {
				return 0, err
			}
			c := s.b.cache
			arr, err := env.NewIntArray(len(pix))
			if err != nil {
				return 0, err
			}
			vals := make([]int32, len(pix))
			for i, v := range pix {
				vals[i] = int32(v)
			}
			env.SetIntArrayRegion(arr, 0, vals)
			bmp, err := env.CallStaticObjectMethod(c.Bitmap.Class, c.Bitmap.Create,
				jni.Value(arr), jni.Int(int32(width)), jni.Int(int32(height)), jni.Value(c.Bitmap.ARGB8888))
			if err != nil {
				return 0, err
			}
			view := s.view.Object()
			shadow, err := env.NewObject(c.DragShadow.Bitmap, c.DragShadow.NewBitmap,
				jni.Value(view), jni.Value(bmp), jni.Int(int32(width/2)), jni.Int(int32(height/2)))
			if err != nil {
				return 0, err
			}
			return 0, env.CallVoidMethod(view, c.Surface.UpdateDND, jni.Value(shadow))
		})
		return err
	})
}

func (s *javaDragSession) Cancel() error {
	return s.b.jvm.Do(func(env jni.Env) error {
		return env.CallVoidMethod(s.view.Object(), s.b.cache.Surface.CancelDND)
	})
}

func (s *javaDragSession) Release() {
	releaseRef(s.b.jvm, s.view)
}

// javaContainer is a ToplevelActivity$ToplevelView.
type javaContainer struct {
	b    *javaBackend
	view *jni.GlobalRef
}

func (c *javaContainer) SetGrabbedSurface(p Peer) error {
	var obj jni.Object
	if jp, ok := p.(*javaPeer); ok {
		obj = jp.view.Object()
	}
	return c.b.jvm.Do(func(env jni.Env) error {
		return env.CallVoidMethod(c.view.Object(), c.b.cache.ToplevelView.SetGrabbedSurface, jni.Value(obj))
	})
}

func (c *javaContainer) PushPopup(id handle.ID, x, y, width, height int) error {
	return c.b.jvm.Do(func(env jni.Env) error {
		return env.CallVoidMethod(c.view.Object(), c.b.cache.ToplevelView.PushPopup, jni.Long(int64(id)),
			jni.Int(int32(x)), jni.Int(int32(y)), jni.Int(int32(width)), jni.Int(int32(height)))
	})
}

// javaActivity is a ToplevelActivity bound to a toplevel.
type javaActivity struct {
	b        *javaBackend
	activity *jni.GlobalRef

	mu        sync.Mutex
	container *javaContainer
}

func (a *javaActivity) call(m jni.MethodID, args ...jni.Value) error {
	return a.b.jvm.Do(func(env jni.Env) error {
		return env.CallVoidMethod(a.activity.Object(), m, args...)
	})
}

// Container returns the activity's root view.
func (a *javaActivity) Container() (Container, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.container != nil {
		return a.container, nil
	}
	err := a.b.jvm.Do(func(env jni.Env) error {
		view := env.GetObjectField(a.activity.Object(), a.b.cache.Toplevel.View)
		if view == 0 {
			return ErrNotBound
		}
		a.container = &javaContainer{b: a.b, view: jni.NewGlobalRef(env, view)}
		env.DeleteLocalRef(view)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.container, nil
}

func (a *javaActivity) AttachToplevelSurface() error {
	return a.call(a.b.cache.Toplevel.AttachToplevelSurface)
}

func (a *javaActivity) PostTitle(title string) error {
	return a.b.jvm.Do(func(env jni.Env) error {
		str, err := env.NewString(title)
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(str)
		return env.CallVoidMethod(a.activity.Object(), a.b.cache.Toplevel.PostTitle, jni.Value(str))
	})
}

func (a *javaActivity) PostWindowConfiguration(color uint32, fullscreen bool) error {
	return a.call(a.b.cache.Toplevel.PostWindowConfiguration, jni.Int(int32(color)), jni.Bool(fullscreen))
}

func (a *javaActivity) StartActivityForResult(intent jni.Object, requestCode int32) error {
	return a.call(a.b.cache.Activity.StartActivityForResult, jni.Value(intent), jni.Int(requestCode))
}

func (a *javaActivity) FinishActivity(requestCode int32) error {
	return a.call(a.b.cache.Activity.FinishActivity, jni.Int(requestCode))
}

func (a *javaActivity) Finish() error {
	return a.call(a.b.cache.Activity.Finish)
}

func (a *javaActivity) Release() {
	a.mu.Lock()
	c := a.container
	a.container = nil
	a.mu.Unlock()
	if err := a.b.jvm.Do(func(env jni.Env) error {
		if c != nil {
			c.view.Release(env)
		}
		a.activity.Release(env)
		return nil
	}); err != nil {
		slog.Warn("app: failed to release activity", "err", err)
	}
}
