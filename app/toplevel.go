// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/io/system"
)

// Toplevel is a surface backed by its own platform activity.
type Toplevel struct {
	*Surface

	activity Activity
	// spawned is set once an activity was claimed or launched for the
	// toplevel.
	spawned bool

	title      string
	fullscreen bool
	themeColor color.NRGBA
	focused    bool

	transientFor *Toplevel

	nextRequest int32
	requests    map[int32]*activityRequest
}

// ActivityResult is the outcome of an activity started with
// StartActivityForResult. The receiver owns Data.
type ActivityResult struct {
	Code int32
	Data *jni.GlobalRef
}

type activityRequest struct {
	done func(ActivityResult, error)
	stop func() bool
}

// requestCodeMask keeps request codes in the range Android accepts.
const requestCodeMask = 0xffff

// NewToplevel creates an unmapped toplevel. Call it on the main loop.
func (d *Display) NewToplevel() *Toplevel {
	t := &Toplevel{}
	t.Surface = newSurface(d, KindToplevel)
	t.Surface.top = t
	return t
}

// Title returns the toplevel title.
func (t *Toplevel) Title() string { return t.title }

// Fullscreen reports the last requested or reported fullscreen state.
func (t *Toplevel) Fullscreen() bool { return t.fullscreen }

// Focused reports whether the activity has window focus.
func (t *Toplevel) Focused() bool { return t.focused }

// TransientFor returns the toplevel t is transient for.
func (t *Toplevel) TransientFor() *Toplevel { return t.transientFor }

// SetTransientFor marks t as a dialog of parent. The relation is dropped
// when either side is destroyed.
func (t *Toplevel) SetTransientFor(parent *Toplevel) {
	if parent != nil && parent.destroyed {
		parent = nil
	}
	t.transientFor = parent
}

func (t *Toplevel) present() error {
	if !t.spawned {
		p := t.d.platform
		if p == nil {
			return fmt.Errorf("app: present toplevel: %w", ErrNotAvailable)
		}
		t.spawned = true
		claimed, err := p.ClaimRoot(t.id)
		if err == nil && !claimed {
			err = p.LaunchToplevel(t.id)
		}
		if err != nil {
			t.spawned = false
			return fmt.Errorf("app: spawn toplevel: %w", err)
		}
		t.visible = true
		return nil
	}
	if t.peer != nil {
		if err := t.peer.SetVisibility(true); err != nil {
			return fmt.Errorf("app: present toplevel: %w", err)
		}
	}
	t.visible = true
	t.postChrome()
	t.repositionChildren()
	return nil
}

// bindActivity attaches the activity a to the toplevel and asks it for a
// surface view. A replaced activity loses every view of the tree.
func (t *Toplevel) bindActivity(a Activity) {
	if t.activity != nil {
		t.dropPeers()
		t.activity.Release()
	}
	t.activity = a
	t.spawned = true
	t.postChrome()
	if err := a.AttachToplevelSurface(); err != nil {
		slog.Error("app: failed to attach toplevel surface", "id", uint64(t.id), "err", err)
	}
}

func (t *Toplevel) postChrome() {
	if t.activity == nil {
		return
	}
	if t.title != "" {
		if err := t.activity.PostTitle(t.title); err != nil {
			slog.Warn("app: failed to post title", "id", uint64(t.id), "err", err)
		}
	}
	if err := t.postConfiguration(); err != nil {
		slog.Warn("app: failed to post window configuration", "id", uint64(t.id), "err", err)
	}
}

// SetTitle sets the task title.
func (t *Toplevel) SetTitle(title string) error {
	t.title = title
	if t.activity == nil {
		return nil
	}
	return t.activity.PostTitle(title)
}

// SetFullscreen requests the fullscreen state. The platform confirms it
// with a StateEvent.
func (t *Toplevel) SetFullscreen(fullscreen bool) error {
	t.fullscreen = fullscreen
	return t.postConfiguration()
}

// SetThemeColor sets the color of the system bars.
func (t *Toplevel) SetThemeColor(c color.NRGBA) error {
	t.themeColor = c
	return t.postConfiguration()
}

func (t *Toplevel) postConfiguration() error {
	if t.activity == nil {
		return nil
	}
	return t.activity.PostWindowConfiguration(argb(t.themeColor), t.fullscreen)
}

// argb packs c the way android.graphics.Color does.
func argb(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// StartActivityForResult starts the activity described by intent and
// calls done on the main loop with its result. Cancelling ctx finishes the
// started activity and completes the request with ErrCancelled.
func (t *Toplevel) StartActivityForResult(ctx context.Context, intent jni.Object, done func(ActivityResult, error)) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if t.activity == nil {
		return ErrNotBound
	}
	code, err := t.allocRequest()
	if err != nil {
		return err
	}
	if err := t.activity.StartActivityForResult(intent, code); err != nil {
		return fmt.Errorf("app: start activity: %w", err)
	}
	req := &activityRequest{done: done}
	if t.requests == nil {
		t.requests = make(map[int32]*activityRequest)
	}
	t.requests[code] = req
	req.stop = context.AfterFunc(ctx, func() {
		t.d.runOnMain(func() {
			t.cancelRequest(code)
		})
	})
	return nil
}

func (t *Toplevel) allocRequest() (int32, error) {
	for range requestCodeMask + 1 {
		t.nextRequest = (t.nextRequest + 1) & requestCodeMask
		if _, busy := t.requests[t.nextRequest]; !busy {
			return t.nextRequest, nil
		}
	}
	return 0, fmt.Errorf("app: too many pending activity requests")
}

func (t *Toplevel) cancelRequest(code int32) {
	req, ok := t.requests[code]
	if !ok {
		return
	}
	delete(t.requests, code)
	if t.activity != nil {
		if err := t.activity.FinishActivity(code); err != nil {
			slog.Warn("app: failed to finish cancelled activity", "code", code, "err", err)
		}
	}
	req.done(ActivityResult{}, ErrCancelled)
}

func (t *Toplevel) onActivityResult(code, resultCode int32, data *jni.GlobalRef) {
	req, ok := t.requests[code]
	if !ok {
		slog.Warn("app: result for unknown activity request", "id", uint64(t.id), "code", code)
		releaseGlobal(data)
		return
	}
	delete(t.requests, code)
	req.stop()
	req.done(ActivityResult{Code: resultCode, Data: data}, nil)
}

func (t *Toplevel) onStateChange(focused, fullscreen bool) {
	t.focused = focused
	t.fullscreen = fullscreen
	var st system.State
	if focused {
		st |= system.StateFocused
	}
	if fullscreen {
		st |= system.StateFullscreen
	}
	t.d.emit(t.Surface, system.StateEvent{State: st})
	if focused {
		t.d.seat.setFocus(t.Surface)
	} else {
		t.d.seat.blur(t.Surface)
	}
}

func (t *Toplevel) onConfigurationChange() {
	size := t.Size()
	t.d.emit(t.Surface, system.ConfigureEvent{Width: size.X, Height: size.Y, Scale: t.scale})
	t.Invalidate(image.Rectangle{Max: size})
}

func (t *Toplevel) onBackPress() {
	t.d.emit(t.Surface, system.DeleteEvent{})
}

// onDestroy handles an activity the platform destroyed. The toolkit is
// told first and may destroy the toplevel itself.
func (t *Toplevel) onDestroy() {
	if t.visible {
		t.d.emit(t.Surface, system.DeleteEvent{})
	}
	if !t.destroyed {
		t.destroy(true)
	}
}

// teardown runs from destroy after the children are gone.
func (t *Toplevel) teardown() {
	t.transientFor = nil
	t.d.forEachToplevel(func(o *Toplevel) {
		if o.transientFor == t {
			o.transientFor = nil
		}
	})
	requests := t.requests
	t.requests = nil
	for _, req := range requests {
		req.stop()
		req.done(ActivityResult{}, ErrDestroyed)
	}
	if t.activity != nil {
		t.activity.Release()
		t.activity = nil
	}
}

func (d *Display) forEachToplevel(f func(t *Toplevel)) {
	var tops []*Toplevel
	d.mu.Lock()
	d.surfaces.Range(func(_ handle.ID, s *Surface) bool {
		if s.top != nil {
			tops = append(tops, s.top)
		}
		return true
	})
	d.mu.Unlock()
	for _, t := range tops {
		f(t)
	}
}

// releaseGlobal drops a global reference outside of any JNI scope.
func releaseGlobal(r *jni.GlobalRef) {
	if r == nil {
		return
	}
	m, err := jni.Current()
	if err != nil {
		return
	}
	if err := m.Do(func(env jni.Env) error {
		r.Release(env)
		return nil
	}); err != nil {
		slog.Warn("app: failed to release reference", "err", err)
	}
}
