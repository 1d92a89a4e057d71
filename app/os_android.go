// SPDX-License-Identifier: Unlicense OR MIT

package app

/*
#cgo LDFLAGS: -landroid

#include <jni.h>

int gdk_register_natives(JNIEnv *env, jclass glib, jclass surface, jclass toplevel);
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"io"
	"os"
	"unsafe"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
	glog "github.com/GNOME/gtk-sub015/internal/log"
	"github.com/GNOME/gtk-sub015/internal/mainloop"
	"github.com/GNOME/gtk-sub015/internal/refcache"
)

// ConfigEnv names the environment variable holding the path of a
// configuration file that takes precedence over the packaged asset.
const ConfigEnv = "GDK_ANDROID_CONFIG"

func jobj(o C.jobject) jni.Object {
	return jni.Object(unsafe.Pointer(o))
}

func envOf(env *C.JNIEnv) jni.Env {
	return jni.EnvFrom(unsafe.Pointer(env))
}

//export gdk_android_initialize
func gdk_android_initialize(env *C.JNIEnv, loader, activity C.jobject) C.jboolean {
	if err := initialize(env, jobj(loader), jobj(activity)); err != nil {
		slog.Error("app: backend initialization failed", "err", err)
		return C.JNI_FALSE
	}
	return C.JNI_TRUE
}

func initialize(cenv *C.JNIEnv, loader, activity jni.Object) error {
	env := envOf(cenv)
	if b := backend.Load(); b != nil {
		return b.setLatestActivity(env, activity)
	}
	cfg, err := readConfig(
		func() (io.ReadCloser, error) {
			path := os.Getenv(ConfigEnv)
			if path == "" {
				return nil, errNoConfig
			}
			return os.Open(path)
		},
		func() (io.ReadCloser, error) {
			return openAsset(cenv, env, activity, ConfigAsset)
		},
	)
	if err != nil {
		return err
	}
	level, err := glog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("app: config: %w", err)
	}
	glog.SetLevel(level)

	vm, err := jni.GetJavaVM(unsafe.Pointer(cenv))
	if err != nil {
		return err
	}
	_, err = start(context.Background(), env, platformInit{
		vm:       vm,
		loader:   loader,
		activity: activity,
		cfg:      cfg,
		register: func(glib jni.Class, cache *refcache.Cache) error {
			if rc := C.gdk_register_natives(cenv, C.jclass(unsafe.Pointer(glib)), C.jclass(unsafe.Pointer(cache.Surface.Class)), C.jclass(unsafe.Pointer(cache.Toplevel.Class))); rc != 0 {
				return errors.Join(errors.New("app: RegisterNatives failed"), jni.CheckException(env))
			}
			return nil
		},
		windowFromSurface: windowFromSurface,
	})
	return err
}

// current returns the backend for a native callback.
func current(callback string) *javaBackend {
	b := backend.Load()
	if b == nil {
		slog.Error("app: native callback before initialization", "callback", callback)
	}
	return b
}

//export gdk_glib_run_on_main
func gdk_glib_run_on_main(cenv *C.JNIEnv, class C.jclass, runnable C.jobject) {
	b := current("runOnMain")
	if b == nil {
		return
	}
	r := jni.NewGlobalRef(envOf(cenv), jobj(runnable))
	b.d.loop.Invoke(mainloop.PriorityDefault, func() {
		err := b.jvm.Do(func(env jni.Env) error {
			defer r.Release(env)
			return env.CallVoidMethod(r.Object(), natives.runnableRun)
		})
		if err != nil {
			slog.Error("app: runnable failed", "err", err)
		}
	})
}

//export gdk_surface_bind_native
func gdk_surface_bind_native(cenv *C.JNIEnv, this C.jobject, id C.jlong) {
	if b := current("bindNative"); b != nil {
		b.bindSurface(envOf(cenv), jobj(this), handle.ID(id))
	}
}

// withSurfaceID runs f with the identifier of the Surface view this.
func withSurfaceID(callback string, cenv *C.JNIEnv, this C.jobject, f func(b *javaBackend, env jni.Env, id handle.ID)) {
	b := current(callback)
	if b == nil {
		return
	}
	env := envOf(cenv)
	f(b, env, b.surfaceID(env, jobj(this)))
}

//export gdk_surface_on_attach
func gdk_surface_on_attach(cenv *C.JNIEnv, this C.jobject) {
	withSurfaceID("notifyAttached", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyAttached(id)
	})
}

//export gdk_surface_on_detach
func gdk_surface_on_detach(cenv *C.JNIEnv, this C.jobject) {
	withSurfaceID("notifyDetached", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyDetached(id)
	})
}

//export gdk_surface_on_layout_surface
func gdk_surface_on_layout_surface(cenv *C.JNIEnv, this C.jobject, width, height C.jint, scale C.jfloat) {
	withSurfaceID("notifyLayoutSurface", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyLayoutSurface(id, int(width), int(height), float64(scale))
	})
}

//export gdk_surface_on_layout_position
func gdk_surface_on_layout_position(cenv *C.JNIEnv, this C.jobject, x, y C.jint) {
	withSurfaceID("notifyLayoutPosition", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyLayoutPosition(id, int(x), int(y))
	})
}

//export gdk_surface_on_dnd_start_failed
func gdk_surface_on_dnd_start_failed(cenv *C.JNIEnv, this C.jobject, ident C.jobject) {
	b := current("notifyDNDStartFailed")
	if b == nil {
		return
	}
	id := envOf(cenv).GetLongField(jobj(ident), natives.dragIdentifier)
	b.d.NotifyDragStartFailed(handle.ID(id))
}

//export gdk_surface_on_motion_event
func gdk_surface_on_motion_event(cenv *C.JNIEnv, this C.jobject, stream C.jint, event C.jobject) {
	withSurfaceID("notifyMotionEvent", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		ev, err := b.readMotionEvent(env, jobj(event), int32(stream))
		if err != nil {
			slog.Error("app: unreadable motion event", "id", uint64(id), "err", err)
			return
		}
		b.d.NotifyMotionEvent(id, ev)
	})
}

//export gdk_surface_on_key_event
func gdk_surface_on_key_event(cenv *C.JNIEnv, this C.jobject, event C.jobject) {
	withSurfaceID("notifyKeyEvent", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		ev, err := b.readKeyEvent(env, jobj(event))
		if err != nil {
			slog.Error("app: unreadable key event", "id", uint64(id), "err", err)
			return
		}
		b.d.NotifyKeyEvent(id, ev)
	})
}

//export gdk_surface_on_drag_event
func gdk_surface_on_drag_event(cenv *C.JNIEnv, this C.jobject, event C.jobject) C.jboolean {
	accepted := false
	withSurfaceID("notifyDragEvent", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		ev, err := b.readDragEvent(env, jobj(event))
		if err != nil {
			slog.Error("app: unreadable drag event", "id", uint64(id), "err", err)
			return
		}
		accepted = b.d.NotifyDragEvent(id, ev)
	})
	if accepted {
		return C.JNI_TRUE
	}
	return C.JNI_FALSE
}

//export gdk_surface_on_visibility
func gdk_surface_on_visibility(cenv *C.JNIEnv, this C.jobject, visible C.jboolean) {
	withSurfaceID("notifyVisibility", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyVisibility(id, visible == C.JNI_TRUE)
	})
}

//export gdk_toplevel_bind_native
func gdk_toplevel_bind_native(cenv *C.JNIEnv, this C.jobject, id C.jlong) {
	if b := current("bindNative"); b != nil {
		b.bindToplevel(envOf(cenv), jobj(this), handle.ID(id))
	}
}

// withToplevelID runs f with the identifier of the activity this.
func withToplevelID(callback string, cenv *C.JNIEnv, this C.jobject, f func(b *javaBackend, env jni.Env, id handle.ID)) {
	b := current(callback)
	if b == nil {
		return
	}
	env := envOf(cenv)
	f(b, env, b.toplevelID(env, jobj(this)))
}

//export gdk_toplevel_on_configuration_change
func gdk_toplevel_on_configuration_change(cenv *C.JNIEnv, this C.jobject) {
	withToplevelID("notifyConfigurationChange", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyConfigurationChange(id)
	})
}

//export gdk_toplevel_on_state_change
func gdk_toplevel_on_state_change(cenv *C.JNIEnv, this C.jobject, focused, fullscreen C.jboolean) {
	withToplevelID("notifyStateChange", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyStateChange(id, focused == C.JNI_TRUE, fullscreen == C.JNI_TRUE)
	})
}

//export gdk_toplevel_on_back_press
func gdk_toplevel_on_back_press(cenv *C.JNIEnv, this C.jobject) {
	withToplevelID("notifyOnBackPress", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyBackPress(id)
	})
}

//export gdk_toplevel_on_destroy
func gdk_toplevel_on_destroy(cenv *C.JNIEnv, this C.jobject) {
	withToplevelID("notifyDestroy", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyDestroy(id)
	})
}

//export gdk_toplevel_on_activity_result
func gdk_toplevel_on_activity_result(cenv *C.JNIEnv, this C.jobject, request, result C.jint, data C.jobject) {
	withToplevelID("notifyActivityResult", cenv, this, func(b *javaBackend, env jni.Env, id handle.ID) {
		b.d.NotifyActivityResult(id, int32(request), int32(result), jni.NewGlobalRef(env, jobj(data)))
	})
}
