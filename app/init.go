// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/GNOME/gtk-sub015/app/config"
	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/mainloop"
	"github.com/GNOME/gtk-sub015/internal/refcache"
)

var (
	backend atomic.Pointer[javaBackend]
	natives struct {
		dragIdentifier jni.FieldID
		runnableRun    jni.MethodID
	}

	initMu    sync.Mutex
	initHooks []func(d *Display)
)

// Current returns the display of the process, or nil before the platform
// initialized the backend.
func Current() *Display {
	if b := backend.Load(); b != nil {
		return b.d
	}
	return nil
}

// OnInit arranges for f to run on the main loop once the display exists.
func OnInit(f func(d *Display)) {
	initMu.Lock()
	defer initMu.Unlock()
	if d := Current(); d != nil {
		d.loop.Invoke(mainloop.PriorityDefault, func() { f(d) })
		return
	}
	initHooks = append(initHooks, f)
}

// ConfigAsset names the application asset holding the configuration.
const ConfigAsset = "gdk-android.toml"

// errNoConfig is returned by a configuration source holding nothing.
var errNoConfig = errors.New("app: no configuration")

// readConfig loads the configuration from the first source that holds one.
// Without any, the defaults apply.
func readConfig(sources ...func() (io.ReadCloser, error)) (config.Config, error) {
	for _, open := range sources {
		r, err := open()
		if errors.Is(err, errNoConfig) {
			continue
		}
		if err != nil {
			return config.Config{}, fmt.Errorf("app: config: %w", err)
		}
		defer r.Close()
		return config.Load(r)
	}
	return config.Default(), nil
}

// platformInit carries what the platform hands to the first
// initialization.
type platformInit struct {
	vm                jni.VM
	loader, activity  jni.Object
	cfg               config.Config
	// register binds the native methods of the GlibContext class glib and
	// of the cached view classes.
	register          func(glib jni.Class, cache *refcache.Cache) error
	windowFromSurface func(env jni.Env, surface jni.Object) (NativeWindow, error)
}

// start brings the backend up from the platform thread env belongs to.
// The backend is published and its main loop started only once the native
// methods are registered; when any step fails, every earlier step is
// undone and the process is left as before the call. The loop stops when
// ctx is done.
func start(ctx context.Context, env jni.Env, in platformInit) (b *javaBackend, err error) {
	var undo []func()
	defer func() {
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
		}
	}()
	jvm := jni.Init(in.vm, in.cfg.ThreadName)
	undo = append(undo, jni.Shutdown)
	cache, err := refcache.Init(env, in.loader)
	if err != nil {
		return nil, err
	}
	undo = append(undo, func() { refcache.Teardown(env) })
	glib, err := resolveNatives(env, in.loader, cache)
	if err != nil {
		return nil, err
	}
	defer env.DeleteLocalRef(jni.Object(glib))

	b = newJavaBackend(jvm, cache)
	b.windowFromSurface = in.windowFromSurface
	if err = b.setLatestActivity(env, in.activity); err != nil {
		return nil, err
	}
	undo = append(undo, func() { b.latest.Release(env) })
	if err = in.register(glib, cache); err != nil {
		return nil, err
	}

	loop := mainloop.New()
	// The loop calls into Java constantly; keep its thread attached.
	loop.OnRun(jvm.Hold)
	b.d = NewDisplay(loop, WithConfig(in.cfg), WithPlatform(b))

	initMu.Lock()
	backend.Store(b)
	for _, f := range initHooks {
		loop.Invoke(mainloop.PriorityDefault, func() { f(b.d) })
	}
	initHooks = nil
	initMu.Unlock()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("app: main loop stopped", "err", err)
		}
	}()
	return b, nil
}

// resolveNatives resolves the members the exported callbacks read and
// returns a local reference to org.gtk.android.GlibContext.
func resolveNatives(env jni.Env, loader jni.Object, cache *refcache.Cache) (jni.Class, error) {
	f, err := env.GetFieldID(cache.DragShadow.Identifier, "nativeIdentifier", "J")
	if err != nil {
		return 0, err
	}
	natives.dragIdentifier = f
	runnable, err := env.FindClass("java/lang/Runnable")
	if err != nil {
		return 0, err
	}
	defer env.DeleteLocalRef(jni.Object(runnable))
	if natives.runnableRun, err = env.GetMethodID(runnable, "run", "()V"); err != nil {
		return 0, err
	}
	cl, err := env.FindClass("java/lang/ClassLoader")
	if err != nil {
		return 0, err
	}
	defer env.DeleteLocalRef(jni.Object(cl))
	loadClass, err := env.GetMethodID(cl, "loadClass", "(Ljava/lang/String;)Ljava/lang/Class;")
	if err != nil {
		return 0, err
	}
	name, err := env.NewString("org.gtk.android.GlibContext")
	if err != nil {
		return 0, err
	}
	defer env.DeleteLocalRef(name)
	glib, err := env.CallObjectMethod(loader, loadClass, jni.Value(name))
	if err != nil {
		return 0, err
	}
	if glib == 0 {
		return 0, errors.New("app: GlibContext not found")
	}
	return jni.Class(glib), nil
}
