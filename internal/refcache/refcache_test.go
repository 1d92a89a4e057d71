// SPDX-License-Identifier: Unlicense OR MIT

package refcache

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/jni/jnitest"
)

func newVM(t *testing.T) (*jnitest.VM, *jnitest.Env, jni.Object) {
	t.Helper()
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
	vm := jnitest.NewVM()
	vm.Lenient = true
	vm.Missing = make(map[string]bool)
	vm.Define("android/view/PointerIcon", vm.Class("java/lang/Object")).
		StaticField("TYPE_HAND", "I", int32(1002)).
		StaticField("TYPE_TEXT", "I", int32(1008)).
		StaticField("TYPE_NULL", "I", int32(0))
	env := vm.Attach()
	loader := vm.Class("java/lang/ClassLoader").NewObject()
	return vm, env, loader
}

func TestLoad(t *testing.T) {
	vm, env, loader := newVM(t)
	c, err := Load(env, loader)
	if err != nil {
		t.Fatal(err)
	}
	if vm.Globals() == 0 {
		t.Fatal("no global references held")
	}
	if n := vm.Locals(); n != 0 {
		t.Errorf("%d local references leaked", n)
	}
	if vm.Frames() != 1 {
		t.Errorf("local frame left pushed")
	}
	if c.Toplevel.IdentifierKey == 0 || c.Bitmap.ARGB8888 == 0 {
		t.Error("constant objects not resolved")
	}
	if c.Surface.Reposition == 0 || c.MotionEvent.GetAxisValue == 0 || c.InputDevice.GetDevice == 0 {
		t.Error("methods not resolved")
	}
	c.Release(env)
	if n := vm.Globals(); n != 0 {
		t.Errorf("%d global references after Release", n)
	}
}

func TestCursorTypes(t *testing.T) {
	_, env, loader := newVM(t)
	c, err := Load(env, loader)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release(env)
	tests := []struct {
		name string
		want int32
		ok   bool
	}{
		{"pointer", 1002, true},
		{"text", 1008, true},
		{"none", 0, true},
		{"move", 0, false},
		{"not-allowed", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := c.CursorType(tc.name)
			if got != tc.want || ok != tc.ok {
				t.Errorf("CursorType(%q) = %d, %v; want %d, %v", tc.name, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestLoadFailureReleases(t *testing.T) {
	tests := []struct {
		missing string
		class   string
	}{
		{"org/gtk/android/ToplevelActivity$ToplevelView", "java.lang.ClassNotFoundException"},
		{"android/view/KeyEvent", "java.lang.NoClassDefFoundError"},
		{"android/view/MotionEvent.getPointerId", "java.lang.NoSuchMethodError"},
		{"java/nio/channels/ClosedChannelException", "java.lang.NoClassDefFoundError"},
	}
	for _, tc := range tests {
		t.Run(tc.missing, func(t *testing.T) {
			vm, env, loader := newVM(t)
			vm.Missing[tc.missing] = true
			c, err := Load(env, loader)
			if err == nil {
				c.Release(env)
				t.Fatal("Load succeeded")
			}
			var ex *jni.Exception
			if !errors.As(err, &ex) || ex.Class != tc.class {
				t.Errorf("got error %v; want a %s", err, tc.class)
			}
			if !strings.Contains(err.Error(), "refcache:") {
				t.Errorf("error %q not prefixed", err)
			}
			if n := vm.Globals(); n != 0 {
				t.Errorf("%d global references leaked", n)
			}
			if n := vm.Locals(); n != 0 {
				t.Errorf("%d local references leaked", n)
			}
		})
	}
}

func TestInitTeardown(t *testing.T) {
	vm, env, loader := newVM(t)
	c, err := Init(env, loader)
	if err != nil {
		t.Fatal(err)
	}
	if Get() != c {
		t.Fatal("Get does not return the published cache")
	}
	Teardown(env)
	if Get() != nil {
		t.Error("Get after Teardown is not nil")
	}
	if n := vm.Globals(); n != 0 {
		t.Errorf("%d global references after Teardown", n)
	}
	Teardown(env)
}
