// SPDX-License-Identifier: Unlicense OR MIT

package jni_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/jni/jnitest"
)

func TestEnvDetached(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	m := jni.NewManager(vm, "test")
	if _, err := m.Env(); !errors.Is(err, jni.ErrDetached) {
		t.Errorf("Env on a detached thread: got %v; want ErrDetached", err)
	}
	if vm.Attaches != 0 {
		t.Errorf("Env attached the thread")
	}
}

func TestScopedAttachesOnce(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	m := jni.NewManager(vm, "test")
	g, err := m.Scoped()
	if err != nil {
		t.Fatal(err)
	}
	if !g.NeedsDetach || g.Env == nil {
		t.Fatalf("Scoped on a detached thread: NeedsDetach=%v Env=%v", g.NeedsDetach, g.Env)
	}
	// A nested acquisition on the same thread reuses the attachment.
	inner, err := m.Scoped()
	if err != nil {
		t.Fatal(err)
	}
	if inner.NeedsDetach {
		t.Error("nested Scoped wants to detach")
	}
	inner.Release()
	if vm.Detaches != 0 {
		t.Errorf("nested Release detached the thread")
	}
	g.Release()
	g.Release()
	if vm.Attaches != 1 || vm.Detaches != 1 {
		t.Errorf("attaches=%d detaches=%d; want 1 and 1", vm.Attaches, vm.Detaches)
	}
	if n := m.Attached(); n != 0 {
		t.Errorf("%d cached environments after release; want 0", n)
	}
}

func TestScopedOnAttachedThreadIsCheap(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	vm.Attach()
	m := jni.NewManager(vm, "test")
	for i := 0; i < 10; i++ {
		g, err := m.Scoped()
		if err != nil {
			t.Fatal(err)
		}
		if g.NeedsDetach {
			t.Fatal("Scoped on an attached thread wants to detach")
		}
		g.Release()
	}
	if vm.Attaches != 0 || vm.Detaches != 0 {
		t.Errorf("attaches=%d detaches=%d; want none", vm.Attaches, vm.Detaches)
	}
}

func TestDoOnWorker(t *testing.T) {
	vm := jnitest.NewVM()
	m := jni.NewManager(vm, "worker")
	done := make(chan error)
	go func() {
		done <- m.Do(func(env jni.Env) error {
			_, err := env.FindClass("java/lang/String")
			return err
		})
	}()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if vm.Attaches != 1 || vm.Detaches != 1 {
		t.Errorf("attaches=%d detaches=%d; want 1 and 1", vm.Attaches, vm.Detaches)
	}
}

func TestShutdown(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	vm.Attach()
	m := jni.Init(vm, "test")
	if cur, err := jni.Current(); err != nil || cur != m {
		t.Fatalf("Current = %v, %v", cur, err)
	}
	if _, err := m.Env(); err != nil {
		t.Fatal(err)
	}
	jni.Shutdown()
	if _, err := jni.Current(); !errors.Is(err, jni.ErrNotInitialized) {
		t.Errorf("Current after Shutdown: %v", err)
	}
	if _, err := m.Env(); !errors.Is(err, jni.ErrNotInitialized) {
		t.Errorf("Env after Shutdown: %v", err)
	}
	if _, err := m.Scoped(); !errors.Is(err, jni.ErrNotInitialized) {
		t.Errorf("Scoped after Shutdown: %v", err)
	}
}

func TestLocalFrame(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	env := vm.Attach()
	res, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
		var last jni.Object
		for i := 0; i < 40; i++ {
			if err := fr.Reserve(1); err != nil {
				return 0, err
			}
			s, err := env.NewString("x")
			if err != nil {
				return 0, err
			}
			last = s
		}
		return last, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := env.GoString(res); got != "x" {
		t.Errorf("promoted result = %q", got)
	}
	if vm.Frames() != 1 {
		t.Errorf("frame left pushed")
	}
	if n := vm.Locals(); n != 1 {
		t.Errorf("%d locals survive the frame; want only the result", n)
	}
	if vm.MaxCapacity < 40 {
		t.Errorf("frame capacity grew to %d; want at least 40", vm.MaxCapacity)
	}
}

func TestLocalFrameError(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	env := vm.Attach()
	vm.FailEnsureCapacity = true
	_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
		return 0, fr.Reserve(100)
	})
	if err == nil {
		t.Fatal("Reserve beyond capacity succeeded")
	}
	if vm.Frames() != 1 || vm.Locals() != 0 {
		t.Errorf("frames=%d locals=%d after failed frame", vm.Frames(), vm.Locals())
	}
}

func TestCheckException(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	vm.Define("java/io/IOException", vm.Class("java/lang/Throwable"))
	env := vm.Attach()
	if err := jni.CheckException(env); err != nil {
		t.Fatalf("no pending exception: %v", err)
	}
	env.ThrowNew("java/io/IOException", "disk on fire")
	err := jni.CheckException(env)
	var ex *jni.Exception
	if !errors.As(err, &ex) {
		t.Fatalf("got %v; want *jni.Exception", err)
	}
	if ex.Class != "java.io.IOException" || ex.Message != "disk on fire" {
		t.Errorf("got %+v", ex)
	}
	if _, _, pending := env.Pending(); pending {
		t.Error("exception still pending")
	}
}

func TestGlobalRef(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	env := vm.Attach()
	s, _ := env.NewString("peer")
	r := jni.NewGlobalRef(env, s)
	if vm.Globals() != 1 {
		t.Fatalf("Globals = %d; want 1", vm.Globals())
	}
	r.Release(env)
	r.Release(env)
	if vm.Globals() != 0 || r.Object() != 0 {
		t.Errorf("Globals=%d Object=%v after release", vm.Globals(), r.Object())
	}
	var nilRef *jni.GlobalRef
	nilRef.Release(env)
	if jni.NewGlobalRef(env, 0) != nil {
		t.Error("NewGlobalRef(0) != nil")
	}
}

func TestForeignThreadNotCached(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := jnitest.NewVM()
	vm.Attach()
	m := jni.NewManager(vm, "test")
	if _, err := m.Env(); err != nil {
		t.Fatal(err)
	}
	if n := m.Attached(); n != 0 {
		t.Fatalf("%d environments cached for a thread the VM attached; want 0", n)
	}
	// The thread leaves the VM behind the Manager's back, as a thread whose
	// id is later reused would.
	if err := vm.DetachCurrentThread(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Env(); !errors.Is(err, jni.ErrDetached) {
		t.Errorf("Env after foreign detach: got %v; want ErrDetached", err)
	}
	g, err := m.Scoped()
	if err != nil {
		t.Fatal(err)
	}
	if !g.NeedsDetach || vm.Attaches != 1 {
		t.Errorf("Scoped after foreign detach: NeedsDetach=%v attaches=%d; want true and 1", g.NeedsDetach, vm.Attaches)
	}
	g.Release()
	if vm.Detaches != 2 {
		t.Errorf("detaches=%d; want 2", vm.Detaches)
	}
}
