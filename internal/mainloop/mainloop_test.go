// SPDX-License-Identifier: Unlicense OR MIT

package mainloop

import (
	"context"
	"reflect"
	"testing"

	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/jni/jnitest"
)

func TestPriorityOrder(t *testing.T) {
	l := New()
	var got []string
	add := func(p Priority, name string) {
		l.Invoke(p, func() { got = append(got, name) })
	}
	add(PriorityDefaultIdle, "idle")
	add(PriorityLow, "low")
	add(PriorityDefault, "default1")
	add(PriorityRedraw, "redraw")
	add(PriorityHigh, "high")
	add(PriorityDefault, "default2")
	for l.Iterate() {
	}
	want := []string{"high", "default1", "default2", "redraw", "idle", "low"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestIdleYieldsToNewWork(t *testing.T) {
	l := New()
	var got []string
	l.Invoke(PriorityDefault, func() {
		got = append(got, "first")
		// Queued while the idle task is already pending.
		l.Invoke(PriorityDefault, func() { got = append(got, "second") })
	})
	l.Invoke(PriorityDefaultIdle, func() { got = append(got, "idle") })
	for l.Iterate() {
	}
	want := []string{"first", "second", "idle"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestRunSync(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- l.Run(ctx) }()
	if l.InLoop() {
		t.Error("InLoop true outside the loop")
	}
	var inLoop, nested bool
	l.Sync(func() {
		inLoop = l.InLoop()
		// Sync from the loop runs inline instead of deadlocking.
		l.Sync(func() { nested = true })
	})
	if !inLoop || !nested {
		t.Errorf("inLoop=%v nested=%v; want both true", inLoop, nested)
	}
	cancel()
	if err := <-stopped; err != context.Canceled {
		t.Errorf("Run returned %v; want context.Canceled", err)
	}
}

func TestRunHoldsThread(t *testing.T) {
	vm := jnitest.NewVM()
	m := jni.NewManager(vm, "loop")
	l := New()
	l.OnRun(m.Hold)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- l.Run(ctx) }()
	l.Sync(func() {
		for i := 0; i < 10; i++ {
			err := m.Do(func(env jni.Env) error {
				_, err := env.FindClass("java/lang/String")
				return err
			})
			if err != nil {
				t.Error(err)
			}
		}
	})
	if vm.Attaches != 1 || vm.Detaches != 0 {
		t.Errorf("10 calls on the loop: attaches=%d detaches=%d; want 1 and 0", vm.Attaches, vm.Detaches)
	}
	cancel()
	<-stopped
	if vm.Detaches != 1 {
		t.Errorf("detaches=%d after Run returned; want 1", vm.Detaches)
	}
}
