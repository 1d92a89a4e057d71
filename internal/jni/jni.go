// SPDX-License-Identifier: Unlicense OR MIT

// Package jni gives native code paths on any thread access to the Java VM.
//
// The VM and Env interfaces abstract the JNI invocation and native
// interfaces; on Android they are backed by cgo, elsewhere tests supply
// fakes from package jnitest.
package jni

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	// Object is a local or global JNI reference.
	Object uintptr
	// Class is a reference to a java.lang.Class.
	Class Object
	// MethodID identifies a Java method.
	MethodID uintptr
	// FieldID identifies a Java field.
	FieldID uintptr
	// Value is a JNI argument. All JNI types fit in 64 bits.
	Value uint64
)

var (
	// ErrDetached is returned by VM.GetEnv when the calling thread is
	// not attached to the VM.
	ErrDetached = errors.New("jni: thread not attached")
	// ErrNotInitialized is returned when no VM is recorded, either before
	// Init or after Shutdown.
	ErrNotInitialized = errors.New("jni: not initialized")
)

// VM is the JNI invocation interface.
type VM interface {
	// GetEnv returns the environment of the calling thread, or
	// ErrDetached.
	GetEnv() (Env, error)
	AttachCurrentThread(name string) (Env, error)
	DetachCurrentThread() error
}

// Env is the per-thread JNI interface. Call methods report a pending Java
// exception as an *Exception and clear it.
type Env interface {
	FindClass(name string) (Class, error)
	GetObjectClass(obj Object) Class
	GetMethodID(cls Class, name, sig string) (MethodID, error)
	GetStaticMethodID(cls Class, name, sig string) (MethodID, error)
	GetFieldID(cls Class, name, sig string) (FieldID, error)
	GetStaticFieldID(cls Class, name, sig string) (FieldID, error)
	GetStaticIntField(cls Class, f FieldID) int32
	GetStaticObjectField(cls Class, f FieldID) Object
	GetLongField(obj Object, f FieldID) int64
	GetObjectField(obj Object, f FieldID) Object

	NewGlobalRef(obj Object) Object
	DeleteGlobalRef(obj Object)
	DeleteLocalRef(obj Object)
	PushLocalFrame(capacity int) error
	PopLocalFrame(result Object) Object
	EnsureLocalCapacity(capacity int) error

	NewObject(cls Class, ctor MethodID, args ...Value) (Object, error)
	CallVoidMethod(obj Object, m MethodID, args ...Value) error
	CallObjectMethod(obj Object, m MethodID, args ...Value) (Object, error)
	CallBooleanMethod(obj Object, m MethodID, args ...Value) (bool, error)
	CallIntMethod(obj Object, m MethodID, args ...Value) (int32, error)
	CallLongMethod(obj Object, m MethodID, args ...Value) (int64, error)
	CallFloatMethod(obj Object, m MethodID, args ...Value) (float32, error)
	CallStaticObjectMethod(cls Class, m MethodID, args ...Value) (Object, error)

	NewString(s string) (Object, error)
	GoString(str Object) string
	NewByteArray(n int) (Object, error)
	GetByteArrayRegion(arr Object, start int, buf []byte)
	NewIntArray(n int) (Object, error)
	SetIntArrayRegion(arr Object, start int, vals []int32)
	IsInstanceOf(obj Object, cls Class) bool
	IsAssignableFrom(sub, sup Class) bool
	IsSameObject(a, b Object) bool

	Throw(thr Object) error
	ExceptionOccurred() Object
	ExceptionClear()
}

// Exception describes a Java exception raised by a JNI call.
type Exception struct {
	// Class is the binary name of the exception class.
	Class   string
	Message string
}

func (e *Exception) Error() string {
	if e.Message == "" {
		return e.Class
	}
	return e.Class + ": " + e.Message
}

// Bool converts b to a JNI boolean argument.
func Bool(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// Int converts i to a JNI int argument.
func Int(i int32) Value {
	return Value(uint32(i))
}

// Long converts i to a JNI long argument.
func Long(i int64) Value {
	return Value(uint64(i))
}

// Float converts f to a JNI float argument.
func Float(f float32) Value {
	return Value(math.Float32bits(f))
}

// TakeException returns the pending exception, if any, and clears it. The
// returned local reference belongs to the caller.
func TakeException(e Env) Object {
	thr := e.ExceptionOccurred()
	if thr != 0 {
		e.ExceptionClear()
	}
	return thr
}

// CheckException converts the pending exception, if any, into an
// *Exception and clears it.
func CheckException(e Env) error {
	thr := TakeException(e)
	if thr == 0 {
		return nil
	}
	defer e.DeleteLocalRef(thr)
	return Describe(e, thr)
}

// Describe builds an *Exception from the throwable thr.
func Describe(e Env, thr Object) *Exception {
	ex := new(Exception)
	cls := e.GetObjectClass(thr)
	defer e.DeleteLocalRef(Object(cls))
	if classClass, err := e.FindClass("java/lang/Class"); err == nil {
		if getName, err := e.GetMethodID(classClass, "getName", "()Ljava/lang/String;"); err == nil {
			if name, err := e.CallObjectMethod(Object(cls), getName); err == nil {
				ex.Class = e.GoString(name)
				e.DeleteLocalRef(name)
			}
		}
		e.DeleteLocalRef(Object(classClass))
	}
	if getMessage, err := e.GetMethodID(cls, "getMessage", "()Ljava/lang/String;"); err == nil {
		if msg, err := e.CallObjectMethod(thr, getMessage); err == nil && msg != 0 {
			ex.Message = e.GoString(msg)
			e.DeleteLocalRef(msg)
		}
	}
	return ex
}

// Manager hands out per-thread environments and attaches threads unknown
// to the VM on demand.
//
// Only environments of threads the Manager attached are cached, keyed by OS
// thread; the entry is dropped when the Guard that attached the thread is
// released. Threads attached elsewhere are asked for their environment on
// every call, since their ids may be reused once they exit.
type Manager struct {
	vm     VM
	name   string
	closed atomic.Bool

	mu   sync.Mutex
	envs map[int]Env
}

// Guard is the result of Manager.Scoped. Release detaches the thread if
// and only if Scoped attached it.
type Guard struct {
	Env         Env
	NeedsDetach bool

	m   *Manager
	tid int
}

var current atomic.Pointer[Manager]

// NewManager returns a Manager for vm. Threads it attaches are named name.
func NewManager(vm VM, name string) *Manager {
	return &Manager{vm: vm, name: name, envs: make(map[int]Env)}
}

// Init records vm as the process-wide VM and returns its Manager.
func Init(vm VM, name string) *Manager {
	m := NewManager(vm, name)
	if old := current.Swap(m); old != nil {
		old.closed.Store(true)
	}
	return m
}

// Shutdown forgets the process-wide VM. Every later call through its
// Manager fails with ErrNotInitialized.
func Shutdown() {
	if m := current.Swap(nil); m != nil {
		m.closed.Store(true)
	}
}

// Current returns the process-wide Manager recorded by Init.
func Current() (*Manager, error) {
	m := current.Load()
	if m == nil {
		return nil, ErrNotInitialized
	}
	return m, nil
}

// Env returns the calling thread's environment. It does not attach: a
// thread unknown to the VM gets ErrDetached. The caller must be locked to
// its OS thread.
func (m *Manager) Env() (Env, error) {
	if m.closed.Load() {
		return nil, ErrNotInitialized
	}
	tid := threadID()
	if e := m.cached(tid); e != nil {
		return e, nil
	}
	e, err := m.vm.GetEnv()
	if err != nil {
		slog.Error("jni: unable to get env for the current thread, is it attached?", "tid", tid, "err", err)
		return nil, err
	}
	return e, nil
}

// Scoped returns the calling thread's environment, attaching the thread if
// needed. The caller must be locked to its OS thread until the Guard is
// released.
func (m *Manager) Scoped() (Guard, error) {
	if m.closed.Load() {
		return Guard{}, ErrNotInitialized
	}
	tid := threadID()
	if e := m.cached(tid); e != nil {
		return Guard{Env: e, m: m, tid: tid}, nil
	}
	e, err := m.vm.GetEnv()
	switch {
	case err == nil:
		return Guard{Env: e, m: m, tid: tid}, nil
	case errors.Is(err, ErrDetached):
		e, err = m.vm.AttachCurrentThread(m.name)
		if err != nil {
			slog.Error("jni: unable to attach current thread to the VM", "tid", tid, "err", err)
			return Guard{}, fmt.Errorf("jni: attach: %w", err)
		}
		m.store(tid, e)
		return Guard{Env: e, NeedsDetach: true, m: m, tid: tid}, nil
	default:
		slog.Error("jni: failed to get thread env", "tid", tid, "err", err)
		return Guard{}, err
	}
}

// Release detaches the thread if Scoped attached it.
func (g *Guard) Release() {
	if !g.NeedsDetach {
		return
	}
	g.NeedsDetach = false
	g.m.mu.Lock()
	delete(g.m.envs, g.tid)
	g.m.mu.Unlock()
	if err := g.m.vm.DetachCurrentThread(); err != nil {
		slog.Error("jni: unable to detach thread from the VM", "tid", g.tid, "err", err)
	}
}

// Do runs f with an environment for the calling goroutine's OS thread,
// attaching it for the duration of f if necessary.
func (m *Manager) Do(f func(env Env) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	g, err := m.Scoped()
	if err != nil {
		return err
	}
	defer g.Release()
	return f(g.Env)
}

// Hold attaches the calling thread, if needed, until release is called on
// the same thread. Long-lived threads making many short JNI calls hold
// themselves so that Do does not attach and detach on every call. The
// caller must be locked to its OS thread. On failure the error is logged
// and release does nothing.
func (m *Manager) Hold() (release func()) {
	g, err := m.Scoped()
	if err != nil {
		slog.Error("jni: unable to hold thread", "err", err)
		return func() {}
	}
	return g.Release
}

// Attached returns the number of threads currently attached by m.
func (m *Manager) Attached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.envs)
}

func (m *Manager) cached(tid int) Env {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envs[tid]
}

func (m *Manager) store(tid int, e Env) {
	m.mu.Lock()
	m.envs[tid] = e
	m.mu.Unlock()
}
