// SPDX-License-Identifier: Unlicense OR MIT

// Package jnitest provides an in-memory Java VM for testing code written
// against package jni.
//
// The fake tracks local frames and global references so tests can assert
// that no reference leaks, and dispatches method calls to Go functions
// registered on fake classes.
package jnitest

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/GNOME/gtk-sub015/internal/jni"
)

// Method implements a fake Java method. A non-zero thrown object becomes
// the pending exception.
type Method func(env *Env, this jni.Object, args []jni.Value) (ret jni.Value, thrown jni.Object)

// ClassDef is a fake Java class.
type ClassDef struct {
	Name  string
	Super *ClassDef

	vm      *VM
	self    *object
	methods map[string]jni.MethodID
	fields  map[string]jni.FieldID
}

type object struct {
	class *ClassDef
	// For java.lang.Class instances.
	def *ClassDef
	str string
	// For arrays.
	bytes []byte
	ints  []int32
	// Instance fields.
	fields map[jni.FieldID]any
}

type fieldDef struct {
	static bool
	value  any
}

// VM is a fake Java VM. All environments share one heap.
type VM struct {
	mu sync.Mutex

	classes map[string]*ClassDef
	methods map[jni.MethodID]Method
	fields  map[jni.FieldID]*fieldDef

	handles map[jni.Object]*object
	globals map[jni.Object]bool
	frames  [][]jni.Object
	next    uintptr

	attached map[int]*Env
	pending  jni.Object

	// FailEnsureCapacity makes EnsureLocalCapacity fail.
	FailEnsureCapacity bool
	// Lenient defines unknown classes and members on first lookup.
	// Entries in Missing, class names or "Class.member" keys, still fail.
	Lenient bool
	Missing map[string]bool

	Attaches, Detaches int
	MaxCapacity        int
}

// Env is the fake per-thread environment.
type Env struct {
	vm *VM
}

// NewVM returns a VM with the bootstrap classes java.lang.Object,
// java.lang.Class, java.lang.String, java.lang.Throwable and
// java.lang.ClassLoader defined.
func NewVM() *VM {
	vm := &VM{
		classes:  make(map[string]*ClassDef),
		methods:  make(map[jni.MethodID]Method),
		fields:   make(map[jni.FieldID]*fieldDef),
		handles:  make(map[jni.Object]*object),
		globals:  make(map[jni.Object]bool),
		frames:   [][]jni.Object{nil},
		attached: make(map[int]*Env),
	}
	obj := vm.Define("java/lang/Object", nil)
	vm.Define("java/lang/Class", obj).Method("getName", "()Ljava/lang/String;",
		func(env *Env, this jni.Object, args []jni.Value) (jni.Value, jni.Object) {
			o := env.vm.handles[this]
			return jni.Value(env.vm.newLocal(&object{class: env.vm.classes["java/lang/String"], str: strings.ReplaceAll(o.def.Name, "/", ".")})), 0
		})
	obj.self.class = vm.classes["java/lang/Class"]
	vm.Define("java/lang/String", obj)
	vm.Define("java/lang/Throwable", obj).Method("getMessage", "()Ljava/lang/String;",
		func(env *Env, this jni.Object, args []jni.Value) (jni.Value, jni.Object) {
			o := env.vm.handles[this]
			if o.str == "" {
				return 0, 0
			}
			return jni.Value(env.vm.newLocal(&object{class: env.vm.classes["java/lang/String"], str: o.str})), 0
		})
	vm.Define("java/lang/ClassLoader", obj).Method("loadClass", "(Ljava/lang/String;)Ljava/lang/Class;",
		func(env *Env, this jni.Object, args []jni.Value) (jni.Value, jni.Object) {
			name := strings.ReplaceAll(env.GoString(jni.Object(args[0])), ".", "/")
			vm := env.vm
			vm.mu.Lock()
			defer vm.mu.Unlock()
			def, ok := vm.lookupClass(name)
			if !ok {
				return 0, vm.newThrowable("java/lang/ClassNotFoundException", name)
			}
			return jni.Value(vm.newLocal(def.self)), 0
		})
	vm.Define("java/lang/ClassNotFoundException", vm.classes["java/lang/Throwable"])
	vm.Define("java/lang/NoSuchMethodError", vm.classes["java/lang/Throwable"])
	vm.Define("java/lang/NoSuchFieldError", vm.classes["java/lang/Throwable"])
	vm.Define("java/lang/NoClassDefFoundError", vm.classes["java/lang/Throwable"])
	return vm
}

// Define adds a class. Names use slashes, as in JNI.
func (vm *VM) Define(name string, super *ClassDef) *ClassDef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.define(name, super)
}

func (vm *VM) define(name string, super *ClassDef) *ClassDef {
	c := &ClassDef{
		Name:    name,
		Super:   super,
		vm:      vm,
		methods: make(map[string]jni.MethodID),
		fields:  make(map[string]jni.FieldID),
	}
	c.self = &object{class: vm.classes["java/lang/Class"], def: c}
	vm.classes[name] = c
	return c
}

// lookupClass finds a class, defining it in lenient mode.
func (vm *VM) lookupClass(name string) (*ClassDef, bool) {
	if def, ok := vm.classes[name]; ok {
		return def, true
	}
	if !vm.Lenient || vm.Missing[name] {
		return nil, false
	}
	return vm.define(name, vm.classes["java/lang/Object"]), true
}

// Class returns the class named name, or nil.
func (vm *VM) Class(name string) *ClassDef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.classes[name]
}

// Method adds a method to c. Static and instance methods share the
// namespace.
func (c *ClassDef) Method(name, sig string, m Method) *ClassDef {
	c.vm.next++
	id := jni.MethodID(c.vm.next)
	c.methods[name+sig] = id
	c.vm.methods[id] = m
	return c
}

// StaticField adds a static field with value v (int32, or string for
// object fields).
func (c *ClassDef) StaticField(name, sig string, v any) *ClassDef {
	c.vm.next++
	id := jni.FieldID(c.vm.next)
	c.fields[name+sig] = id
	c.vm.fields[id] = &fieldDef{static: true, value: v}
	return c
}

// Field adds an instance field.
func (c *ClassDef) Field(name, sig string) *ClassDef {
	c.vm.next++
	id := jni.FieldID(c.vm.next)
	c.fields[name+sig] = id
	c.vm.fields[id] = &fieldDef{}
	return c
}

// NewObject creates a global reference to a new instance of c.
func (c *ClassDef) NewObject() jni.Object {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()
	return c.vm.newGlobal(&object{class: c, fields: make(map[jni.FieldID]any)})
}

// NewThrowable creates a global reference to an exception of class name
// carrying msg.
func (vm *VM) NewThrowable(name, msg string) jni.Object {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	h := vm.newThrowable(name, msg)
	g := vm.newGlobal(vm.handles[h])
	vm.deleteHandle(h)
	return g
}

// Attach marks the calling OS thread attached, as if the VM had created
// it. The caller must be locked to its OS thread.
func (vm *VM) Attach() *Env {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	e := &Env{vm: vm}
	vm.attached[unix.Gettid()] = e
	return e
}

// Globals returns the number of live global references, excluding those
// created through NewObject and NewThrowable.
func (vm *VM) Globals() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	n := 0
	for h := range vm.globals {
		if vm.globals[h] {
			n++
		}
	}
	return n
}

// Locals returns the number of live local references in all frames.
func (vm *VM) Locals() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	n := 0
	for _, f := range vm.frames {
		n += len(f)
	}
	return n
}

// Frames returns the depth of the local frame stack, 1 when no frame is
// pushed.
func (vm *VM) Frames() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.frames)
}

func (vm *VM) GetEnv() (jni.Env, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if e, ok := vm.attached[unix.Gettid()]; ok {
		return e, nil
	}
	return nil, jni.ErrDetached
}

func (vm *VM) AttachCurrentThread(name string) (jni.Env, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	e := &Env{vm: vm}
	vm.attached[unix.Gettid()] = e
	vm.Attaches++
	return e, nil
}

func (vm *VM) DetachCurrentThread() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	tid := unix.Gettid()
	if _, ok := vm.attached[tid]; !ok {
		return fmt.Errorf("jnitest: thread %d not attached", tid)
	}
	delete(vm.attached, tid)
	vm.Detaches++
	return nil
}

func (vm *VM) newHandle(o *object) jni.Object {
	vm.next++
	h := jni.Object(vm.next)
	vm.handles[h] = o
	return h
}

func (vm *VM) newLocal(o *object) jni.Object {
	h := vm.newHandle(o)
	top := len(vm.frames) - 1
	vm.frames[top] = append(vm.frames[top], h)
	return h
}

// newGlobal creates a global not counted by Globals.
func (vm *VM) newGlobal(o *object) jni.Object {
	h := vm.newHandle(o)
	vm.globals[h] = false
	return h
}

func (vm *VM) deleteHandle(h jni.Object) {
	delete(vm.handles, h)
	for i, f := range vm.frames {
		for j, l := range f {
			if l == h {
				vm.frames[i] = append(f[:j], f[j+1:]...)
				return
			}
		}
	}
}

func (vm *VM) newThrowable(name, msg string) jni.Object {
	def, ok := vm.classes[name]
	if !ok {
		def = vm.classes["java/lang/Throwable"]
	}
	return vm.newLocal(&object{class: def, str: msg})
}

func (vm *VM) throw(name, msg string) {
	vm.pending = vm.newThrowable(name, msg)
}

func (vm *VM) exception() error {
	if vm.pending == 0 {
		return nil
	}
	o := vm.handles[vm.pending]
	vm.pending = 0
	return &jni.Exception{Class: strings.ReplaceAll(o.class.Name, "/", "."), Message: o.str}
}

func (vm *VM) obj(h jni.Object) *object {
	o, ok := vm.handles[h]
	if !ok {
		panic(fmt.Sprintf("jnitest: invalid reference %#x", uintptr(h)))
	}
	return o
}

func (c *ClassDef) lookup(key string, methods bool) (uintptr, bool) {
	for d := c; d != nil; d = d.Super {
		if methods {
			if id, ok := d.methods[key]; ok {
				return uintptr(id), true
			}
		} else if id, ok := d.fields[key]; ok {
			return uintptr(id), true
		}
	}
	return 0, false
}

func (c *ClassDef) isA(other *ClassDef) bool {
	for d := c; d != nil; d = d.Super {
		if d == other {
			return true
		}
	}
	return false
}

func (e *Env) FindClass(name string) (jni.Class, error) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	def, ok := vm.lookupClass(name)
	if !ok {
		vm.throw("java/lang/NoClassDefFoundError", name)
		return 0, vm.exception()
	}
	return jni.Class(vm.newLocal(def.self)), nil
}

func (e *Env) GetObjectClass(obj jni.Object) jni.Class {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return jni.Class(vm.newLocal(vm.obj(obj).class.self))
}

func (e *Env) memberID(cls jni.Class, name, sig string, methods bool) (uintptr, error) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	def := vm.obj(jni.Object(cls)).def
	id, ok := def.lookup(name+sig, methods)
	if !ok && vm.Lenient && !vm.Missing[def.Name+"."+name] {
		id, ok = vm.autoMember(def, name, sig, methods), true
	}
	if !ok {
		if methods {
			vm.throw("java/lang/NoSuchMethodError", name)
		} else {
			vm.throw("java/lang/NoSuchFieldError", name)
		}
		return 0, vm.exception()
	}
	return id, nil
}

// autoMember defines a member for lenient lookups. Methods return zero;
// static int fields are zero and other fields hold their own name as a
// string.
func (vm *VM) autoMember(def *ClassDef, name, sig string, methods bool) uintptr {
	vm.next++
	id := vm.next
	if methods {
		def.methods[name+sig] = jni.MethodID(id)
		vm.methods[jni.MethodID(id)] = func(*Env, jni.Object, []jni.Value) (jni.Value, jni.Object) { return 0, 0 }
		return id
	}
	def.fields[name+sig] = jni.FieldID(id)
	fd := &fieldDef{static: true, value: name}
	if sig == "I" {
		fd.value = int32(0)
	}
	vm.fields[jni.FieldID(id)] = fd
	return id
}

func (e *Env) GetMethodID(cls jni.Class, name, sig string) (jni.MethodID, error) {
	id, err := e.memberID(cls, name, sig, true)
	return jni.MethodID(id), err
}

func (e *Env) GetStaticMethodID(cls jni.Class, name, sig string) (jni.MethodID, error) {
	return e.GetMethodID(cls, name, sig)
}

func (e *Env) GetFieldID(cls jni.Class, name, sig string) (jni.FieldID, error) {
	id, err := e.memberID(cls, name, sig, false)
	return jni.FieldID(id), err
}

func (e *Env) GetStaticFieldID(cls jni.Class, name, sig string) (jni.FieldID, error) {
	return e.GetFieldID(cls, name, sig)
}

func (e *Env) GetStaticIntField(cls jni.Class, f jni.FieldID) int32 {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	v, _ := e.vm.fields[f].value.(int32)
	return v
}

func (e *Env) GetStaticObjectField(cls jni.Class, f jni.FieldID) jni.Object {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	s, ok := vm.fields[f].value.(string)
	if !ok {
		return 0
	}
	return vm.newLocal(&object{class: vm.classes["java/lang/String"], str: s})
}

func (e *Env) GetLongField(obj jni.Object, f jni.FieldID) int64 {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	v, _ := e.vm.obj(obj).fields[f].(int64)
	return v
}

// SetLongField sets an instance field, for test setup.
func (e *Env) SetLongField(obj jni.Object, f jni.FieldID, v int64) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	e.vm.obj(obj).fields[f] = v
}

// SetObjectField sets an instance object field, for test setup.
func (e *Env) SetObjectField(obj jni.Object, f jni.FieldID, v jni.Object) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	e.vm.obj(obj).fields[f] = e.vm.obj(v)
}

func (e *Env) GetObjectField(obj jni.Object, f jni.FieldID) jni.Object {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	o, _ := vm.obj(obj).fields[f].(*object)
	if o == nil {
		return 0
	}
	return vm.newLocal(o)
}

func (e *Env) NewGlobalRef(obj jni.Object) jni.Object {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if obj == 0 {
		return 0
	}
	h := vm.newHandle(vm.obj(obj))
	vm.globals[h] = true
	return h
}

func (e *Env) DeleteGlobalRef(obj jni.Object) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, ok := vm.globals[obj]; !ok {
		panic(fmt.Sprintf("jnitest: DeleteGlobalRef of non-global %#x", uintptr(obj)))
	}
	delete(vm.globals, obj)
	delete(vm.handles, obj)
}

func (e *Env) DeleteLocalRef(obj jni.Object) {
	if obj == 0 {
		return
	}
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, global := vm.globals[obj]; global {
		panic(fmt.Sprintf("jnitest: DeleteLocalRef of global %#x", uintptr(obj)))
	}
	vm.deleteHandle(obj)
}

func (e *Env) PushLocalFrame(capacity int) error {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.frames = append(vm.frames, nil)
	if capacity > vm.MaxCapacity {
		vm.MaxCapacity = capacity
	}
	return nil
}

func (e *Env) PopLocalFrame(result jni.Object) jni.Object {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	var res *object
	if result != 0 {
		res = vm.obj(result)
	}
	top := len(vm.frames) - 1
	if top == 0 {
		panic("jnitest: PopLocalFrame without PushLocalFrame")
	}
	for _, h := range vm.frames[top] {
		delete(vm.handles, h)
	}
	vm.frames = vm.frames[:top]
	if res == nil {
		return 0
	}
	return vm.newLocal(res)
}

func (e *Env) EnsureLocalCapacity(capacity int) error {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.FailEnsureCapacity {
		return fmt.Errorf("jnitest: out of local references")
	}
	if capacity > vm.MaxCapacity {
		vm.MaxCapacity = capacity
	}
	return nil
}

func (e *Env) call(obj jni.Object, m jni.MethodID, args []jni.Value) (jni.Value, error) {
	vm := e.vm
	vm.mu.Lock()
	fn, ok := vm.methods[m]
	vm.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("jnitest: unknown method %#x", uintptr(m)))
	}
	// Methods run unlocked so they can call back into the Env.
	ret, thrown := fn(e, obj, args)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if thrown != 0 {
		vm.pending = thrown
		return 0, vm.exception()
	}
	return ret, nil
}

func (e *Env) NewObject(cls jni.Class, ctor jni.MethodID, args ...jni.Value) (jni.Object, error) {
	vm := e.vm
	vm.mu.Lock()
	h := vm.newLocal(&object{class: vm.obj(jni.Object(cls)).def, fields: make(map[jni.FieldID]any)})
	vm.mu.Unlock()
	if _, err := e.call(h, ctor, args); err != nil {
		return 0, err
	}
	return h, nil
}

func (e *Env) CallVoidMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) error {
	_, err := e.call(obj, m, args)
	return err
}

func (e *Env) CallObjectMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) (jni.Object, error) {
	v, err := e.call(obj, m, args)
	return jni.Object(v), err
}

func (e *Env) CallBooleanMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) (bool, error) {
	v, err := e.call(obj, m, args)
	return v != 0, err
}

func (e *Env) CallIntMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) (int32, error) {
	v, err := e.call(obj, m, args)
	return int32(v), err
}

func (e *Env) CallLongMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) (int64, error) {
	v, err := e.call(obj, m, args)
	return int64(v), err
}

func (e *Env) CallFloatMethod(obj jni.Object, m jni.MethodID, args ...jni.Value) (float32, error) {
	v, err := e.call(obj, m, args)
	return math.Float32frombits(uint32(v)), err
}

func (e *Env) CallStaticObjectMethod(cls jni.Class, m jni.MethodID, args ...jni.Value) (jni.Object, error) {
	v, err := e.call(jni.Object(cls), m, args)
	return jni.Object(v), err
}

func (e *Env) NewString(s string) (jni.Object, error) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.newLocal(&object{class: vm.classes["java/lang/String"], str: s}), nil
}

func (e *Env) GoString(str jni.Object) string {
	if str == 0 {
		return ""
	}
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.vm.obj(str).str
}

func (e *Env) NewByteArray(n int) (jni.Object, error) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.newLocal(&object{class: vm.classes["java/lang/Object"], bytes: make([]byte, n)}), nil
}

func (e *Env) GetByteArrayRegion(arr jni.Object, start int, buf []byte) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	copy(buf, e.vm.obj(arr).bytes[start:])
}

// SetByteArrayRegion fills a byte array, as a Java method would.
func (e *Env) SetByteArrayRegion(arr jni.Object, start int, buf []byte) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	copy(e.vm.obj(arr).bytes[start:], buf)
}

func (e *Env) NewIntArray(n int) (jni.Object, error) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.newLocal(&object{class: vm.classes["java/lang/Object"], ints: make([]int32, n)}), nil
}

func (e *Env) SetIntArrayRegion(arr jni.Object, start int, vals []int32) {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	copy(e.vm.obj(arr).ints[start:], vals)
}

// IntArray returns a copy of an int array's elements.
func (e *Env) IntArray(arr jni.Object) []int32 {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return append([]int32(nil), e.vm.obj(arr).ints...)
}

func (e *Env) IsInstanceOf(obj jni.Object, cls jni.Class) bool {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.obj(obj).class.isA(vm.obj(jni.Object(cls)).def)
}

func (e *Env) IsAssignableFrom(sub, sup jni.Class) bool {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.obj(jni.Object(sub)).def.isA(vm.obj(jni.Object(sup)).def)
}

func (e *Env) IsSameObject(a, b jni.Object) bool {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if a == 0 || b == 0 {
		return a == b
	}
	return vm.obj(a) == vm.obj(b)
}

func (e *Env) Throw(thr jni.Object) error {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.pending = vm.newLocal(vm.obj(thr))
	return nil
}

// ThrowNew makes an exception of class name pending, as a Java method would.
func (e *Env) ThrowNew(name, msg string) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.throw(name, msg)
}

func (e *Env) ExceptionOccurred() jni.Object {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.pending == 0 {
		return 0
	}
	return vm.newLocal(vm.obj(vm.pending))
}

func (e *Env) ExceptionClear() {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.pending = 0
}

// Pending returns the pending exception's class and message.
func (e *Env) Pending() (class, msg string, ok bool) {
	vm := e.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.pending == 0 {
		return "", "", false
	}
	o := vm.obj(vm.pending)
	return o.class.Name, o.str, true
}
