// SPDX-License-Identifier: Unlicense OR MIT

// Package refcache resolves, once, the Java classes, members and constants
// the Android backend calls into, and publishes them as an immutable table.
package refcache

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/GNOME/gtk-sub015/internal/jni"
)

// Cache is the resolved reflection table. It is read-only after Load
// returns.
type Cache struct {
	Surface          Surface
	Toplevel         Toplevel
	ToplevelView     ToplevelView
	SurfaceException SurfaceException
	DragShadow       DragShadow
	Activity         Activity
	Intent           Intent
	SurfaceHolder    SurfaceHolder
	MotionEvent      MotionEvent
	KeyEvent         KeyEvent
	DragEvent        DragEvent
	InputDevice      InputDevice
	MotionRange      MotionRange
	PointerIcon      PointerIcon
	Bitmap           Bitmap
	InputStream      InputStream
	Exceptions       Exceptions

	// globals holds every global reference in acquisition order.
	globals []jni.Object
}

// Surface is org.gtk.android.ToplevelActivity$ToplevelView$Surface, the
// platform view bound to a native surface.
type Surface struct {
	Class             jni.Class
	SurfaceIdentifier jni.FieldID
	GetHolder         jni.MethodID
	SetVisibility     jni.MethodID
	DropCursorIcon    jni.MethodID
	SetCursorFromID   jni.MethodID
	StartDND          jni.MethodID
	UpdateDND         jni.MethodID
	CancelDND         jni.MethodID
	Reposition        jni.MethodID
	Drop              jni.MethodID
}

type Toplevel struct {
	Class                   jni.Class
	NativeIdentifier        jni.FieldID
	View                    jni.FieldID
	IdentifierKey           jni.Object
	BindNative              jni.MethodID
	AttachToplevelSurface   jni.MethodID
	PostWindowConfiguration jni.MethodID
	PostTitle               jni.MethodID
}

type ToplevelView struct {
	Class             jni.Class
	SetGrabbedSurface jni.MethodID
	PushPopup         jni.MethodID
}

// SurfaceException is thrown back into Java when bindNative names an
// identifier the registry does not know.
type SurfaceException struct {
	Class jni.Class
	New   jni.MethodID
}

type DragShadow struct {
	Empty         jni.Class
	NewEmpty      jni.MethodID
	Bitmap        jni.Class
	NewBitmap     jni.MethodID
	Identifier    jni.Class
	NewIdentifier jni.MethodID
}

type Activity struct {
	Class                  jni.Class
	Finish                 jni.MethodID
	StartActivity          jni.MethodID
	StartActivityForResult jni.MethodID
	FinishActivity         jni.MethodID
	ResultOK               int32
	ResultCanceled         int32
}

type Intent struct {
	Class               jni.Class
	New                 jni.MethodID
	PutExtraLong        jni.MethodID
	AddFlags            jni.MethodID
	FlagActivityNewTask int32
	FlagMultipleTask    int32
}

type SurfaceHolder struct {
	Class      jni.Class
	GetSurface jni.MethodID
}

type MotionEvent struct {
	Class           jni.Class
	GetActionMasked jni.MethodID
	GetActionIndex  jni.MethodID
	GetPointerCount jni.MethodID
	GetPointerID    jni.MethodID
	GetToolType     jni.MethodID
	GetAxisValue    jni.MethodID
	GetButtonState  jni.MethodID
	GetDownTime     jni.MethodID
	GetEventTime    jni.MethodID
	GetMetaState    jni.MethodID
	GetSource       jni.MethodID
	GetDeviceID     jni.MethodID
}

type KeyEvent struct {
	Class        jni.Class
	GetAction    jni.MethodID
	GetKeyCode   jni.MethodID
	GetScanCode  jni.MethodID
	GetMetaState jni.MethodID
	GetEventTime jni.MethodID
	GetSource    jni.MethodID
	GetDeviceID  jni.MethodID
}

type DragEvent struct {
	Class     jni.Class
	GetAction jni.MethodID
	GetX      jni.MethodID
	GetY      jni.MethodID
}

type InputDevice struct {
	Class          jni.Class
	GetDevice      jni.MethodID
	GetMotionRange jni.MethodID
	GetSources     jni.MethodID
}

type MotionRange struct {
	Class         jni.Class
	GetMin        jni.MethodID
	GetMax        jni.MethodID
	GetResolution jni.MethodID
}

// PointerIcon maps CSS cursor names to android.view.PointerIcon TYPE_*
// constants.
type PointerIcon struct {
	Class jni.Class
	Types map[string]int32
}

type Bitmap struct {
	Class    jni.Class
	Create   jni.MethodID
	ARGB8888 jni.Object
}

type InputStream struct {
	Class jni.Class
	Read  jni.MethodID
	Skip  jni.MethodID
	Close jni.MethodID
}

// Exceptions holds the Java exception classes that map to I/O error kinds.
type Exceptions struct {
	IO            jni.Class
	EOF           jni.Class
	NotFound      jni.Class
	AccessDenied  jni.Class
	NotEmpty      jni.Class
	Exists        jni.Class
	Loop          jni.Class
	NoFile        jni.Class
	NotDir        jni.Class
	MalformedURI  jni.Class
	ChannelClosed jni.Class
}

// cursorTypes lists the PointerIcon constants with a CSS equivalent.
// row-resize, col-resize, the single direction resizes, move, not-allowed
// and progress have none.
var cursorTypes = []struct{ css, field string }{
	{"alias", "TYPE_ALIAS"},
	{"all-scroll", "TYPE_ALL_SCROLL"},
	{"arrow", "TYPE_ARROW"},
	{"cell", "TYPE_CELL"},
	{"context-menu", "TYPE_CONTEXT_MENU"},
	{"copy", "TYPE_COPY"},
	{"crosshair", "TYPE_CROSSHAIR"},
	{"grab", "TYPE_GRAB"},
	{"grabbing", "TYPE_GRABBING"},
	{"pointer", "TYPE_HAND"},
	{"help", "TYPE_HELP"},
	{"ew-resize", "TYPE_HORIZONTAL_DOUBLE_ARROW"},
	{"no-drop", "TYPE_NO_DROP"},
	{"none", "TYPE_NULL"},
	{"text", "TYPE_TEXT"},
	{"nwse-resize", "TYPE_TOP_LEFT_DIAGONAL_DOUBLE_ARROW"},
	{"nesw-resize", "TYPE_TOP_RIGHT_DIAGONAL_DOUBLE_ARROW"},
	{"ns-resize", "TYPE_VERTICAL_DOUBLE_ARROW"},
	{"vertical-text", "TYPE_VERTICAL_TEXT"},
	{"wait", "TYPE_WAIT"},
	{"zoom-in", "TYPE_ZOOM_IN"},
	{"zoom-out", "TYPE_ZOOM_OUT"},
}

var published atomic.Pointer[Cache]

// Init loads the cache and publishes it for Get.
func Init(env jni.Env, loader jni.Object) (*Cache, error) {
	c, err := Load(env, loader)
	if err != nil {
		return nil, err
	}
	published.Store(c)
	return c, nil
}

// Get returns the published cache. It must not be called before Init or
// after Teardown.
func Get() *Cache {
	return published.Load()
}

// Teardown releases the published cache and clears it.
func Teardown(env jni.Env) {
	if c := published.Swap(nil); c != nil {
		c.Release(env)
	}
}

// Load resolves every entry. Application classes are loaded through
// loader, system classes through FindClass. On failure every reference
// acquired so far is released.
func Load(env jni.Env, loader jni.Object) (*Cache, error) {
	c := new(Cache)
	r := &resolver{env: env, loader: loader, c: c}
	_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
		r.fr = fr
		r.init()
		r.resolve()
		return 0, r.err
	})
	if err != nil {
		c.Release(env)
		return nil, err
	}
	return c, nil
}

// Release deletes every global reference in reverse acquisition order.
func (c *Cache) Release(env jni.Env) {
	for i := len(c.globals) - 1; i >= 0; i-- {
		env.DeleteGlobalRef(c.globals[i])
	}
	c.globals = nil
}

// CursorType returns the PointerIcon type for a CSS cursor name.
func (c *Cache) CursorType(name string) (int32, bool) {
	t, ok := c.PointerIcon.Types[name]
	return t, ok
}

// resolver accumulates the first lookup error; later lookups are skipped.
type resolver struct {
	env    jni.Env
	loader jni.Object
	fr     *jni.Frame
	c      *Cache
	err    error

	loadClass jni.MethodID
}

func (r *resolver) fail(what string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("refcache: %s: %w", what, err)
	}
}

func (r *resolver) init() {
	r.reserve(1)
	cl, err := r.env.FindClass("java/lang/ClassLoader")
	if err != nil {
		r.fail("java/lang/ClassLoader", err)
		return
	}
	r.loadClass, err = r.env.GetMethodID(cl, "loadClass", "(Ljava/lang/String;)Ljava/lang/Class;")
	if err != nil {
		r.fail("ClassLoader.loadClass", err)
	}
}

func (r *resolver) reserve(n int) {
	if r.err != nil {
		return
	}
	if err := r.fr.Reserve(n); err != nil {
		r.fail("local frame", err)
	}
}

func (r *resolver) global(obj jni.Object) jni.Object {
	g := r.env.NewGlobalRef(obj)
	r.c.globals = append(r.c.globals, g)
	return g
}

// app loads an application class through the class loader.
func (r *resolver) app(name string) jni.Class {
	r.reserve(2)
	if r.err != nil {
		return 0
	}
	jname, err := r.env.NewString(strings.ReplaceAll(name, "/", "."))
	if err != nil {
		r.fail(name, err)
		return 0
	}
	cls, err := r.env.CallObjectMethod(r.loader, r.loadClass, jni.Value(jname))
	if err == nil && cls == 0 {
		err = fmt.Errorf("class loader returned null")
	}
	if err != nil {
		r.fail(name, err)
		return 0
	}
	return jni.Class(r.global(cls))
}

// sys loads a class from the boot class path.
func (r *resolver) sys(name string) jni.Class {
	r.reserve(1)
	if r.err != nil {
		return 0
	}
	cls, err := r.env.FindClass(name)
	if err != nil {
		r.fail(name, err)
		return 0
	}
	return jni.Class(r.global(jni.Object(cls)))
}

func (r *resolver) method(cls jni.Class, name, sig string) jni.MethodID {
	if r.err != nil {
		return 0
	}
	m, err := r.env.GetMethodID(cls, name, sig)
	if err != nil {
		r.fail(name+sig, err)
	}
	return m
}

func (r *resolver) static(cls jni.Class, name, sig string) jni.MethodID {
	if r.err != nil {
		return 0
	}
	m, err := r.env.GetStaticMethodID(cls, name, sig)
	if err != nil {
		r.fail(name+sig, err)
	}
	return m
}

func (r *resolver) field(cls jni.Class, name, sig string) jni.FieldID {
	if r.err != nil {
		return 0
	}
	f, err := r.env.GetFieldID(cls, name, sig)
	if err != nil {
		r.fail(name, err)
	}
	return f
}

func (r *resolver) constInt(cls jni.Class, name string) int32 {
	if r.err != nil {
		return 0
	}
	f, err := r.env.GetStaticFieldID(cls, name, "I")
	if err != nil {
		r.fail(name, err)
		return 0
	}
	return r.env.GetStaticIntField(cls, f)
}

// constObject returns a global reference to a static object field.
func (r *resolver) constObject(cls jni.Class, name, sig string) jni.Object {
	r.reserve(1)
	if r.err != nil {
		return 0
	}
	f, err := r.env.GetStaticFieldID(cls, name, sig)
	if err != nil {
		r.fail(name, err)
		return 0
	}
	obj := r.env.GetStaticObjectField(cls, f)
	if obj == 0 {
		r.fail(name, fmt.Errorf("null static field"))
		return 0
	}
	return r.global(obj)
}

func (r *resolver) resolve() {
	c := r.c

	s := &c.Surface
	s.Class = r.app("org/gtk/android/ToplevelActivity$ToplevelView$Surface")
	s.SurfaceIdentifier = r.field(s.Class, "surfaceIdentifier", "J")
	s.GetHolder = r.method(s.Class, "getHolder", "()Landroid/view/SurfaceHolder;")
	s.SetVisibility = r.method(s.Class, "setVisibility", "(Z)V")
	s.DropCursorIcon = r.method(s.Class, "dropCursorIcon", "()V")
	s.SetCursorFromID = r.method(s.Class, "setCursorFromId", "(I)V")
	s.StartDND = r.method(s.Class, "startDND", "(Landroid/content/ClipData;Landroid/view/View$DragShadowBuilder;Lorg/gtk/android/ClipboardProvider$NativeDragIdentifier;I)V")
	s.UpdateDND = r.method(s.Class, "updateDND", "(Landroid/view/View$DragShadowBuilder;)V")
	s.CancelDND = r.method(s.Class, "cancelDND", "()V")
	s.Reposition = r.method(s.Class, "reposition", "(IIII)V")
	s.Drop = r.method(s.Class, "drop", "()V")

	t := &c.Toplevel
	t.Class = r.app("org/gtk/android/ToplevelActivity")
	t.NativeIdentifier = r.field(t.Class, "nativeIdentifier", "J")
	t.View = r.field(t.Class, "view", "Lorg/gtk/android/ToplevelActivity$ToplevelView;")
	t.IdentifierKey = r.constObject(t.Class, "toplevelIdentifierKey", "Ljava/lang/String;")
	t.BindNative = r.method(t.Class, "bindNative", "(J)V")
	t.AttachToplevelSurface = r.method(t.Class, "attachToplevelSurface", "()V")
	t.PostWindowConfiguration = r.method(t.Class, "postWindowConfiguration", "(IZ)V")
	t.PostTitle = r.method(t.Class, "postTitle", "(Ljava/lang/String;)V")

	v := &c.ToplevelView
	v.Class = r.app("org/gtk/android/ToplevelActivity$ToplevelView")
	v.SetGrabbedSurface = r.method(v.Class, "setGrabbedSurface", "(Lorg/gtk/android/ToplevelActivity$ToplevelView$Surface;)V")
	v.PushPopup = r.method(v.Class, "pushPopup", "(JIIII)V")

	e := &c.SurfaceException
	e.Class = r.app("org/gtk/android/ToplevelActivity$UnregisteredSurfaceException")
	e.New = r.method(e.Class, "<init>", "(Ljava/lang/Object;)V")

	d := &c.DragShadow
	d.Empty = r.app("org/gtk/android/ClipboardProvider$ClipboardEmptyDragShadow")
	d.NewEmpty = r.method(d.Empty, "<init>", "(Landroid/view/View;)V")
	d.Bitmap = r.app("org/gtk/android/ClipboardProvider$ClipboardBitmapDragShadow")
	d.NewBitmap = r.method(d.Bitmap, "<init>", "(Landroid/view/View;Landroid/graphics/Bitmap;II)V")
	d.Identifier = r.app("org/gtk/android/ClipboardProvider$NativeDragIdentifier")
	d.NewIdentifier = r.method(d.Identifier, "<init>", "(J)V")

	a := &c.Activity
	a.Class = r.sys("android/app/Activity")
	a.Finish = r.method(a.Class, "finish", "()V")
	a.StartActivity = r.method(a.Class, "startActivity", "(Landroid/content/Intent;)V")
	a.StartActivityForResult = r.method(a.Class, "startActivityForResult", "(Landroid/content/Intent;I)V")
	a.FinishActivity = r.method(a.Class, "finishActivity", "(I)V")
	a.ResultOK = r.constInt(a.Class, "RESULT_OK")
	a.ResultCanceled = r.constInt(a.Class, "RESULT_CANCELED")

	i := &c.Intent
	i.Class = r.sys("android/content/Intent")
	i.New = r.method(i.Class, "<init>", "(Landroid/content/Context;Ljava/lang/Class;)V")
	i.PutExtraLong = r.method(i.Class, "putExtra", "(Ljava/lang/String;J)Landroid/content/Intent;")
	i.AddFlags = r.method(i.Class, "addFlags", "(I)Landroid/content/Intent;")
	i.FlagActivityNewTask = r.constInt(i.Class, "FLAG_ACTIVITY_NEW_TASK")
	i.FlagMultipleTask = r.constInt(i.Class, "FLAG_ACTIVITY_MULTIPLE_TASK")

	h := &c.SurfaceHolder
	h.Class = r.sys("android/view/SurfaceHolder")
	h.GetSurface = r.method(h.Class, "getSurface", "()Landroid/view/Surface;")

	m := &c.MotionEvent
	m.Class = r.sys("android/view/MotionEvent")
	m.GetActionMasked = r.method(m.Class, "getActionMasked", "()I")
	m.GetActionIndex = r.method(m.Class, "getActionIndex", "()I")
	m.GetPointerCount = r.method(m.Class, "getPointerCount", "()I")
	m.GetPointerID = r.method(m.Class, "getPointerId", "(I)I")
	m.GetToolType = r.method(m.Class, "getToolType", "(I)I")
	m.GetAxisValue = r.method(m.Class, "getAxisValue", "(II)F")
	m.GetButtonState = r.method(m.Class, "getButtonState", "()I")
	m.GetDownTime = r.method(m.Class, "getDownTime", "()J")
	m.GetEventTime = r.method(m.Class, "getEventTime", "()J")
	m.GetMetaState = r.method(m.Class, "getMetaState", "()I")
	m.GetSource = r.method(m.Class, "getSource", "()I")
	m.GetDeviceID = r.method(m.Class, "getDeviceId", "()I")

	k := &c.KeyEvent
	k.Class = r.sys("android/view/KeyEvent")
	k.GetAction = r.method(k.Class, "getAction", "()I")
	k.GetKeyCode = r.method(k.Class, "getKeyCode", "()I")
	k.GetScanCode = r.method(k.Class, "getScanCode", "()I")
	k.GetMetaState = r.method(k.Class, "getMetaState", "()I")
	k.GetEventTime = r.method(k.Class, "getEventTime", "()J")
	k.GetSource = r.method(k.Class, "getSource", "()I")
	k.GetDeviceID = r.method(k.Class, "getDeviceId", "()I")

	de := &c.DragEvent
	de.Class = r.sys("android/view/DragEvent")
	de.GetAction = r.method(de.Class, "getAction", "()I")
	de.GetX = r.method(de.Class, "getX", "()F")
	de.GetY = r.method(de.Class, "getY", "()F")

	dev := &c.InputDevice
	dev.Class = r.sys("android/view/InputDevice")
	dev.GetDevice = r.static(dev.Class, "getDevice", "(I)Landroid/view/InputDevice;")
	dev.GetMotionRange = r.method(dev.Class, "getMotionRange", "(I)Landroid/view/InputDevice$MotionRange;")
	dev.GetSources = r.method(dev.Class, "getSources", "()I")

	mr := &c.MotionRange
	mr.Class = r.sys("android/view/InputDevice$MotionRange")
	mr.GetMin = r.method(mr.Class, "getMin", "()F")
	mr.GetMax = r.method(mr.Class, "getMax", "()F")
	mr.GetResolution = r.method(mr.Class, "getResolution", "()F")

	p := &c.PointerIcon
	p.Class = r.sys("android/view/PointerIcon")
	p.Types = make(map[string]int32, len(cursorTypes))
	for _, ct := range cursorTypes {
		p.Types[ct.css] = r.constInt(p.Class, ct.field)
	}

	b := &c.Bitmap
	b.Class = r.sys("android/graphics/Bitmap")
	b.Create = r.static(b.Class, "createBitmap", "([IIILandroid/graphics/Bitmap$Config;)Landroid/graphics/Bitmap;")
	r.reserve(1)
	if r.err == nil {
		if cfg, err := r.env.FindClass("android/graphics/Bitmap$Config"); err != nil {
			r.fail("android/graphics/Bitmap$Config", err)
		} else {
			b.ARGB8888 = r.constObject(cfg, "ARGB_8888", "Landroid/graphics/Bitmap$Config;")
		}
	}

	is := &c.InputStream
	is.Class = r.sys("java/io/InputStream")
	is.Read = r.method(is.Class, "read", "([BII)I")
	is.Skip = r.method(is.Class, "skip", "(J)J")
	is.Close = r.method(is.Class, "close", "()V")

	x := &c.Exceptions
	x.IO = r.sys("java/io/IOException")
	x.EOF = r.sys("java/io/EOFException")
	x.NotFound = r.sys("java/io/FileNotFoundException")
	x.AccessDenied = r.sys("java/nio/file/AccessDeniedException")
	x.NotEmpty = r.sys("java/nio/file/DirectoryNotEmptyException")
	x.Exists = r.sys("java/nio/file/FileAlreadyExistsException")
	x.Loop = r.sys("java/nio/file/FileSystemLoopException")
	x.NoFile = r.sys("java/nio/file/NoSuchFileException")
	x.NotDir = r.sys("java/nio/file/NotDirectoryException")
	x.MalformedURI = r.sys("java/net/MalformedURLException")
	x.ChannelClosed = r.sys("java/nio/channels/ClosedChannelException")
}
