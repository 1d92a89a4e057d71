// SPDX-License-Identifier: Unlicense OR MIT

package app

/*
#cgo LDFLAGS: -landroid

#include <android/native_window.h>
#include <android/native_window_jni.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/GNOME/gtk-sub015/internal/jni"
)

// androidWindow is an ANativeWindow.
type androidWindow struct {
	w *C.ANativeWindow
}

// windowFromSurface returns the native window of an android.view.Surface.
// The returned window holds one reference.
func windowFromSurface(env jni.Env, surface jni.Object) (NativeWindow, error) {
	penv, ok := env.(interface{ Pointer() unsafe.Pointer })
	if !ok {
		return nil, errors.New("app: environment has no native pointer")
	}
	w := C.ANativeWindow_fromSurface((*C.JNIEnv)(penv.Pointer()), C.jobject(unsafe.Pointer(surface)))
	if w == nil {
		return nil, errors.New("app: surface has no native window")
	}
	return &androidWindow{w: w}, nil
}

func (w *androidWindow) Acquire() {
	C.ANativeWindow_acquire(w.w)
}

func (w *androidWindow) Release() {
	C.ANativeWindow_release(w.w)
}

func (w *androidWindow) Size() (int, int) {
	return int(C.ANativeWindow_getWidth(w.w)), int(C.ANativeWindow_getHeight(w.w))
}

func (w *androidWindow) Lock(dirty image.Rectangle) (WindowBuffer, error) {
	var buf C.ANativeWindow_Buffer
	r := C.ARect{
		left:   C.int32_t(dirty.Min.X),
		top:    C.int32_t(dirty.Min.Y),
		right:  C.int32_t(dirty.Max.X),
		bottom: C.int32_t(dirty.Max.Y),
	}
	if rc := C.ANativeWindow_lock(w.w, &buf, &r); rc != 0 {
		return WindowBuffer{}, fmt.Errorf("app: ANativeWindow_lock: %d", rc)
	}
	stride := int(buf.stride) * 4
	n := stride * int(buf.height)
	return WindowBuffer{
		Bounds: image.Rect(int(r.left), int(r.top), int(r.right), int(r.bottom)),
		Stride: stride,
		Pix:    unsafe.Slice((*byte)(buf.bits), n),
	}, nil
}

func (w *androidWindow) UnlockAndPost() error {
	if rc := C.ANativeWindow_unlockAndPost(w.w); rc != 0 {
		return fmt.Errorf("app: ANativeWindow_unlockAndPost: %d", rc)
	}
	return nil
}

func (w *androidWindow) native() unsafe.Pointer {
	return unsafe.Pointer(w.w)
}
