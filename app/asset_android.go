// SPDX-License-Identifier: Unlicense OR MIT

package app

/*
#cgo LDFLAGS: -landroid

#include <stdlib.h>
#include <android/asset_manager.h>
#include <android/asset_manager_jni.h>
*/
import "C"

import (
	"bytes"
	"errors"
	"io"
	"unsafe"

	"github.com/GNOME/gtk-sub015/internal/jni"
)

// openAsset returns the contents of the application asset name, or
// errNoConfig when the package has no such asset.
func openAsset(cenv *C.JNIEnv, env jni.Env, ctx jni.Object, name string) (io.ReadCloser, error) {
	cls, err := env.FindClass("android/content/Context")
	if err != nil {
		return nil, err
	}
	defer env.DeleteLocalRef(jni.Object(cls))
	getAssets, err := env.GetMethodID(cls, "getAssets", "()Landroid/content/res/AssetManager;")
	if err != nil {
		return nil, err
	}
	assets, err := env.CallObjectMethod(ctx, getAssets)
	if err != nil {
		return nil, err
	}
	if assets == 0 {
		return nil, errors.New("app: context has no asset manager")
	}
	defer env.DeleteLocalRef(assets)
	mgr := C.AAssetManager_fromJava(cenv, C.jobject(unsafe.Pointer(assets)))
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	a := C.AAssetManager_open(mgr, cname, C.AASSET_MODE_BUFFER)
	if a == nil {
		return nil, errNoConfig
	}
	defer C.AAsset_close(a)
	n := C.AAsset_getLength(a)
	buf := C.AAsset_getBuffer(a)
	if buf == nil {
		return nil, errors.New("app: unreadable asset " + name)
	}
	return io.NopCloser(bytes.NewReader(C.GoBytes(buf, C.int(n)))), nil
}
