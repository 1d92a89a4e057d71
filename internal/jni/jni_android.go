// SPDX-License-Identifier: Unlicense OR MIT

package jni

/*
#include <jni.h>
#include <stdlib.h>

static jint jni_GetJavaVM(JNIEnv *env, JavaVM **vm) {
	return (*env)->GetJavaVM(env, vm);
}

static jint jni_GetEnv(JavaVM *vm, JNIEnv **env) {
	return (*vm)->GetEnv(vm, (void **)env, JNI_VERSION_1_6);
}

static jint jni_AttachCurrentThread(JavaVM *vm, JNIEnv **env, char *name) {
	JavaVMAttachArgs args = { JNI_VERSION_1_6, name, NULL };
	return (*vm)->AttachCurrentThread(vm, env, &args);
}

static jint jni_DetachCurrentThread(JavaVM *vm) {
	return (*vm)->DetachCurrentThread(vm);
}

static jclass jni_FindClass(JNIEnv *env, const char *name) {
	return (*env)->FindClass(env, name);
}

static jclass jni_GetObjectClass(JNIEnv *env, jobject obj) {
	return (*env)->GetObjectClass(env, obj);
}

static jmethodID jni_GetMethodID(JNIEnv *env, jclass cls, const char *name, const char *sig) {
	return (*env)->GetMethodID(env, cls, name, sig);
}

static jmethodID jni_GetStaticMethodID(JNIEnv *env, jclass cls, const char *name, const char *sig) {
	return (*env)->GetStaticMethodID(env, cls, name, sig);
}

static jfieldID jni_GetFieldID(JNIEnv *env, jclass cls, const char *name, const char *sig) {
	return (*env)->GetFieldID(env, cls, name, sig);
}

static jfieldID jni_GetStaticFieldID(JNIEnv *env, jclass cls, const char *name, const char *sig) {
	return (*env)->GetStaticFieldID(env, cls, name, sig);
}

static jint jni_GetStaticIntField(JNIEnv *env, jclass cls, jfieldID f) {
	return (*env)->GetStaticIntField(env, cls, f);
}

static jobject jni_GetStaticObjectField(JNIEnv *env, jclass cls, jfieldID f) {
	return (*env)->GetStaticObjectField(env, cls, f);
}

static jlong jni_GetLongField(JNIEnv *env, jobject obj, jfieldID f) {
	return (*env)->GetLongField(env, obj, f);
}

static jobject jni_GetObjectField(JNIEnv *env, jobject obj, jfieldID f) {
	return (*env)->GetObjectField(env, obj, f);
}

static jobject jni_NewGlobalRef(JNIEnv *env, jobject obj) {
	return (*env)->NewGlobalRef(env, obj);
}

static void jni_DeleteGlobalRef(JNIEnv *env, jobject obj) {
	(*env)->DeleteGlobalRef(env, obj);
}

static void jni_DeleteLocalRef(JNIEnv *env, jobject obj) {
	(*env)->DeleteLocalRef(env, obj);
}

static jint jni_PushLocalFrame(JNIEnv *env, jint capacity) {
	return (*env)->PushLocalFrame(env, capacity);
}

static jobject jni_PopLocalFrame(JNIEnv *env, jobject result) {
	return (*env)->PopLocalFrame(env, result);
}

static jint jni_EnsureLocalCapacity(JNIEnv *env, jint capacity) {
	return (*env)->EnsureLocalCapacity(env, capacity);
}

static jobject jni_NewObjectA(JNIEnv *env, jclass cls, jmethodID m, jvalue *args) {
	return (*env)->NewObjectA(env, cls, m, args);
}

static void jni_CallVoidMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	(*env)->CallVoidMethodA(env, obj, m, args);
}

static jobject jni_CallObjectMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	return (*env)->CallObjectMethodA(env, obj, m, args);
}

static jboolean jni_CallBooleanMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	return (*env)->CallBooleanMethodA(env, obj, m, args);
}

static jint jni_CallIntMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	return (*env)->CallIntMethodA(env, obj, m, args);
}

static jlong jni_CallLongMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	return (*env)->CallLongMethodA(env, obj, m, args);
}

static jfloat jni_CallFloatMethodA(JNIEnv *env, jobject obj, jmethodID m, jvalue *args) {
	return (*env)->CallFloatMethodA(env, obj, m, args);
}

static jobject jni_CallStaticObjectMethodA(JNIEnv *env, jclass cls, jmethodID m, jvalue *args) {
	return (*env)->CallStaticObjectMethodA(env, cls, m, args);
}

static jstring jni_NewStringUTF(JNIEnv *env, const char *s) {
	return (*env)->NewStringUTF(env, s);
}

static jsize jni_GetStringUTFLength(JNIEnv *env, jstring str) {
	return (*env)->GetStringUTFLength(env, str);
}

static const char *jni_GetStringUTFChars(JNIEnv *env, jstring str) {
	return (*env)->GetStringUTFChars(env, str, NULL);
}

static void jni_ReleaseStringUTFChars(JNIEnv *env, jstring str, const char *chars) {
	(*env)->ReleaseStringUTFChars(env, str, chars);
}

static jbyteArray jni_NewByteArray(JNIEnv *env, jsize n) {
	return (*env)->NewByteArray(env, n);
}

static void jni_GetByteArrayRegion(JNIEnv *env, jbyteArray arr, jsize start, jsize n, jbyte *buf) {
	(*env)->GetByteArrayRegion(env, arr, start, n, buf);
}

static jintArray jni_NewIntArray(JNIEnv *env, jsize n) {
	return (*env)->NewIntArray(env, n);
}

static void jni_SetIntArrayRegion(JNIEnv *env, jintArray arr, jsize start, jsize n, jint *buf) {
	(*env)->SetIntArrayRegion(env, arr, start, n, buf);
}

static jboolean jni_IsInstanceOf(JNIEnv *env, jobject obj, jclass cls) {
	return (*env)->IsInstanceOf(env, obj, cls);
}

static jboolean jni_IsAssignableFrom(JNIEnv *env, jclass sub, jclass sup) {
	return (*env)->IsAssignableFrom(env, sub, sup);
}

static jboolean jni_IsSameObject(JNIEnv *env, jobject a, jobject b) {
	return (*env)->IsSameObject(env, a, b);
}

static jint jni_Throw(JNIEnv *env, jthrowable thr) {
	return (*env)->Throw(env, thr);
}

static jthrowable jni_ExceptionOccurred(JNIEnv *env) {
	return (*env)->ExceptionOccurred(env);
}

static void jni_ExceptionClear(JNIEnv *env) {
	(*env)->ExceptionClear(env);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type androidVM struct {
	vm *C.JavaVM
}

type androidEnv struct {
	env *C.JNIEnv
}

// VMFrom wraps a JavaVM pointer.
func VMFrom(vm unsafe.Pointer) VM {
	return androidVM{vm: (*C.JavaVM)(vm)}
}

// EnvFrom wraps the JNIEnv pointer passed to a native method.
func EnvFrom(env unsafe.Pointer) Env {
	return androidEnv{env: (*C.JNIEnv)(env)}
}

// GetJavaVM returns the VM of the environment env.
func GetJavaVM(env unsafe.Pointer) (VM, error) {
	e := (*C.JNIEnv)(env)
	var vm *C.JavaVM
	if rc := C.jni_GetJavaVM(e, &vm); rc != C.JNI_OK {
		return nil, fmt.Errorf("jni: GetJavaVM failed: %d", rc)
	}
	return androidVM{vm: vm}, nil
}

func (v androidVM) GetEnv() (Env, error) {
	var env *C.JNIEnv
	switch rc := C.jni_GetEnv(v.vm, &env); rc {
	case C.JNI_OK:
		return androidEnv{env: env}, nil
	case C.JNI_EDETACHED:
		return nil, ErrDetached
	default:
		return nil, fmt.Errorf("jni: GetEnv failed: %d", rc)
	}
}

func (v androidVM) AttachCurrentThread(name string) (Env, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var env *C.JNIEnv
	if rc := C.jni_AttachCurrentThread(v.vm, &env, cname); rc != C.JNI_OK {
		return nil, fmt.Errorf("jni: AttachCurrentThread failed: %d", rc)
	}
	return androidEnv{env: env}, nil
}

func (v androidVM) DetachCurrentThread() error {
	if rc := C.jni_DetachCurrentThread(v.vm); rc != C.JNI_OK {
		return fmt.Errorf("jni: DetachCurrentThread failed: %d", rc)
	}
	return nil
}

// Pointer returns the JNIEnv pointer of e.
func (e androidEnv) Pointer() unsafe.Pointer {
	return unsafe.Pointer(e.env)
}

func cobj(o Object) C.jobject {
	return C.jobject(unsafe.Pointer(o))
}

func ccls(c Class) C.jclass {
	return C.jclass(unsafe.Pointer(c))
}

func cargs(args []Value) *C.jvalue {
	if len(args) == 0 {
		return nil
	}
	return (*C.jvalue)(unsafe.Pointer(&args[0]))
}

func (e androidEnv) check() error {
	return CheckException(e)
}

func (e androidEnv) FindClass(name string) (Class, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cls := C.jni_FindClass(e.env, cname)
	if err := e.check(); err != nil {
		return 0, err
	}
	if cls == nil {
		return 0, fmt.Errorf("jni: class %s not found", name)
	}
	return Class(unsafe.Pointer(cls)), nil
}

func (e androidEnv) GetObjectClass(obj Object) Class {
	return Class(unsafe.Pointer(C.jni_GetObjectClass(e.env, cobj(obj))))
}

func (e androidEnv) member(kind, name, sig string, lookup func(n, s *C.char) uintptr) (uintptr, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	csig := C.CString(sig)
	defer C.free(unsafe.Pointer(csig))
	id := lookup(cname, csig)
	if err := e.check(); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("jni: %s %s%s not found", kind, name, sig)
	}
	return id, nil
}

func (e androidEnv) GetMethodID(cls Class, name, sig string) (MethodID, error) {
	id, err := e.member("method", name, sig, func(n, s *C.char) uintptr {
		return uintptr(unsafe.Pointer(C.jni_GetMethodID(e.env, ccls(cls), n, s)))
	})
	return MethodID(id), err
}

func (e androidEnv) GetStaticMethodID(cls Class, name, sig string) (MethodID, error) {
	id, err := e.member("static method", name, sig, func(n, s *C.char) uintptr {
		return uintptr(unsafe.Pointer(C.jni_GetStaticMethodID(e.env, ccls(cls), n, s)))
	})
	return MethodID(id), err
}

func (e androidEnv) GetFieldID(cls Class, name, sig string) (FieldID, error) {
	id, err := e.member("field", name, sig, func(n, s *C.char) uintptr {
		return uintptr(unsafe.Pointer(C.jni_GetFieldID(e.env, ccls(cls), n, s)))
	})
	return FieldID(id), err
}

func (e androidEnv) GetStaticFieldID(cls Class, name, sig string) (FieldID, error) {
	id, err := e.member("static field", name, sig, func(n, s *C.char) uintptr {
		return uintptr(unsafe.Pointer(C.jni_GetStaticFieldID(e.env, ccls(cls), n, s)))
	})
	return FieldID(id), err
}

func mid(m MethodID) C.jmethodID { return C.jmethodID(unsafe.Pointer(m)) }
func fid(f FieldID) C.jfieldID   { return C.jfieldID(unsafe.Pointer(f)) }

func (e androidEnv) GetStaticIntField(cls Class, f FieldID) int32 {
	return int32(C.jni_GetStaticIntField(e.env, ccls(cls), fid(f)))
}

func (e androidEnv) GetStaticObjectField(cls Class, f FieldID) Object {
	return Object(unsafe.Pointer(C.jni_GetStaticObjectField(e.env, ccls(cls), fid(f))))
}

func (e androidEnv) GetLongField(obj Object, f FieldID) int64 {
	return int64(C.jni_GetLongField(e.env, cobj(obj), fid(f)))
}

func (e androidEnv) GetObjectField(obj Object, f FieldID) Object {
	return Object(unsafe.Pointer(C.jni_GetObjectField(e.env, cobj(obj), fid(f))))
}

func (e androidEnv) NewGlobalRef(obj Object) Object {
	return Object(unsafe.Pointer(C.jni_NewGlobalRef(e.env, cobj(obj))))
}

func (e androidEnv) DeleteGlobalRef(obj Object) {
	C.jni_DeleteGlobalRef(e.env, cobj(obj))
}

func (e androidEnv) DeleteLocalRef(obj Object) {
	C.jni_DeleteLocalRef(e.env, cobj(obj))
}

func (e androidEnv) PushLocalFrame(capacity int) error {
	if C.jni_PushLocalFrame(e.env, C.jint(capacity)) != 0 {
		if err := e.check(); err != nil {
			return err
		}
		return fmt.Errorf("jni: PushLocalFrame(%d) failed", capacity)
	}
	return nil
}

func (e androidEnv) PopLocalFrame(result Object) Object {
	return Object(unsafe.Pointer(C.jni_PopLocalFrame(e.env, cobj(result))))
}

func (e androidEnv) EnsureLocalCapacity(capacity int) error {
	if C.jni_EnsureLocalCapacity(e.env, C.jint(capacity)) != 0 {
		if err := e.check(); err != nil {
			return err
		}
		return fmt.Errorf("jni: EnsureLocalCapacity(%d) failed", capacity)
	}
	return nil
}

func (e androidEnv) NewObject(cls Class, ctor MethodID, args ...Value) (Object, error) {
	obj := C.jni_NewObjectA(e.env, ccls(cls), mid(ctor), cargs(args))
	return Object(unsafe.Pointer(obj)), e.check()
}

func (e androidEnv) CallVoidMethod(obj Object, m MethodID, args ...Value) error {
	C.jni_CallVoidMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return e.check()
}

func (e androidEnv) CallObjectMethod(obj Object, m MethodID, args ...Value) (Object, error) {
	res := C.jni_CallObjectMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return Object(unsafe.Pointer(res)), e.check()
}

func (e androidEnv) CallBooleanMethod(obj Object, m MethodID, args ...Value) (bool, error) {
	res := C.jni_CallBooleanMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return res == C.JNI_TRUE, e.check()
}

func (e androidEnv) CallIntMethod(obj Object, m MethodID, args ...Value) (int32, error) {
	res := C.jni_CallIntMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return int32(res), e.check()
}

func (e androidEnv) CallLongMethod(obj Object, m MethodID, args ...Value) (int64, error) {
	res := C.jni_CallLongMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return int64(res), e.check()
}

func (e androidEnv) CallFloatMethod(obj Object, m MethodID, args ...Value) (float32, error) {
	res := C.jni_CallFloatMethodA(e.env, cobj(obj), mid(m), cargs(args))
	return float32(res), e.check()
}

func (e androidEnv) CallStaticObjectMethod(cls Class, m MethodID, args ...Value) (Object, error) {
	res := C.jni_CallStaticObjectMethodA(e.env, ccls(cls), mid(m), cargs(args))
	return Object(unsafe.Pointer(res)), e.check()
}

func (e androidEnv) NewString(s string) (Object, error) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	str := C.jni_NewStringUTF(e.env, cs)
	return Object(unsafe.Pointer(str)), e.check()
}

func (e androidEnv) GoString(str Object) string {
	if str == 0 {
		return ""
	}
	s := C.jstring(unsafe.Pointer(str))
	chars := C.jni_GetStringUTFChars(e.env, s)
	if chars == nil {
		return ""
	}
	defer C.jni_ReleaseStringUTFChars(e.env, s, chars)
	n := C.jni_GetStringUTFLength(e.env, s)
	return C.GoStringN(chars, C.int(n))
}

func (e androidEnv) NewByteArray(n int) (Object, error) {
	arr := C.jni_NewByteArray(e.env, C.jsize(n))
	return Object(unsafe.Pointer(arr)), e.check()
}

func (e androidEnv) GetByteArrayRegion(arr Object, start int, buf []byte) {
	if len(buf) == 0 {
		return
	}
	C.jni_GetByteArrayRegion(e.env, C.jbyteArray(unsafe.Pointer(arr)), C.jsize(start), C.jsize(len(buf)), (*C.jbyte)(unsafe.Pointer(&buf[0])))
}

func (e androidEnv) NewIntArray(n int) (Object, error) {
	arr := C.jni_NewIntArray(e.env, C.jsize(n))
	return Object(unsafe.Pointer(arr)), e.check()
}

func (e androidEnv) SetIntArrayRegion(arr Object, start int, vals []int32) {
	if len(vals) == 0 {
		return
	}
	C.jni_SetIntArrayRegion(e.env, C.jintArray(unsafe.Pointer(arr)), C.jsize(start), C.jsize(len(vals)), (*C.jint)(unsafe.Pointer(&vals[0])))
}

func (e androidEnv) IsInstanceOf(obj Object, cls Class) bool {
	return C.jni_IsInstanceOf(e.env, cobj(obj), ccls(cls)) == C.JNI_TRUE
}

func (e androidEnv) IsAssignableFrom(sub, sup Class) bool {
	return C.jni_IsAssignableFrom(e.env, ccls(sub), ccls(sup)) == C.JNI_TRUE
}

func (e androidEnv) IsSameObject(a, b Object) bool {
	return C.jni_IsSameObject(e.env, cobj(a), cobj(b)) == C.JNI_TRUE
}

func (e androidEnv) Throw(thr Object) error {
	if C.jni_Throw(e.env, C.jthrowable(unsafe.Pointer(thr))) != 0 {
		return fmt.Errorf("jni: Throw failed")
	}
	return nil
}

func (e androidEnv) ExceptionOccurred() Object {
	return Object(unsafe.Pointer(C.jni_ExceptionOccurred(e.env)))
}

func (e androidEnv) ExceptionClear() {
	C.jni_ExceptionClear(e.env)
}
