// SPDX-License-Identifier: Unlicense OR MIT

package jni

import "sync"

// Frame tracks the local references created inside a local frame and
// grows the frame's capacity before it runs out.
type Frame struct {
	env      Env
	capacity int
	used     int
}

const minFrameCapacity = 16

// WithLocalFrame runs f inside a fresh local frame. Every local reference
// created by f is released when f returns, except the returned object,
// which is promoted into the caller's frame.
func WithLocalFrame(e Env, f func(fr *Frame) (Object, error)) (Object, error) {
	if err := e.PushLocalFrame(minFrameCapacity); err != nil {
		return 0, err
	}
	fr := &Frame{env: e, capacity: minFrameCapacity}
	res, err := f(fr)
	if err != nil {
		e.PopLocalFrame(0)
		return 0, err
	}
	return e.PopLocalFrame(res), nil
}

// Reserve makes room for n more local references.
func (fr *Frame) Reserve(n int) error {
	if fr.used+n > fr.capacity {
		c := fr.capacity
		for fr.used+n > c {
			c *= 2
		}
		if err := fr.env.EnsureLocalCapacity(c); err != nil {
			return err
		}
		fr.capacity = c
	}
	fr.used += n
	return nil
}

// Used returns the number of references reserved so far.
func (fr *Frame) Used() int { return fr.used }

// GlobalRef owns a global reference.
type GlobalRef struct {
	obj  Object
	once sync.Once
}

// NewGlobalRef creates a global reference to obj. A zero obj yields a nil
// *GlobalRef.
func NewGlobalRef(e Env, obj Object) *GlobalRef {
	if obj == 0 {
		return nil
	}
	return &GlobalRef{obj: e.NewGlobalRef(obj)}
}

// Object returns the referenced object, or 0 for a nil or released ref.
func (r *GlobalRef) Object() Object {
	if r == nil {
		return 0
	}
	return r.obj
}

// Release deletes the global reference. Only the first call has an effect.
func (r *GlobalRef) Release(e Env) {
	if r == nil {
		return
	}
	r.once.Do(func() {
		e.DeleteGlobalRef(r.obj)
		r.obj = 0
	})
}
