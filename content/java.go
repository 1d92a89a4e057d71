// SPDX-License-Identifier: Unlicense OR MIT

package content

import (
	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/refcache"
)

// JavaStream is a Stream backed by a java.io.InputStream. Its methods may
// be called from any thread.
type JavaStream struct {
	jvm   *jni.Manager
	cache *refcache.Cache
	known map[string]jni.Class

	stream *jni.GlobalRef
	// buf is the byte array chunks are read into.
	buf *jni.GlobalRef
}

// NewJavaStream wraps the java.io.InputStream stream. env must belong to
// the calling thread.
func NewJavaStream(env jni.Env, jvm *jni.Manager, cache *refcache.Cache, stream jni.Object) (*JavaStream, error) {
	arr, err := env.NewByteArray(ChunkSize)
	if err != nil {
		return nil, err
	}
	defer env.DeleteLocalRef(arr)
	return &JavaStream{
		jvm:    jvm,
		cache:  cache,
		known:  knownClasses(&cache.Exceptions),
		stream: jni.NewGlobalRef(env, stream),
		buf:    jni.NewGlobalRef(env, arr),
	}, nil
}

func (s *JavaStream) Read(p []byte) (int, error) {
	var n int32
	err := s.jvm.Do(func(env jni.Env) error {
		var err error
		n, err = env.CallIntMethod(s.stream.Object(), s.cache.InputStream.Read,
			jni.Value(s.buf.Object()), jni.Int(0), jni.Int(int32(min(len(p), ChunkSize))))
		if err != nil {
			return FromException(err, Subclasses(env, s.known))
		}
		if n > 0 {
			env.GetByteArrayRegion(s.buf.Object(), 0, p[:n])
		}
		return nil
	})
	return int(n), err
}

func (s *JavaStream) Skip(n int64) (int64, error) {
	var skipped int64
	err := s.jvm.Do(func(env jni.Env) error {
		var err error
		skipped, err = env.CallLongMethod(s.stream.Object(), s.cache.InputStream.Skip, jni.Long(n))
		return FromException(err, Subclasses(env, s.known))
	})
	return skipped, err
}

// Close closes the Java stream and releases its references.
func (s *JavaStream) Close() error {
	return s.jvm.Do(func(env jni.Env) error {
		err := env.CallVoidMethod(s.stream.Object(), s.cache.InputStream.Close)
		s.stream.Release(env)
		s.buf.Release(env)
		return FromException(err, Subclasses(env, s.known))
	})
}
