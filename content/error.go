// SPDX-License-Identifier: Unlicense OR MIT

// Package content maps documents served by Android content providers onto
// file semantics: exception classes become I/O error kinds, provider
// query rows become file info and platform input streams become
// io.Readers.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/refcache"
)

// ErrorKind classifies a failed content operation.
type ErrorKind uint8

const (
	Unknown ErrorKind = iota
	NotFound
	PermissionDenied
	NotEmpty
	Exists
	WouldRecurse
	NotDirectory
	InvalidFilename
	Closed
	BrokenPipe
)

// Error is a content operation failure derived from a Java exception.
type Error struct {
	Kind ErrorKind
	// Class is the binary name of the exception, if any.
	Class   string
	Message string
}

// kinds maps exception classes to error kinds. The first class the
// exception is an instance of wins.
var kinds = []struct {
	class string
	kind  ErrorKind
}{
	{"java.io.EOFException", BrokenPipe},
	{"java.io.FileNotFoundException", NotFound},
	{"java.nio.file.AccessDeniedException", PermissionDenied},
	{"java.nio.file.DirectoryNotEmptyException", NotEmpty},
	{"java.nio.file.FileAlreadyExistsException", Exists},
	{"java.nio.file.FileSystemLoopException", PermissionDenied},
	{"java.nio.file.NoSuchFileException", WouldRecurse},
	{"java.nio.file.NotDirectoryException", NotDirectory},
	{"java.net.MalformedURLException", InvalidFilename},
	{"java.nio.channels.ClosedChannelException", Closed},
}

// IsInstance reports whether exceptions of class are instances of target.
// Both are binary names such as "java.io.EOFException".
type IsInstance func(class, target string) bool

// SameClass is the IsInstance that ignores subclassing.
func SameClass(class, target string) bool {
	return class == target
}

// ErrorFor maps an exception of the given class to an *Error. A nil
// isInstance matches class names exactly.
func ErrorFor(class, message string, isInstance IsInstance) *Error {
	if isInstance == nil {
		isInstance = SameClass
	}
	e := &Error{Class: class, Message: message}
	for _, k := range kinds {
		if isInstance(class, k.class) {
			e.Kind = k.kind
			break
		}
	}
	return e
}

// FromException converts err into an *Error when it is a Java exception
// and returns it unchanged otherwise.
func FromException(err error, isInstance IsInstance) error {
	var ex *jni.Exception
	if !errors.As(err, &ex) {
		return err
	}
	return ErrorFor(ex.Class, ex.Message, isInstance)
}

// Subclasses returns an IsInstance that resolves classes through env and
// honours Java subclassing. Targets found in known are used without a
// lookup. Classes that cannot be resolved match nothing.
func Subclasses(env jni.Env, known map[string]jni.Class) IsInstance {
	return func(class, target string) bool {
		if class == target {
			return true
		}
		sub, err := env.FindClass(strings.ReplaceAll(class, ".", "/"))
		if err != nil {
			return false
		}
		defer env.DeleteLocalRef(jni.Object(sub))
		sup, ok := known[target]
		if !ok {
			if sup, err = env.FindClass(strings.ReplaceAll(target, ".", "/")); err != nil {
				return false
			}
			defer env.DeleteLocalRef(jni.Object(sup))
		}
		return env.IsAssignableFrom(sub, sup)
	}
}

// knownClasses indexes the exception classes resolved in x by binary name.
func knownClasses(x *refcache.Exceptions) map[string]jni.Class {
	return map[string]jni.Class{
		"java.io.EOFException":                     x.EOF,
		"java.io.FileNotFoundException":            x.NotFound,
		"java.nio.file.AccessDeniedException":      x.AccessDenied,
		"java.nio.file.DirectoryNotEmptyException": x.NotEmpty,
		"java.nio.file.FileAlreadyExistsException": x.Exists,
		"java.nio.file.FileSystemLoopException":    x.Loop,
		"java.nio.file.NoSuchFileException":        x.NoFile,
		"java.nio.file.NotDirectoryException":      x.NotDir,
		"java.net.MalformedURLException":           x.MalformedURI,
		"java.nio.channels.ClosedChannelException": x.ChannelClosed,
	}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content: %v", e.Kind)
	}
	return fmt.Sprintf("content: %v: %s", e.Kind, e.Message)
}

// Is reports whether target is the ErrorKind of e, so that
// errors.Is(err, content.NotFound) works.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (k ErrorKind) Error() string {
	return k.String()
}

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case NotEmpty:
		return "directory not empty"
	case Exists:
		return "already exists"
	case WouldRecurse:
		return "would recurse"
	case NotDirectory:
		return "not a directory"
	case InvalidFilename:
		return "invalid filename"
	case Closed:
		return "closed"
	case BrokenPipe:
		return "broken pipe"
	default:
		return "unknown error"
	}
}
