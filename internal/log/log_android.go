// SPDX-License-Identifier: Unlicense OR MIT

package log

/*
#cgo LDFLAGS: -llog

#include <stdlib.h>
#include <android/log.h>
*/
import "C"

import (
	"log"
	"log/slog"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Tag is the logcat tag of redirected output.
const Tag = "gdk"

var level = new(slog.LevelVar)

func init() {
	// Logcat stamps every entry.
	log.SetFlags(log.Flags() &^ log.LstdFlags)
	redirect(os.Stdout.Fd(), PriorityInfo)
	redirect(os.Stderr.Fd(), PriorityWarn)
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, false)))
}

// SetLevel changes the level of the default logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// redirect replaces fd with a pipe whose lines go to logcat, at def
// priority unless they carry a level.
func redirect(fd uintptr, def Priority) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	if err := unix.Dup3(int(w.Fd()), int(fd), unix.O_CLOEXEC); err != nil {
		panic(err)
	}
	go func() {
		tag := C.CString(Tag)
		defer C.free(unsafe.Pointer(tag))
		buf := make([]byte, MaxLine+1)
		pump(r, def, func(p Priority, line []byte) {
			n := copy(buf, line)
			buf[n] = 0
			C.__android_log_write(C.int(p), tag, (*C.char)(unsafe.Pointer(&buf[0])))
		})
		// w's fd lives on as fd; its finalizer must not close it.
		runtime.KeepAlive(w)
	}()
}
