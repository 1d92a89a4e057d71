// SPDX-License-Identifier: Unlicense OR MIT

package jni

import "golang.org/x/sys/unix"

// threadID identifies the OS thread of a goroutine locked to it.
func threadID() int {
	return unix.Gettid()
}
