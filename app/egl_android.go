// SPDX-License-Identifier: Unlicense OR MIT

package app

/*
#include <android/native_window.h>
*/
import "C"

import (
	"fmt"

	"github.com/GNOME/gtk-sub015/internal/egl"
)

// androidEGL implements EGL for ANativeWindows.
type androidEGL struct {
	*egl.Context
}

// NewEGL returns an EGL context for the surfaces of the display.
func NewEGL() (EGL, error) {
	ctx, err := egl.NewContext()
	if err != nil {
		return nil, err
	}
	return &androidEGL{Context: ctx}, nil
}

func (c *androidEGL) CreateSurface(win NativeWindow) error {
	aw, ok := win.(*androidWindow)
	if !ok {
		return fmt.Errorf("app: %T is not an ANativeWindow", win)
	}
	// The buffer format must match the config's visual.
	C.ANativeWindow_setBuffersGeometry(aw.w, 0, 0, C.int32_t(c.Context.VisualID()))
	return c.Context.CreateSurface(egl.WindowType(aw.native()))
}

func (c *androidEGL) Release() {
	if c.Context != nil {
		c.Context.Release()
		c.Context = nil
	}
}
