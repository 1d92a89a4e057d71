// SPDX-License-Identifier: Unlicense OR MIT

// Package egl wraps the EGL context and window surface used by the
// accelerated drawing path.
package egl

import "strings"

// Attribute names and values from EGL/egl.h and EGL/eglext.h.
const (
	attrAlphaSize         = 0x3021
	attrBlueSize          = 0x3022
	attrGreenSize         = 0x3023
	attrRedSize           = 0x3024
	attrDepthSize         = 0x3025
	attrConfigCaveat      = 0x3027
	attrSurfaceType       = 0x3033
	attrNone              = 0x3038
	attrRenderableType    = 0x3040
	attrExtensions        = 0x3055
	attrNativeVisualID    = 0x302e
	attrClientVersion     = 0x3098
	attrColorspace        = 0x309d
	valueColorspaceSRGB   = 0x3089
	valueOpenGLES2Bit     = 0x4
	valueWindowBit        = 0x4
	extColorspace         = "EGL_KHR_gl_colorspace"
	extSurfacelessContext = "EGL_KHR_surfaceless_context"
)

// clientVersions lists the GLES versions tried, newest first.
var clientVersions = []int32{3, 2}

type extensions map[string]bool

func parseExtensions(s string) extensions {
	exts := make(extensions)
	for _, e := range strings.Fields(s) {
		exts[e] = true
	}
	return exts
}

// srgbCapable reports whether window surfaces can use an sRGB colorspace:
// always from EGL 1.5, through an extension before.
func srgbCapable(major, minor int32, exts extensions) bool {
	return major > 1 || minor >= 5 || exts[extColorspace]
}

// configAttribs requests an 8 bit RGBA window config without caveats.
func configAttribs(srgb bool) []int32 {
	a := []int32{
		attrRenderableType, valueOpenGLES2Bit,
		attrSurfaceType, valueWindowBit,
		attrRedSize, 8,
		attrGreenSize, 8,
		attrBlueSize, 8,
		attrAlphaSize, 8,
		attrConfigCaveat, attrNone,
	}
	if srgb {
		a = append(a, attrDepthSize, 16)
	}
	return append(a, attrNone)
}

func surfaceAttribs(srgb bool) []int32 {
	if srgb {
		return []int32{attrColorspace, valueColorspaceSRGB, attrNone}
	}
	return []int32{attrNone}
}

func contextAttribs(version int32) []int32 {
	return []int32{attrClientVersion, version, attrNone}
}
