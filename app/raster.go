// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// RasterContext draws a surface in software, straight into the native
// window buffer. Drag surfaces draw into their drag shadow instead.
type RasterContext struct {
	s *Surface

	// Frame state between BeginFrame and EndFrame.
	win NativeWindow
	buf WindowBuffer
	img *image.RGBA
}

// NewRasterContext returns a software context for s.
func (s *Surface) NewRasterContext() *RasterContext {
	return &RasterContext{s: s}
}

// BeginFrame starts a frame for the logical region and returns the image
// to draw into, in device pixels, together with the region extended to
// everything the frame repaints. Without a native window the image is
// empty and the frame does nothing.
func (c *RasterContext) BeginFrame(region image.Rectangle) (*image.RGBA, image.Rectangle) {
	s := c.s
	if s.kind == KindDrag {
		c.img = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		return c.img, region.Union(image.Rectangle{Max: s.Size()})
	}
	s.winMu.Lock()
	defer s.winMu.Unlock()
	c.img = image.NewRGBA(image.Rectangle{})
	w := s.win
	if w == nil {
		return c.img, region
	}
	w.Acquire()
	ww, wh := w.Size()
	dirty := deviceRect(region, s.scale).Intersect(image.Rect(0, 0, ww, wh))
	buf, err := w.Lock(dirty)
	if err != nil {
		w.Release()
		slog.Warn("app: failed to lock native window", "id", uint64(s.id), "err", err)
		return c.img, region
	}
	c.win, c.buf = w, buf
	c.img = image.NewRGBA(buf.Bounds)
	return c.img, region.Union(logicalRect(buf.Bounds, s.scale))
}

// EndFrame posts the frame.
func (c *RasterContext) EndFrame() error {
	s := c.s
	img := c.img
	c.img = nil
	if s.kind == KindDrag {
		return c.endShadow(img)
	}
	s.winMu.Lock()
	defer s.winMu.Unlock()
	w := c.win
	if w == nil {
		return nil
	}
	c.win = nil
	defer w.Release()
	copyBGRA(c.buf, img)
	c.buf = WindowBuffer{}
	return w.UnlockAndPost()
}

func (c *RasterContext) endShadow(img *image.RGBA) error {
	sess := c.s.drag.session
	if sess == nil || img == nil {
		return nil
	}
	b := img.Bounds()
	n := image.NewNRGBA(b)
	draw.Draw(n, b, img, b.Min, draw.Src)
	pix := make([]uint32, 0, b.Dx()*b.Dy())
	for i := 0; i < len(n.Pix); i += 4 {
		p := n.Pix[i : i+4 : i+4]
		pix = append(pix, uint32(p[3])<<24|uint32(p[0])<<16|uint32(p[1])<<8|uint32(p[2]))
	}
	return sess.UpdateShadow(pix, b.Dx(), b.Dy())
}

// copyBGRA reorders the premultiplied pixels of img into buf.
func copyBGRA(buf WindowBuffer, img *image.RGBA) {
	r := img.Rect
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := img.Pix[img.PixOffset(r.Min.X, y):][:n]
		dst := buf.Pix[y*buf.Stride+r.Min.X*4:][:n]
		for i := 0; i < n; i += 4 {
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = src[i+3]
		}
	}
}

// deviceRect returns the device pixels covering the logical r.
func deviceRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(math.Floor(float64(r.Min.X)*scale)), int(math.Floor(float64(r.Min.Y)*scale))),
		Max: image.Pt(int(math.Ceil(float64(r.Max.X)*scale)), int(math.Ceil(float64(r.Max.Y)*scale))),
	}
}

// logicalRect returns the logical units covering the device r.
func logicalRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(math.Floor(float64(r.Min.X)/scale)), int(math.Floor(float64(r.Min.Y)/scale))),
		Max: image.Pt(int(math.Ceil(float64(r.Max.X)/scale)), int(math.Ceil(float64(r.Max.Y)/scale))),
	}
}
