// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/GNOME/gtk-sub015/internal/handle"
	"github.com/GNOME/gtk-sub015/internal/jni"
	"github.com/GNOME/gtk-sub015/internal/mainloop"
	"github.com/GNOME/gtk-sub015/io/event"
)

var errFake = errors.New("fake failure")

type recorded struct {
	s *Surface
	e event.Event
}

type recorder struct {
	mu     sync.Mutex
	events []recorded
}

func (r *recorder) handle(s *Surface, e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{s, e})
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// of returns the events of type T delivered to s.
func of[T event.Event](r *recorder, s *Surface) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []T
	for _, ev := range r.events {
		if e, ok := ev.e.(T); ok && (s == nil || ev.s == s) {
			res = append(res, e)
		}
	}
	return res
}

func newTestDisplay(t *testing.T, opts ...Option) (*Display, *recorder) {
	t.Helper()
	r := new(recorder)
	opts = append([]Option{WithHandler(r.handle), WithPlatform(new(fakePlatform))}, opts...)
	return NewDisplay(mainloop.New(), opts...), r
}

// runLoop runs the main loop of d until the test ends.
func runLoop(t *testing.T, d *Display) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// drain runs the queued main loop tasks.
func drain(d *Display) {
	for d.loop.Iterate() {
	}
}

type fakePlatform struct {
	claim    bool
	claimed  []handle.ID
	launched []handle.ID
	err      error
}

func (p *fakePlatform) ClaimRoot(id handle.ID) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	if p.claim {
		p.claim = false
		p.claimed = append(p.claimed, id)
		return true, nil
	}
	return false, nil
}

func (p *fakePlatform) LaunchToplevel(id handle.ID) error {
	if p.err != nil {
		return p.err
	}
	p.launched = append(p.launched, id)
	return nil
}

type fakePeer struct {
	mu         sync.Mutex
	visibility []bool
	repos      []image.Rectangle
	cursors    []string
	win        *fakeWindow
	winErr     error
	session    *fakeSession
	startErr   error
	visErr     error
	dropped    int
	released   int
	// onWindow runs when the window is requested.
	onWindow func()
}

func (p *fakePeer) SetVisibility(visible bool) error {
	if p.visErr != nil {
		return p.visErr
	}
	p.visibility = append(p.visibility, visible)
	return nil
}

func (p *fakePeer) Reposition(x, y, width, height int) error {
	p.repos = append(p.repos, image.Rect(x, y, x+width, y+height))
	return nil
}

func (p *fakePeer) NativeWindow() (NativeWindow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onWindow != nil {
		p.onWindow()
	}
	if p.winErr != nil {
		return nil, p.winErr
	}
	if p.win == nil {
		return nil, nil
	}
	p.win.Acquire()
	return p.win, nil
}

func (p *fakePeer) SetCursor(name string) error {
	p.cursors = append(p.cursors, name)
	return nil
}

func (p *fakePeer) StartDrag(id handle.ID, actions DragAction) (DragSession, error) {
	if p.startErr != nil {
		return nil, p.startErr
	}
	p.session = new(fakeSession)
	return p.session, nil
}

func (p *fakePeer) Drop() error {
	p.dropped++
	return nil
}

func (p *fakePeer) Release() {
	p.released++
}

type fakeContainer struct {
	grabbed Peer
	grabs   int
	grabErr error
	pushed  map[handle.ID]image.Rectangle
}

func (c *fakeContainer) SetGrabbedSurface(p Peer) error {
	if c.grabErr != nil && p != nil {
		return c.grabErr
	}
	c.grabbed = p
	c.grabs++
	return nil
}

func (c *fakeContainer) PushPopup(id handle.ID, x, y, width, height int) error {
	if c.pushed == nil {
		c.pushed = make(map[handle.ID]image.Rectangle)
	}
	c.pushed[id] = image.Rect(x, y, x+width, y+height)
	return nil
}

type configuration struct {
	color      uint32
	fullscreen bool
}

type fakeActivity struct {
	container   fakeContainer
	attached    int
	titles      []string
	configs     []configuration
	started     []int32
	finishedReq []int32
	finished    int
	released    int
	startErr    error
}

func (a *fakeActivity) Container() (Container, error) { return &a.container, nil }

func (a *fakeActivity) AttachToplevelSurface() error {
	a.attached++
	return nil
}

func (a *fakeActivity) PostTitle(title string) error {
	a.titles = append(a.titles, title)
	return nil
}

func (a *fakeActivity) PostWindowConfiguration(color uint32, fullscreen bool) error {
	a.configs = append(a.configs, configuration{color, fullscreen})
	return nil
}

func (a *fakeActivity) StartActivityForResult(intent jni.Object, requestCode int32) error {
	if a.startErr != nil {
		return a.startErr
	}
	a.started = append(a.started, requestCode)
	return nil
}

func (a *fakeActivity) FinishActivity(requestCode int32) error {
	a.finishedReq = append(a.finishedReq, requestCode)
	return nil
}

func (a *fakeActivity) Finish() error {
	a.finished++
	return nil
}

func (a *fakeActivity) Release() { a.released++ }

// fakeWindow is a native window backed by a byte slice. Lock returns at
// least grow.
type fakeWindow struct {
	mu      sync.Mutex
	w, h    int
	pix     []byte
	refs    int
	grow    image.Rectangle
	lockErr error
	locked  bool
	posted  int
}

func newFakeWindow(w, h int) *fakeWindow {
	return &fakeWindow{w: w, h: h, pix: make([]byte, w*h*4)}
}

func (w *fakeWindow) Acquire() {
	w.mu.Lock()
	w.refs++
	w.mu.Unlock()
}

func (w *fakeWindow) Release() {
	w.mu.Lock()
	w.refs--
	w.mu.Unlock()
}

func (w *fakeWindow) references() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs
}

func (w *fakeWindow) Size() (int, int) { return w.w, w.h }

func (w *fakeWindow) Lock(dirty image.Rectangle) (WindowBuffer, error) {
	if w.lockErr != nil {
		return WindowBuffer{}, w.lockErr
	}
	w.locked = true
	b := dirty.Union(w.grow).Intersect(image.Rect(0, 0, w.w, w.h))
	return WindowBuffer{Bounds: b, Stride: w.w * 4, Pix: w.pix}, nil
}

func (w *fakeWindow) UnlockAndPost() error {
	w.locked = false
	w.posted++
	return nil
}

type fakeEGL struct {
	surfaces []NativeWindow
	bound    bool
	current  bool
	swaps    int
	released bool
}

func (e *fakeEGL) CreateSurface(win NativeWindow) error {
	e.surfaces = append(e.surfaces, win)
	e.bound = true
	return nil
}

func (e *fakeEGL) ReleaseSurface() { e.bound = false }

func (e *fakeEGL) MakeCurrent() error {
	e.current = true
	return nil
}

func (e *fakeEGL) ReleaseCurrent() { e.current = false }

func (e *fakeEGL) SwapBuffers() error {
	e.swaps++
	return nil
}

func (e *fakeEGL) Release() { e.released = true }

type fakeSession struct {
	pix       []uint32
	w, h      int
	cancelled bool
	released  int
}

func (s *fakeSession) UpdateShadow(pix []uint32, width, height int) error {
	s.pix, s.w, s.h = pix, width, height
	return nil
}

func (s *fakeSession) Cancel() error {
	s.cancelled = true
	return nil
}

func (s *fakeSession) Release() { s.released++ }

// showSurface performs the visibility handshake of s inline, the way the
// main loop does when it is the caller.
func showSurface(s *Surface, visible bool) {
	s.swapWindow(visible)
	s.applyVisibility(visible)
}

// mappedToplevel returns a presented toplevel bound to an activity and a
// view with a window, laid out at 200x100 pixels with scale 2 and mapped.
func mappedToplevel(t *testing.T, d *Display) (*Toplevel, *fakeActivity, *fakePeer) {
	t.Helper()
	top := d.NewToplevel()
	if err := top.Present(); err != nil {
		t.Fatal(err)
	}
	act := new(fakeActivity)
	if err := d.BindToplevel(top.ID(), act); err != nil {
		t.Fatal(err)
	}
	peer := &fakePeer{win: newFakeWindow(200, 100)}
	if err := d.BindSurface(top.ID(), peer); err != nil {
		t.Fatal(err)
	}
	d.NotifyLayoutSurface(top.ID(), 200, 100, 2)
	d.NotifyLayoutPosition(top.ID(), 0, 0)
	drain(d)
	showSurface(top.Surface, true)
	drain(d)
	if !top.Mapped() {
		t.Fatal("toplevel not mapped")
	}
	return top, act, peer
}

// mappedPopup returns a mapped popup of parent bound to its own view.
func mappedPopup(t *testing.T, d *Display, parent *Surface, autohide bool) (*Popup, *fakePeer) {
	t.Helper()
	p, err := d.NewPopup(parent, PopupLayout{
		AnchorRect: image.Rect(10, 10, 20, 20),
		RectAnchor: GravitySouthWest,
		Size:       image.Pt(30, 20),
	}, autohide)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Present(); err != nil {
		t.Fatal(err)
	}
	peer := new(fakePeer)
	if err := d.BindSurface(p.ID(), peer); err != nil {
		t.Fatal(err)
	}
	d.NotifyLayoutPosition(p.ID(), 20, 60)
	drain(d)
	showSurface(p.Surface, true)
	drain(d)
	if !p.Mapped() {
		t.Fatal("popup not mapped")
	}
	return p, peer
}
