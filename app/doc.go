// SPDX-License-Identifier: Unlicense OR MIT

/*
Package app implements the Android side of a windowing backend: surfaces
backed by platform views, the events they receive and the seat that routes
input to them.

# Display and surfaces

A Display owns every Surface and runs on a main loop (package
internal/mainloop). Surfaces are created on the loop and named by a
handle.ID that the platform side stores and passes back with every
callback:

	loop := mainloop.New()
	d := app.NewDisplay(loop, app.WithHandler(func(s *app.Surface, e event.Event) {
		switch e := e.(type) {
		case system.FrameEvent:
			// Draw e.Region.
		case system.DeleteEvent:
			s.Destroy()
		}
	}))
	top := d.NewToplevel()
	top.Present()
	go loop.Run(ctx)

A Toplevel is shown in its own activity. A Popup is placed relative to its
parent through a PopupLayout and shown inside the activity of its
toplevel. A DragSurface carries the pixels of a drag shadow and has no
view of its own.

# Threads

Platform callbacks (the Notify methods and the entry points in
java_input.go and os_android.go) may arrive on any thread. They look the
surface up in the registry and queue their effect on the main loop;
callbacks naming unknown or destroyed surfaces are dropped.

Visibility changes are the exception. NotifyVisibility parks the main loop
while the native window is replaced, so that no task observes a mapped
surface without a window or a window for an unmapped surface.

# Drawing

RasterContext draws into the native window's buffer with the CPU;
GLContext binds an EGL surface to it. Both follow the window across
visibility changes.
*/
package app
