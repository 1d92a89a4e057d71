// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"github.com/GNOME/gtk-sub015/internal/jni"
)

// readMotionEvent snapshots an android.view.MotionEvent. The event object
// is only valid during the callback.
func (b *javaBackend) readMotionEvent(env jni.Env, obj jni.Object, stream int32) (*MotionEvent, error) {
	c := &b.cache.MotionEvent
	r := getter{env: env, obj: obj}
	ev := &MotionEvent{
		Stream:      stream,
		Action:      r.int(c.GetActionMasked),
		ActionIndex: r.int(c.GetActionIndex),
		ButtonState: r.int(c.GetButtonState),
		MetaState:   r.int(c.GetMetaState),
		Source:      r.int(c.GetSource),
		DeviceID:    r.int(c.GetDeviceID),
		DownTime:    r.long(c.GetDownTime),
		EventTime:   r.long(c.GetEventTime),
	}
	n := r.int(c.GetPointerCount)
	for i := range n {
		idx := jni.Int(i)
		p := PointerSample{
			ID:       r.int(c.GetPointerID, idx),
			ToolType: r.int(c.GetToolType, idx),
			X:        r.float(c.GetAxisValue, jni.Int(axisX), idx),
			Y:        r.float(c.GetAxisValue, jni.Int(axisY), idx),
			Axes:     make(map[int32]float32, len(sampledAxes)),
		}
		for _, a := range sampledAxes {
			p.Axes[a] = r.float(c.GetAxisValue, jni.Int(a), idx)
		}
		ev.Pointers = append(ev.Pointers, p)
	}
	if r.err != nil {
		return nil, r.err
	}
	dev, err := b.device(env, ev.DeviceID)
	if err != nil {
		return nil, err
	}
	ev.Device = dev
	return ev, nil
}

// device returns the axis ranges of input device id, reading them once.
func (b *javaBackend) device(env jni.Env, id int32) (*InputDevice, error) {
	b.mu.Lock()
	dev, ok := b.devices[id]
	b.mu.Unlock()
	if ok {
		return dev, nil
	}
	c := b.cache
	_, err := jni.WithLocalFrame(env, func(fr *jni.Frame) (jni.Object, error) {
		if err := fr.Reserve(1 + len(rangedAxes)); err != nil {
			return 0, err
		}
		obj, err := env.CallStaticObjectMethod(c.InputDevice.Class, c.InputDevice.GetDevice, jni.Int(id))
		if err != nil || obj == 0 {
			return 0, err
		}
		r := getter{env: env, obj: obj}
		dev = &InputDevice{
			ID:      id,
			Sources: r.int(c.InputDevice.GetSources),
			Ranges:  make(map[int32]AxisRange),
		}
		for _, a := range rangedAxes {
			mr, err := env.CallObjectMethod(obj, c.InputDevice.GetMotionRange, jni.Int(a))
			if err != nil {
				return 0, err
			}
			if mr == 0 {
				continue
			}
			rr := getter{env: env, obj: mr}
			dev.Ranges[a] = AxisRange{
				Min: rr.float(c.MotionRange.GetMin),
				Max: rr.float(c.MotionRange.GetMax),
			}
			if rr.err != nil {
				return 0, rr.err
			}
		}
		return 0, r.err
	})
	if err != nil {
		return nil, err
	}
	if dev != nil {
		b.mu.Lock()
		b.devices[id] = dev
		b.mu.Unlock()
	}
	return dev, nil
}

// readKeyEvent snapshots an android.view.KeyEvent.
func (b *javaBackend) readKeyEvent(env jni.Env, obj jni.Object) (*KeyEvent, error) {
	c := &b.cache.KeyEvent
	r := getter{env: env, obj: obj}
	ev := &KeyEvent{
		Action:    r.int(c.GetAction),
		KeyCode:   r.int(c.GetKeyCode),
		ScanCode:  r.int(c.GetScanCode),
		MetaState: r.int(c.GetMetaState),
		Source:    r.int(c.GetSource),
		DeviceID:  r.int(c.GetDeviceID),
		EventTime: r.long(c.GetEventTime),
	}
	return ev, r.err
}

// readDragEvent snapshots an android.view.DragEvent.
func (b *javaBackend) readDragEvent(env jni.Env, obj jni.Object) (DragEvent, error) {
	c := &b.cache.DragEvent
	r := getter{env: env, obj: obj}
	ev := DragEvent{
		Action: r.int(c.GetAction),
		X:      float64(r.float(c.GetX)),
		Y:      float64(r.float(c.GetY)),
	}
	return ev, r.err
}

// getter calls getters on obj, keeping the first error.
type getter struct {
	env jni.Env
	obj jni.Object
	err error
}

func (r *getter) int(m jni.MethodID, args ...jni.Value) int32 {
	if r.err != nil {
		return 0
	}
	v, err := r.env.CallIntMethod(r.obj, m, args...)
	r.err = err
	return v
}

func (r *getter) long(m jni.MethodID, args ...jni.Value) int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.env.CallLongMethod(r.obj, m, args...)
	r.err = err
	return v
}

func (r *getter) float(m jni.MethodID, args ...jni.Value) float32 {
	if r.err != nil {
		return 0
	}
	v, err := r.env.CallFloatMethod(r.obj, m, args...)
	r.err = err
	return v
}
