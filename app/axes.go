// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/GNOME/gtk-sub015/io/pointer"
)

// normalize maps v from [min, max] onto [from, to], clamping values
// outside the source range. An empty source range maps to from.
func normalize[T constraints.Float](v, min, max, from, to T) T {
	if max <= min {
		return from
	}
	if v <= min {
		return from
	}
	if v >= max {
		return to
	}
	return from + (v-min)/(max-min)*(to-from)
}

// tilt converts the orientation and tilt angles of a stylus, in radians,
// to tilts along the X and Y axes in [-1, 1].
func tilt(orientation, tilt float64) (x, y float64) {
	s := math.Sin(tilt)
	x = math.Asin(-math.Sin(orientation)*s) / (math.Pi / 2)
	y = math.Asin(math.Cos(orientation)*s) / (math.Pi / 2)
	return x, y
}

// toolAxes normalizes the axes of sample p with the ranges of dev.
func toolAxes(dev *InputDevice, p PointerSample) pointer.Axes {
	var a pointer.Axes
	if r, ok := dev.Range(axisPressure); ok {
		a.Pressure = float64(normalize(p.Axis(axisPressure), r.Min, r.Max, 0, 1))
		a.Valid |= pointer.AxisPressure
	}
	if r, ok := dev.Range(axisDistance); ok {
		a.Distance = float64(normalize(p.Axis(axisDistance), r.Min, r.Max, 0, 1))
		a.Valid |= pointer.AxisDistance
	}
	if _, ok := p.Axes[axisTilt]; ok {
		a.XTilt, a.YTilt = tilt(float64(p.Axis(axisOrientation)), float64(p.Axis(axisTilt)))
		a.Valid |= pointer.AxisXTilt | pointer.AxisYTilt
	}
	return a
}
