// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		v, min, max float64
		want        float64
	}{
		{v: 0, min: 0, max: 10, want: 0},
		{v: 10, min: 0, max: 10, want: 1},
		{v: 5, min: 0, max: 10, want: 0.5},
		{v: -3, min: 0, max: 10, want: 0},
		{v: 13, min: 0, max: 10, want: 1},
		{v: 0, min: -1, max: 1, want: 0.5},
		// Empty ranges map to the lower bound.
		{v: 4, min: 2, max: 2, want: 0},
		{v: 4, min: 3, max: 1, want: 0},
	}
	for _, tt := range tests {
		if got := normalize(tt.v, tt.min, tt.max, 0, 1); got != tt.want {
			t.Errorf("normalize(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
	if got := normalize[float32](0.5, -1, 1, 0, 360); got != 270 {
		t.Errorf("ring angle %v, want 270", got)
	}
}

func TestTilt(t *testing.T) {
	tests := []struct {
		orientation, tilt float64
		x, y              float64
	}{
		{0, 0, 0, 0},
		{math.Pi / 2, math.Pi / 2, -1, 0},
		{0, math.Pi / 2, 0, 1},
		{math.Pi, math.Pi / 2, 0, -1},
		{-math.Pi / 2, math.Pi / 2, 1, 0},
	}
	for _, tt := range tests {
		x, y := tilt(tt.orientation, tt.tilt)
		if math.Abs(x-tt.x) > 1e-6 || math.Abs(y-tt.y) > 1e-6 {
			t.Errorf("tilt(%v, %v) = (%v, %v), want (%v, %v)", tt.orientation, tt.tilt, x, y, tt.x, tt.y)
		}
	}
}

func TestToolAxesWithoutDevice(t *testing.T) {
	a := toolAxes(nil, PointerSample{Axes: map[int32]float32{axisPressure: 0.7}})
	if a.Valid != 0 {
		t.Errorf("axes %+v reported without a device or tilt", a)
	}
}
