/*
Copyright © 2026 the GeoClaw authors.
This file is part of GeoClaw.

GeoClaw is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GeoClaw is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GeoClaw.  If not, see <http://www.gnu.org/licenses/>.
*/

package fgout

import (
	"math"
	"testing"
)

func TestPiecewiseConstant(t *testing.T) {
	s := Stencil{V00: 1, V10: 2, V01: 3, V11: 4}
	tests := []struct {
		xoff, yoff, want float64
	}{
		{0.49, 0.49, 1}, // nearest is the lower-left neighbor
		{0.5, 0.5, 4},   // ties resolve toward the higher index
		{0.5, 0.49, 2},  // tie in x only
		{0.49, 0.5, 3},  // tie in y only
		{0, 0, 1},
		{1, 1, 4},
	}
	for _, test := range tests {
		got := PiecewiseConstant.Interpolate(s, Geometry{XOff: test.xoff, YOff: test.yoff})
		if got != test.want {
			t.Errorf("offsets (%g, %g): got %g, want %g", test.xoff, test.yoff, got, test.want)
		}
	}
}

func TestBilinear(t *testing.T) {
	s := Stencil{V00: 1, V10: 2, V01: 3, V11: 4}
	tests := []struct {
		xoff, yoff, want float64
	}{
		{0, 0, 1},
		{1, 0, 2},
		{0, 1, 3},
		{1, 1, 4},
		{0.5, 0.5, 2.5},
		{0.25, 0, 1.25},
	}
	for _, test := range tests {
		got := Bilinear.Interpolate(s, Geometry{XOff: test.xoff, YOff: test.yoff})
		if math.Abs(got-test.want) > testTolerance {
			t.Errorf("offsets (%g, %g): got %g, want %g", test.xoff, test.yoff, got, test.want)
		}
	}
}

// Bilinear interpolation is linear in the field values, so interpolating a
// combined field must agree with the sum of the separately interpolated
// parts up to rounding; the sampler relies on this for its elevation
// cross-check.
func TestBilinearLinearity(t *testing.T) {
	a := Stencil{V00: 1.5, V10: -2, V01: 0.25, V11: 7}
	b := Stencil{V00: -10, V10: -10.5, V01: -9.75, V11: -11}
	sum := Stencil{
		V00: a.V00 + b.V00,
		V10: a.V10 + b.V10,
		V01: a.V01 + b.V01,
		V11: a.V11 + b.V11,
	}
	geo := Geometry{XOff: 0.3, YOff: 0.8}
	combined := Bilinear.Interpolate(sum, geo)
	parts := Bilinear.Interpolate(a, geo) + Bilinear.Interpolate(b, geo)
	if math.Abs(combined-parts) > 1e-12 {
		t.Errorf("combined %g differs from sum of parts %g", combined, parts)
	}
}

func TestTimeBlend(t *testing.T) {
	before := []float64{0, 10, -4}
	after := []float64{4, 20, -4}
	got := TimeBlend(0.25, before, after, nil)
	want := []float64{1, 12.5, -4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > testTolerance {
			t.Errorf("element %d: got %g, want %g", i, got[i], want[i])
		}
	}

	// Endpoint fractions reproduce the inputs exactly.
	dst := make([]float64, len(before))
	TimeBlend(0, before, after, dst)
	for i := range before {
		if dst[i] != before[i] {
			t.Errorf("frac 0 element %d: got %g, want %g", i, dst[i], before[i])
		}
	}
	TimeBlend(1, before, after, dst)
	for i := range after {
		if dst[i] != after[i] {
			t.Errorf("frac 1 element %d: got %g, want %g", i, dst[i], after[i])
		}
	}
}

func TestUnsetSentinel(t *testing.T) {
	if !IsUnset(Unset()) {
		t.Error("Unset() should be detected by IsUnset")
	}
	for _, v := range []float64{0, -0, 1e-300, math.Inf(1)} {
		if IsUnset(v) {
			t.Errorf("IsUnset(%g) should be false", v)
		}
	}
}
