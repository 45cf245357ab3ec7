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

	"gonum.org/v1/gonum/floats"
)

// Method selects the point interpolation strategy used to evaluate a
// source field at an output cell center.
type Method int

const (
	// PiecewiseConstant takes the value of the nearest of the four
	// candidate source cells, resolving offset ties toward the
	// higher-index neighbor. This is the default: it never blends wet
	// and dry cells, so it cannot create spurious intermediate states
	// near the shoreline.
	PiecewiseConstant Method = iota
	// Bilinear blends the four neighbors by their fractional offsets.
	// Not the default; near the shoreline it mixes wet and dry values.
	Bilinear
)

// Stencil is the 2x2 source-cell neighborhood around a query point. V00
// is the lower-left value; the first index increases with x and the
// second with y.
type Stencil struct {
	V00, V10, V01, V11 float64
}

// Geometry locates a query point inside its stencil: XOff and YOff are
// the fractional offsets from the lower-left cell center, in cell units,
// each in [0, 1].
type Geometry struct {
	XOff, YOff float64
}

// Interpolate evaluates the stencil at the point described by geo.
func (m Method) Interpolate(s Stencil, geo Geometry) float64 {
	if m == Bilinear {
		return s.V00*(1-geo.XOff)*(1-geo.YOff) +
			s.V10*geo.XOff*(1-geo.YOff) +
			s.V01*(1-geo.XOff)*geo.YOff +
			s.V11*geo.XOff*geo.YOff
	}
	// Piecewise constant. Ties at 0.5 resolve to the higher-index
	// neighbor, independently in each axis.
	if geo.XOff >= 0.5 {
		if geo.YOff >= 0.5 {
			return s.V11
		}
		return s.V10
	}
	if geo.YOff >= 0.5 {
		return s.V01
	}
	return s.V00
}

// TimeBlend stores in dst the linear blend (1-frac)*before + frac*after
// of two equal-length sample vectors, returning dst. If dst is nil a new
// slice is allocated. The default compositing policy does not use it (see
// CompositeNearest), but it is kept as a reusable primitive for the
// time-blended policy.
func TimeBlend(frac float64, before, after, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(before))
	}
	floats.ScaleTo(dst, 1-frac, before)
	floats.AddScaled(dst, frac, after)
	return dst
}

// Unset returns the quiet-NaN sentinel used to prefill sample buffers, so
// that cells never covered by any solver patch remain detectably invalid
// instead of silently reading as zero.
func Unset() float64 {
	return math.NaN()
}

// IsUnset reports whether v is the never-sampled sentinel.
func IsUnset(v float64) bool {
	return math.IsNaN(v)
}
