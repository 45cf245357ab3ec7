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
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// etaCheckTolerance bounds the acceptable difference between surface
// elevation interpolated from the combined depth-plus-bathymetry field and
// the sum of the separately interpolated parts.
const etaCheckTolerance = 1e-12

// Patch describes one rectangular block of the solver mesh at a single
// refinement level. Q holds the conserved quantities with shape
// (nvars, nx, ny) where nx and ny include a margin of NGhost cells on
// every side; channel ordering matches the buffer layout (depth,
// x-momentum, y-momentum). Aux holds auxiliary fields with the same cell
// layout; channel 0 is bathymetry.
type Patch struct {
	Q   *sparse.DenseArray
	Aux *sparse.DenseArray

	NGhost     int
	XLow, YLow float64 // lower-left corner of the non-ghost region
	Dx, Dy     float64
}

// nx and ny return the interior (non-ghost) cell counts.
func (p *Patch) nx() int { return p.Q.Shape[1] - 2*p.NGhost }
func (p *Patch) ny() int { return p.Q.Shape[2] - 2*p.NGhost }

// Bounds returns the bounding box of the patch's non-ghost region.
func (p *Patch) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: p.XLow, Y: p.YLow},
		Max: geom.Point{
			X: p.XLow + float64(p.nx())*p.Dx,
			Y: p.YLow + float64(p.ny())*p.Dy,
		},
	}
}

// Sampler maps solver patch data onto the fixed output grids. The zero
// value samples with the default piecewise-constant method and logs
// diagnostics to the standard logger.
type Sampler struct {
	Method Method
	Log    logrus.FieldLogger
}

// Sample interpolates the patch's field values onto every cell of g whose
// center lies inside the patch's non-ghost bounding box, writing the
// result into the buffer selected by gen and stamping each touched cell
// with the sampling time t. Cells outside the patch are left untouched,
// so a later call for a finer patch overwrites any coarser values at the
// same cells; this last-writer-wins ordering is the caller's
// responsibility, and the Sampler performs no conflict detection.
//
// Surface elevation is interpolated from the already-combined
// depth-plus-bathymetry field rather than summed from separately
// interpolated parts, which would blend wet and dry source cells
// differently and create shoreline artifacts. Disagreement with the
// separate-parts sum is logged but is not an error.
func (s *Sampler) Sample(g *FGoutGrid, p *Patch, gen Generation, t float64) error {
	buf, err := g.Buffer(gen)
	if err != nil {
		return err
	}
	if p.nx() < 2 || p.ny() < 2 {
		return fmt.Errorf("fgout: patch at (%g, %g) has fewer than 2 interior cells per axis",
			p.XLow, p.YLow)
	}
	nvars := p.Q.Shape[0]
	if nvars < VarElevation {
		return fmt.Errorf("fgout: patch at (%g, %g) carries %d channels; need at least %d",
			p.XLow, p.YLow, nvars, VarElevation)
	}

	b := p.Bounds()
	// Centers of the first interior source cells.
	xc0 := p.XLow + 0.5*p.Dx
	yc0 := p.YLow + 0.5*p.Dy

	var etaMismatch int
	var etaMaxDiff float64
	for i := 0; i < g.Mx; i++ {
		for j := 0; j < g.My; j++ {
			x, y := g.cellCenter(i, j)
			if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
				continue
			}
			// Locate the enclosing source cell pair, clamping so the
			// stencil never steps past the last interior cell when the
			// query lands exactly on the upper edge.
			ic := clampIndex(int(math.Floor((x-xc0)/p.Dx)), p.nx()-2)
			jc := clampIndex(int(math.Floor((y-yc0)/p.Dy)), p.ny()-2)
			geo := Geometry{
				XOff: (x-xc0)/p.Dx - float64(ic),
				YOff: (y-yc0)/p.Dy - float64(jc),
			}
			// Source array indices include the ghost margin.
			is, js := p.NGhost+ic, p.NGhost+jc

			for iv := 0; iv < VarElevation; iv++ {
				st := stencil(p.Q, iv, is, js)
				buf.Elements[buf.Index1d(iv, i, j)] = s.Method.Interpolate(st, geo)
			}

			hSt := stencil(p.Q, VarDepth, is, js)
			bSt := stencil(p.Aux, 0, is, js)
			etaSt := Stencil{
				V00: hSt.V00 + bSt.V00,
				V10: hSt.V10 + bSt.V10,
				V01: hSt.V01 + bSt.V01,
				V11: hSt.V11 + bSt.V11,
			}
			eta := s.Method.Interpolate(etaSt, geo)
			buf.Elements[buf.Index1d(VarElevation, i, j)] = eta

			etaSep := s.Method.Interpolate(hSt, geo) + s.Method.Interpolate(bSt, geo)
			if d := math.Abs(eta - etaSep); d > etaCheckTolerance*math.Max(1, math.Abs(eta)) {
				etaMismatch++
				if d > etaMaxDiff {
					etaMaxDiff = d
				}
			}

			buf.Elements[buf.Index1d(varTimeStamp, i, j)] = t
		}
	}
	if etaMismatch > 0 {
		s.logger().WithFields(logrus.Fields{
			"grid":    g.ID,
			"time":    t,
			"cells":   etaMismatch,
			"maxDiff": etaMaxDiff,
		}).Warn("fgout: surface elevation from the combined field differs from depth plus bathymetry")
	}
	return nil
}

func (s *Sampler) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// clampIndex limits a source cell index to [0, max].
func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// stencil gathers the 2x2 neighborhood of channel iv with lower-left
// corner at source cell (i, j).
func stencil(a *sparse.DenseArray, iv, i, j int) Stencil {
	return Stencil{
		V00: a.Get(iv, i, j),
		V10: a.Get(iv, i+1, j),
		V01: a.Get(iv, i, j+1),
		V11: a.Get(iv, i+1, j+1),
	}
}
