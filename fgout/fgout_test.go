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

	"github.com/ctessum/sparse"
)

func validGrid() *FGoutGrid {
	return &FGoutGrid{
		ID: 1, PointStyle: PointStyleGrid,
		Mx: 10, My: 20,
		XLow: -5, YLow: 0, XHi: 5, YHi: 10,
		StartTime: 0, EndTime: 10, NumOutput: 5,
		Format: FormatAscii,
	}
}

func TestSetup(t *testing.T) {
	g := validGrid()
	if err := g.Setup(false, 0); err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.Dx-1) > testTolerance || math.Abs(g.Dy-0.5) > testTolerance {
		t.Errorf("spacing: got (%g, %g), want (1, 0.5)", g.Dx, g.Dy)
	}
	b := g.Bounds()
	if b.Min.X != -5 || b.Max.Y != 10 {
		t.Errorf("bounds: got %+v", b)
	}
	x, y := g.cellCenter(0, 0)
	if math.Abs(x-(-4.5)) > testTolerance || math.Abs(y-0.25) > testTolerance {
		t.Errorf("cell center (0, 0): got (%g, %g), want (-4.5, 0.25)", x, y)
	}

	// Buffers are prefilled with the sentinel.
	wantShape := []int{numBufferVars, g.Mx, g.My}
	for bi, buf := range []*sparse.DenseArray{g.QBefore, g.QAfter} {
		for d, want := range wantShape {
			if buf.Shape[d] != want {
				t.Errorf("buffer %d shape: got %v, want %v", bi, buf.Shape, wantShape)
				break
			}
		}
	}
	for _, v := range g.QBefore.Elements {
		if !IsUnset(v) {
			t.Fatal("fresh buffer should hold only the sentinel")
		}
	}
}

func TestSetupRejections(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(*FGoutGrid)
	}{
		{"point style", func(g *FGoutGrid) { g.PointStyle = 1 }},
		{"zero mx", func(g *FGoutGrid) { g.Mx = 0 }},
		{"negative my", func(g *FGoutGrid) { g.My = -3 }},
		{"output format", func(g *FGoutGrid) { g.Format = 2 }},
		{"inverted bounding box", func(g *FGoutGrid) { g.XHi = g.XLow - 1 }},
		{"bad schedule", func(g *FGoutGrid) { g.NumOutput = 1 }},
	}
	for _, test := range tests {
		g := validGrid()
		test.mangle(g)
		if err := g.Setup(false, 0); err == nil {
			t.Errorf("%s: Setup should fail", test.name)
		}
	}
}

func TestBufferSelector(t *testing.T) {
	g := validGrid()
	if err := g.Setup(false, 0); err != nil {
		t.Fatal(err)
	}
	if b, err := g.Buffer(Before); err != nil || b != g.QBefore {
		t.Errorf("Before selector: got %v, %v", b, err)
	}
	if b, err := g.Buffer(After); err != nil || b != g.QAfter {
		t.Errorf("After selector: got %v, %v", b, err)
	}
	if _, err := g.Buffer(Generation(0)); err == nil {
		t.Error("zero generation selector should fail")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b := validGrid(), validGrid()
	b.ID = 2
	if err := r.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(&FGoutGrid{ID: 1}); err == nil {
		t.Error("duplicate grid id should fail")
	}
	g, err := r.Grid(2)
	if err != nil || g != b {
		t.Errorf("lookup of grid 2: got %v, %v", g, err)
	}
	if _, err := r.Grid(99); err == nil {
		t.Error("lookup of unknown grid id should fail")
	}
	grids := r.Grids()
	if len(grids) != 2 || grids[0] != a || grids[1] != b {
		t.Errorf("Grids() should preserve insertion order; got %v", grids)
	}
}
