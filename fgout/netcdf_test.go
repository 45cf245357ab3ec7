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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

func TestWriteNetCDF(t *testing.T) {
	const mx, my = 3, 2
	fr := &Frame{
		GridID: 4, Index: 7, Time: 12.5,
		Mx: mx, My: my,
		XLow: 0, YLow: 0, Dx: 1, Dy: 1,
		Q: sparse.ZerosDense(NumOutputVars, mx, my),
	}
	for i := 0; i < mx; i++ {
		for j := 0; j < my; j++ {
			for iv := 0; iv < NumOutputVars; iv++ {
				fr.Q.Elements[fr.Q.Index1d(iv, i, j)] = float64(100*iv + 10*i + j)
			}
		}
	}
	// One never-sampled cell.
	fr.Q.Elements[fr.Q.Index1d(VarDepth, 2, 1)] = Unset()

	path := filepath.Join(t.TempDir(), "frame.nc")
	if err := fr.WriteNetCDF(path); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}

	lens := f.Header.Lengths("h")
	if len(lens) != 2 || lens[0] != my || lens[1] != mx {
		t.Fatalf("h dimensions: got %v, want [%d %d]", lens, my, mx)
	}
	tt := f.Header.GetAttribute("", "time").([]float64)
	if len(tt) != 1 || tt[0] != 12.5 {
		t.Errorf("time attribute: got %v, want [12.5]", tt)
	}

	r := f.Reader("h", nil, nil)
	buf := r.Zero(mx * my)
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	vals := buf.([]float64)
	// Data are laid out (y, x) with x varying fastest.
	for j := 0; j < my; j++ {
		for i := 0; i < mx; i++ {
			want := fr.Q.Get(VarDepth, i, j)
			got := vals[j*mx+i]
			if IsUnset(want) {
				if !IsUnset(got) {
					t.Errorf("cell (%d, %d): got %g, want NaN", i, j, got)
				}
				continue
			}
			if math.Abs(got-want) > testTolerance {
				t.Errorf("cell (%d, %d): got %g, want %g", i, j, got, want)
			}
		}
	}
}
