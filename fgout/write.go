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
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// CompositePolicy selects how the two time-bracketing sample buffers are
// combined into an output frame.
type CompositePolicy int

const (
	// CompositeNearest takes the "after" buffer's values directly. The
	// solver's stability bound limits information propagation to one
	// cell per step, so the most recent sample is accurate to within
	// one cell width. This is the default.
	CompositeNearest CompositePolicy = iota
	// CompositeBlend interpolates linearly in time between the two
	// buffers using each cell's recorded sample times. It misbehaves at
	// shoreline cells when the two brackets were sampled at different
	// mesh resolutions across a regridding event, which is why it is
	// not the default.
	CompositeBlend
)

const (
	// denormalFloor is the magnitude below which buffer values are
	// zeroed before compositing, so near-denormal leftovers from the
	// solver cannot slow down or garble the output.
	denormalFloor = 1e-90
	// maxPlausibleEta is the surface elevation [m] above which a wet
	// cell is flagged as physically implausible.
	maxPlausibleEta = 10.0
)

// Writer composites a grid's bracketing samples at an output time and
// serializes the result to frame files in Dir. The zero value writes to
// the current directory with the default nearest-sample policy.
type Writer struct {
	Dir    string
	Policy CompositePolicy
	Log    logrus.FieldLogger
}

// WriteFrame produces the output channels for g at output time t and
// writes frame files numbered by frame: the text frame fgoutNNNN.qMMMM
// and its metadata companion fgoutNNNN.tMMMM always, plus the raw binary
// fgoutNNNN.bMMMM when the grid's output format requests it. Any file
// error is returned and is fatal to the run; there is no retry or partial
// recovery. Marking the schedule entry written is the caller's
// responsibility (see FGoutGrid.MarkWritten).
func (w *Writer) WriteFrame(g *FGoutGrid, frame int, t float64) error {
	suppressDenormals(g.QBefore)
	suppressDenormals(g.QAfter)
	q := w.composite(g, t)

	var implausible int
	for i := 0; i < g.Mx; i++ {
		for j := 0; j < g.My; j++ {
			h := q.Get(VarDepth, i, j)
			eta := q.Get(VarElevation, i, j)
			if h > 0 && eta > maxPlausibleEta {
				implausible++
			}
		}
	}
	if implausible > 0 {
		w.logger().WithFields(logrus.Fields{
			"grid":  g.ID,
			"frame": frame,
			"time":  t,
			"cells": implausible,
		}).Warn("fgout: implausibly large surface elevation in wet cells")
	}

	if err := w.writeQ(g, q, frame); err != nil {
		return err
	}
	if g.Format == FormatBinary {
		if err := w.writeB(g, q, frame); err != nil {
			return err
		}
	}
	return w.writeT(g, frame, t)
}

// composite combines the two sample buffers into the physical output
// channels according to the writer's policy.
func (w *Writer) composite(g *FGoutGrid, t float64) *sparse.DenseArray {
	out := sparse.ZerosDense(NumOutputVars, g.Mx, g.My)
	if w.Policy != CompositeBlend {
		for iv := 0; iv < NumOutputVars; iv++ {
			for i := 0; i < g.Mx; i++ {
				for j := 0; j < g.My; j++ {
					out.Elements[out.Index1d(iv, i, j)] = g.QAfter.Get(iv, i, j)
				}
			}
		}
		return out
	}

	before := make([]float64, NumOutputVars)
	after := make([]float64, NumOutputVars)
	blended := make([]float64, NumOutputVars)
	for i := 0; i < g.Mx; i++ {
		for j := 0; j < g.My; j++ {
			tb := g.QBefore.Get(varTimeStamp, i, j)
			ta := g.QAfter.Get(varTimeStamp, i, j)
			frac := 1.0
			if ta > tb {
				frac = (t - tb) / (ta - tb)
			}
			for iv := range before {
				before[iv] = g.QBefore.Get(iv, i, j)
				after[iv] = g.QAfter.Get(iv, i, j)
			}
			TimeBlend(frac, before, after, blended)
			for iv, v := range blended {
				out.Elements[out.Index1d(iv, i, j)] = v
			}
		}
	}
	return out
}

func (w *Writer) logger() logrus.FieldLogger {
	if w.Log != nil {
		return w.Log
	}
	return logrus.StandardLogger()
}

// suppressDenormals zeroes every buffer value with magnitude below
// denormalFloor. NaN sentinels are preserved.
func suppressDenormals(a *sparse.DenseArray) {
	for i, v := range a.Elements {
		if v != 0 && math.Abs(v) < denormalFloor {
			a.Elements[i] = 0
		}
	}
}

// frameFileName returns the fixed-width frame file name, for example
// "fgout0007.q0003" for grid 7, kind 'q', frame 3.
func frameFileName(gridID int, kind byte, frame int) string {
	return fmt.Sprintf("fgout%04d.%c%04d", gridID, kind, frame)
}

func (w *Writer) writeQ(g *FGoutGrid, q *sparse.DenseArray, frame int) error {
	path := filepath.Join(w.Dir, frameFileName(g.ID, 'q', frame))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fgout: creating frame file: %v", err)
	}
	defer f.Close()

	b := bufio.NewWriter(f)
	fmt.Fprintf(b, "%5d                 grid_number\n", g.ID)
	fmt.Fprintf(b, "%5d                 AMR_level\n", 0)
	fmt.Fprintf(b, "%5d                 mx\n", g.Mx)
	fmt.Fprintf(b, "%5d                 my\n", g.My)
	fmt.Fprintf(b, "%18.8e    xlow\n", g.XLow)
	fmt.Fprintf(b, "%18.8e    ylow\n", g.YLow)
	fmt.Fprintf(b, "%18.8e    dx\n", g.Dx)
	fmt.Fprintf(b, "%18.8e    dy\n", g.Dy)
	fmt.Fprintln(b)
	for j := 0; j < g.My; j++ {
		for i := 0; i < g.Mx; i++ {
			fmt.Fprintf(b, " %16.8e %16.8e %16.8e %16.8e\n",
				q.Get(VarDepth, i, j), q.Get(VarXMomentum, i, j),
				q.Get(VarYMomentum, i, j), q.Get(VarElevation, i, j))
		}
		fmt.Fprintln(b)
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("fgout: writing frame file %s: %v", path, err)
	}
	return nil
}

func (w *Writer) writeB(g *FGoutGrid, q *sparse.DenseArray, frame int) error {
	path := filepath.Join(w.Dir, frameFileName(g.ID, 'b', frame))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fgout: creating binary frame file: %v", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, q.Elements); err != nil {
		return fmt.Errorf("fgout: writing binary frame file %s: %v", path, err)
	}
	return nil
}

func (w *Writer) writeT(g *FGoutGrid, frame int, t float64) error {
	path := filepath.Join(w.Dir, frameFileName(g.ID, 't', frame))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fgout: creating frame metadata file: %v", err)
	}
	defer f.Close()

	b := bufio.NewWriter(f)
	fmt.Fprintf(b, "%18.8e    time\n", t)
	fmt.Fprintf(b, "%5d                 num_eqn\n", NumOutputVars)
	fmt.Fprintf(b, "%5d                 ngrids\n", 1)
	fmt.Fprintf(b, "%5d                 naux\n", 0)
	fmt.Fprintf(b, "%5d                 ndim\n", 2)
	fmt.Fprintf(b, "%5d                 nghost\n", 0)
	if err := b.Flush(); err != nil {
		return fmt.Errorf("fgout: writing frame metadata file %s: %v", path, err)
	}
	return nil
}
