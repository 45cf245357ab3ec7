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

// Package fgout samples a time-evolving shallow-water solution computed on
// nested adaptive mesh patches onto fixed, uniform output grids and writes
// snapshot frames to disk for post-processing. The host solver drives it:
// it calls Sampler.Sample for each (patch, time generation) overlap, and
// Writer.WriteFrame whenever the solver clock reaches a pending output time.
package fgout

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Version gives the version number of this library.
const Version = "1.0.0"

// Buffer channel layout. The leading channels are the physical output
// quantities; the trailing channel stores the solver time at which each
// cell was last sampled.
const (
	// VarDepth is water depth h [m].
	VarDepth = iota
	// VarXMomentum is east-west momentum hu [m^2/s].
	VarXMomentum
	// VarYMomentum is north-south momentum hv [m^2/s].
	VarYMomentum
	// VarElevation is water surface elevation eta = h + B [m].
	VarElevation
	varTimeStamp
	numBufferVars
)

// NumOutputVars is the number of physical channels in a written frame:
// depth, x-momentum, y-momentum, and surface elevation.
const NumOutputVars = 4

// PointStyleGrid is the only supported point style: a regular grid of
// cell centers.
const PointStyleGrid = 2

// OutputFormat selects the on-disk frame encoding.
type OutputFormat int

const (
	// FormatAscii writes text frame files only.
	FormatAscii OutputFormat = 1
	// FormatBinary writes a raw binary dump alongside the text frame.
	FormatBinary OutputFormat = 3
)

func (f OutputFormat) valid() bool {
	return f == FormatAscii || f == FormatBinary
}

// Generation selects which of a grid's two time-bracketing sample buffers
// an operation applies to.
type Generation int

const (
	// Before is the sample taken before a pending output time.
	Before Generation = iota + 1
	// After is the sample taken at or after a pending output time.
	After
)

// OutputStatus describes the state of one scheduled output time.
type OutputStatus int

const (
	// StatusPending means the output has not been produced yet.
	StatusPending OutputStatus = iota
	// StatusSkipped means the output predates a restarted run and is
	// treated as already produced by the prior run.
	StatusSkipped
	// StatusWritten means the frame has been written to disk.
	StatusWritten
)

// OutputState is the bookkeeping record for one scheduled output time.
type OutputState struct {
	Status OutputStatus
	Frame  int // frame sequence number; valid only when Status is StatusWritten.
}

// FGoutGrid is one fixed output grid definition together with its mutable
// sampling state. The grid is uniform and independent of the solver mesh.
type FGoutGrid struct {
	ID         int // unique per run
	PointStyle int // must be PointStyleGrid

	Mx, My     int     // number of cells
	XLow, YLow float64 // lower-left corner of the bounding box
	XHi, YHi   float64 // upper-right corner of the bounding box
	Dx, Dy     float64 // cell spacing, derived in Setup

	StartTime float64
	EndTime   float64
	NumOutput int
	Dt        float64 // output interval, derived in Setup

	// OutputTimes is the non-decreasing sequence of scheduled output
	// times, with States tracking each one. NextPending always points at
	// the first entry that is neither skipped nor written; it never
	// decreases.
	OutputTimes []float64
	States      []OutputState
	NextPending int

	Format OutputFormat

	// QBefore and QAfter are the two time-bracketing sample buffers,
	// shape (numBufferVars, Mx, My), prefilled with a quiet-NaN sentinel
	// so never-sampled cells remain detectably invalid. They are
	// allocated once in Setup and overwritten in place for the rest of
	// the run.
	QBefore *sparse.DenseArray
	QAfter  *sparse.DenseArray
}

// Setup validates the grid definition, derives the cell spacing and output
// schedule, and allocates the sampling buffers. restart reports whether the
// run was restarted from a checkpoint, and tStart is the time the run
// actually starts at; output times before tStart are marked skipped on
// restart (see the schedule rules in schedule.go).
func (g *FGoutGrid) Setup(restart bool, tStart float64) error {
	if g.PointStyle != PointStyleGrid {
		return fmt.Errorf("fgout: grid %d: unsupported point_style %d; only "+
			"point_style %d (regular grid) is supported", g.ID, g.PointStyle, PointStyleGrid)
	}
	if g.Mx < 1 || g.My < 1 {
		return fmt.Errorf("fgout: grid %d: cell counts must be positive; got mx=%d my=%d",
			g.ID, g.Mx, g.My)
	}
	if !g.Format.valid() {
		return fmt.Errorf("fgout: grid %d: unrecognized output format %d", g.ID, g.Format)
	}
	g.Dx = (g.XHi - g.XLow) / float64(g.Mx)
	g.Dy = (g.YHi - g.YLow) / float64(g.My)
	if g.Dx < 0 || g.Dy < 0 {
		return fmt.Errorf("fgout: grid %d: bounding box is inverted", g.ID)
	}
	if err := g.setOutputTimes(); err != nil {
		return err
	}
	g.applyRestartSkips(restart, tStart)

	g.QBefore = sparse.ZerosDense(numBufferVars, g.Mx, g.My)
	g.QAfter = sparse.ZerosDense(numBufferVars, g.Mx, g.My)
	fillUnset(g.QBefore)
	fillUnset(g.QAfter)
	return nil
}

// Buffer returns the sample buffer for the given time generation.
func (g *FGoutGrid) Buffer(gen Generation) (*sparse.DenseArray, error) {
	switch gen {
	case Before:
		return g.QBefore, nil
	case After:
		return g.QAfter, nil
	}
	return nil, fmt.Errorf("fgout: grid %d: unrecognized time generation selector %d", g.ID, gen)
}

// Bounds returns the grid bounding box.
func (g *FGoutGrid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.XLow, Y: g.YLow},
		Max: geom.Point{X: g.XHi, Y: g.YHi},
	}
}

// cellCenter returns the center coordinates of output cell (i, j).
func (g *FGoutGrid) cellCenter(i, j int) (x, y float64) {
	x = g.XLow + (float64(i)+0.5)*g.Dx
	y = g.YLow + (float64(j)+0.5)*g.Dy
	return x, y
}

// fillUnset overwrites every element of a with the NaN sentinel. Elements
// are assigned directly because DenseArray.Set silently drops zero values.
func fillUnset(a *sparse.DenseArray) {
	u := Unset()
	for i := range a.Elements {
		a.Elements[i] = u
	}
}

// Registry owns the full set of fixed output grids for a run. There is
// exactly one Registry per run; it is created during setup and passed
// explicitly into Sampler and Writer calls rather than held as ambient
// state.
type Registry struct {
	grids map[int]*FGoutGrid
	order []*FGoutGrid
}

// NewRegistry creates an empty grid registry.
func NewRegistry() *Registry {
	return &Registry{grids: make(map[int]*FGoutGrid)}
}

// Add adds a grid record to the registry. The grid id must be unique.
func (r *Registry) Add(g *FGoutGrid) error {
	if _, ok := r.grids[g.ID]; ok {
		return fmt.Errorf("fgout: duplicate grid id %d", g.ID)
	}
	r.grids[g.ID] = g
	r.order = append(r.order, g)
	return nil
}

// Grid returns the grid with the given id.
func (r *Registry) Grid(id int) (*FGoutGrid, error) {
	g, ok := r.grids[id]
	if !ok {
		return nil, fmt.Errorf("fgout: no grid with id %d", id)
	}
	return g, nil
}

// Grids returns all grids in the order they were added.
func (r *Registry) Grids() []*FGoutGrid {
	return r.order
}
