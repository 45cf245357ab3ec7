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

import "fmt"

// skipTolerance is the relative tolerance used when comparing scheduled
// output times against the run start time.
const skipTolerance = 1e-13

// setOutputTimes derives the output interval and the scheduled output
// times from the grid's start time, end time, and output count. A
// degenerate schedule (end time at or before start time) must request
// exactly one output; otherwise at least two are required so the interval
// is well defined.
func (g *FGoutGrid) setOutputTimes() error {
	switch {
	case g.EndTime <= g.StartTime:
		if g.NumOutput != 1 {
			return fmt.Errorf("fgout: grid %d: end time %g is not after start time %g, "+
				"so num_output must be 1; got %d", g.ID, g.EndTime, g.StartTime, g.NumOutput)
		}
		g.Dt = 0
		g.OutputTimes = []float64{g.StartTime}
	default:
		if g.NumOutput < 2 {
			return fmt.Errorf("fgout: grid %d: num_output must be at least 2 when "+
				"end time %g is after start time %g; got %d", g.ID, g.EndTime, g.StartTime, g.NumOutput)
		}
		g.Dt = (g.EndTime - g.StartTime) / float64(g.NumOutput-1)
		g.OutputTimes = make([]float64, g.NumOutput)
		for k := range g.OutputTimes {
			g.OutputTimes[k] = g.StartTime + float64(k)*g.Dt
		}
	}
	g.States = make([]OutputState, len(g.OutputTimes))
	g.NextPending = 0
	return nil
}

// applyRestartSkips marks scheduled output times that precede the actual
// run start as skipped and advances the cursor past them. The comparison
// threshold is asymmetric about tStart: a fresh run keeps an output
// falling exactly at tStart, while a restarted run drops it, since the
// prior run is assumed to have produced that frame already.
func (g *FGoutGrid) applyRestartSkips(restart bool, tStart float64) {
	threshold := tStart * (1 - skipTolerance)
	if restart {
		threshold = tStart * (1 + skipTolerance)
	}
	for k, ot := range g.OutputTimes {
		if ot >= threshold {
			break // output times are non-decreasing
		}
		g.States[k].Status = StatusSkipped
		g.NextPending = k + 1
	}
}

// NextOutputTime returns the next still-pending output time, or false if
// every scheduled output has been skipped or written.
func (g *FGoutGrid) NextOutputTime() (float64, bool) {
	if g.NextPending >= len(g.OutputTimes) {
		return 0, false
	}
	return g.OutputTimes[g.NextPending], true
}

// MarkWritten records the frame number written for output index k and
// advances the cursor. The caller (the host solver's driver loop) is
// responsible for invoking this after each successful WriteFrame; k must
// be the current cursor position, since the cursor never moves backward.
func (g *FGoutGrid) MarkWritten(k, frame int) error {
	if k != g.NextPending {
		return fmt.Errorf("fgout: grid %d: output index %d written out of order; "+
			"next pending index is %d", g.ID, k, g.NextPending)
	}
	if k >= len(g.OutputTimes) {
		return fmt.Errorf("fgout: grid %d: output index %d exceeds schedule length %d",
			g.ID, k, len(g.OutputTimes))
	}
	g.States[k] = OutputState{Status: StatusWritten, Frame: frame}
	g.NextPending = k + 1
	return nil
}
