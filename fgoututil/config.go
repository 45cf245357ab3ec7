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

package fgoututil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbarnhart/geoclaw/fgout"
	"github.com/spf13/cast"
)

// tokens splits r into whitespace-delimited values, dropping '#' comments
// and the "=:" field annotations that grids data files carry.
func tokens(r io.Reader) ([]string, error) {
	var out []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "=:"); i >= 0 {
			line = line[:i]
		}
		out = append(out, strings.Fields(line)...)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// gridsDataReader consumes the flat value stream of a grids data file.
type gridsDataReader struct {
	toks []string
	pos  int
}

func (r *gridsDataReader) next() (string, error) {
	if r.pos >= len(r.toks) {
		return "", fmt.Errorf("unexpected end of file after %d values", r.pos)
	}
	t := r.toks[r.pos]
	r.pos++
	return t, nil
}

func (r *gridsDataReader) int() (int, error) {
	t, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := cast.ToIntE(t)
	if err != nil {
		return 0, fmt.Errorf("value %d (%q): %v", r.pos, t, err)
	}
	return v, nil
}

func (r *gridsDataReader) float() (float64, error) {
	t, err := r.next()
	if err != nil {
		return 0, err
	}
	v, err := cast.ToFloat64E(t)
	if err != nil {
		return 0, fmt.Errorf("value %d (%q): %v", r.pos, t, err)
	}
	return v, nil
}

// ReadGridsData reads fixed output grid definitions from a grids data
// file. The file is a whitespace-delimited value stream: first the number
// of grids, then for each grid, in fixed order: grid id; start time; end
// time; number of outputs; point style; output format; mx, my; x_low,
// y_low; x_hi, y_hi. '#' comments and "=:" annotations are ignored.
func ReadGridsData(r io.Reader) ([]*fgout.FGoutGrid, error) {
	toks, err := tokens(r)
	if err != nil {
		return nil, fmt.Errorf("fgoututil: reading grids data: %v", err)
	}
	rd := &gridsDataReader{toks: toks}

	n, err := rd.int()
	if err != nil {
		return nil, fmt.Errorf("fgoututil: reading grid count: %v", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("fgoututil: negative grid count %d", n)
	}
	grids := make([]*fgout.FGoutGrid, 0, n)
	for k := 0; k < n; k++ {
		g := new(fgout.FGoutGrid)
		var format int
		fields := []struct {
			name string
			read func() error
		}{
			{"grid id", func() (err error) { g.ID, err = rd.int(); return }},
			{"start time", func() (err error) { g.StartTime, err = rd.float(); return }},
			{"end time", func() (err error) { g.EndTime, err = rd.float(); return }},
			{"number of outputs", func() (err error) { g.NumOutput, err = rd.int(); return }},
			{"point style", func() (err error) { g.PointStyle, err = rd.int(); return }},
			{"output format", func() (err error) { format, err = rd.int(); return }},
			{"mx", func() (err error) { g.Mx, err = rd.int(); return }},
			{"my", func() (err error) { g.My, err = rd.int(); return }},
			{"x_low", func() (err error) { g.XLow, err = rd.float(); return }},
			{"y_low", func() (err error) { g.YLow, err = rd.float(); return }},
			{"x_hi", func() (err error) { g.XHi, err = rd.float(); return }},
			{"y_hi", func() (err error) { g.YHi, err = rd.float(); return }},
		}
		for _, f := range fields {
			if err := f.read(); err != nil {
				return nil, fmt.Errorf("fgoututil: grid record %d: reading %s: %v", k+1, f.name, err)
			}
		}
		g.Format = fgout.OutputFormat(format)
		grids = append(grids, g)
	}
	if rd.pos != len(rd.toks) {
		return nil, fmt.Errorf("fgoututil: %d unexpected trailing values after %d grid records",
			len(rd.toks)-rd.pos, n)
	}
	return grids, nil
}

// LoadRegistry reads the grids data file at path, derives each grid's
// schedule for a run starting at tStart (restarted or fresh), and returns
// the run's grid registry.
func LoadRegistry(path string, restart bool, tStart float64) (*fgout.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fgoututil: opening grids data file: %v", err)
	}
	defer f.Close()

	grids, err := ReadGridsData(f)
	if err != nil {
		return nil, err
	}
	reg := fgout.NewRegistry()
	for _, g := range grids {
		if err := g.Setup(restart, tStart); err != nil {
			return nil, err
		}
		if err := reg.Add(g); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
