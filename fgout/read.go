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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// Frame is one output snapshot read back from disk, for post-processing
// such as NetCDF conversion.
type Frame struct {
	GridID int
	Index  int
	Time   float64

	Mx, My     int
	XLow, YLow float64
	Dx, Dy     float64

	// Q holds the output channels with shape (NumOutputVars, Mx, My).
	Q *sparse.DenseArray
}

// ReadFrame reads frame number frame of grid gridID from dir. The frame
// geometry and metadata always come from the text files; when format is
// FormatBinary the channel data are read from the raw binary companion
// instead of the text frame.
func ReadFrame(dir string, gridID, frame int, format OutputFormat) (*Frame, error) {
	if !format.valid() {
		return nil, fmt.Errorf("fgout: unrecognized output format %d", format)
	}
	fr := &Frame{GridID: gridID, Index: frame}
	if err := fr.readT(dir); err != nil {
		return nil, err
	}
	if err := fr.readQ(dir, format == FormatBinary); err != nil {
		return nil, err
	}
	if format == FormatBinary {
		if err := fr.readB(dir); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// headerValues reads the leading whitespace-delimited value from each of
// n lines of r.
func headerValues(s *bufio.Scanner, n int) ([]float64, error) {
	vals := make([]float64, 0, n)
	for len(vals) < n && s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing header value %q: %v", fields[0], err)
		}
		vals = append(vals, v)
	}
	if len(vals) < n {
		return nil, fmt.Errorf("header ended after %d of %d values", len(vals), n)
	}
	return vals, nil
}

func (fr *Frame) readT(dir string) error {
	path := filepath.Join(dir, frameFileName(fr.GridID, 't', fr.Index))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fgout: opening frame metadata file: %v", err)
	}
	defer f.Close()

	vals, err := headerValues(bufio.NewScanner(f), 2)
	if err != nil {
		return fmt.Errorf("fgout: reading %s: %v", path, err)
	}
	fr.Time = vals[0]
	if int(vals[1]) != NumOutputVars {
		return fmt.Errorf("fgout: %s: expected %d output channels; got %d",
			path, NumOutputVars, int(vals[1]))
	}
	return nil
}

func (fr *Frame) readQ(dir string, headerOnly bool) error {
	path := filepath.Join(dir, frameFileName(fr.GridID, 'q', fr.Index))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fgout: opening frame file: %v", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	hdr, err := headerValues(s, 8)
	if err != nil {
		return fmt.Errorf("fgout: reading %s: %v", path, err)
	}
	if int(hdr[0]) != fr.GridID {
		return fmt.Errorf("fgout: %s: header grid id %d does not match file name",
			path, int(hdr[0]))
	}
	fr.Mx, fr.My = int(hdr[2]), int(hdr[3])
	fr.XLow, fr.YLow = hdr[4], hdr[5]
	fr.Dx, fr.Dy = hdr[6], hdr[7]
	if fr.Mx < 1 || fr.My < 1 {
		return fmt.Errorf("fgout: %s: invalid cell counts mx=%d my=%d", path, fr.Mx, fr.My)
	}
	fr.Q = sparse.ZerosDense(NumOutputVars, fr.Mx, fr.My)
	if headerOnly {
		return nil
	}

	i, j := 0, 0
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != NumOutputVars {
			return fmt.Errorf("fgout: %s: row %q has %d values; want %d",
				path, s.Text(), len(fields), NumOutputVars)
		}
		if j >= fr.My {
			return fmt.Errorf("fgout: %s: more data rows than mx*my=%d", path, fr.Mx*fr.My)
		}
		for iv, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("fgout: %s: parsing %q: %v", path, field, err)
			}
			fr.Q.Elements[fr.Q.Index1d(iv, i, j)] = v
		}
		i++
		if i == fr.Mx {
			i, j = 0, j+1
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("fgout: reading %s: %v", path, err)
	}
	if j != fr.My || i != 0 {
		return fmt.Errorf("fgout: %s: data ended at row (%d, %d); want %d rows of %d",
			path, i, j, fr.My, fr.Mx)
	}
	return nil
}

func (fr *Frame) readB(dir string) error {
	path := filepath.Join(dir, frameFileName(fr.GridID, 'b', fr.Index))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fgout: opening binary frame file: %v", err)
	}
	defer f.Close()
	if err := binary.Read(f, binary.LittleEndian, fr.Q.Elements); err != nil {
		return fmt.Errorf("fgout: reading %s: %v", path, err)
	}
	return nil
}
