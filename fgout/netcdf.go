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
	"os"

	"github.com/ctessum/cdf"
)

// netcdf variable metadata, in channel order.
var netcdfVars = []struct {
	name, description, units string
}{
	{"h", "water depth", "m"},
	{"hu", "east-west momentum", "m^2/s"},
	{"hv", "north-south momentum", "m^2/s"},
	{"eta", "water surface elevation", "m"},
}

// WriteNetCDF converts the frame to a NetCDF file at path, with one
// (y, x) variable per output channel and the frame time and grid geometry
// stored as global attributes. Never-sampled cells keep their NaN
// sentinel in the NetCDF variables.
func (fr *Frame) WriteNetCDF(path string) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{fr.My, fr.Mx})
	for _, v := range netcdfVars {
		h.AddVariable(v.name, []string{"y", "x"}, []float64{0})
		h.AddAttribute(v.name, "description", v.description)
		h.AddAttribute(v.name, "units", v.units)
	}
	h.AddAttribute("", "time", []float64{fr.Time})
	h.AddAttribute("", "xlow", []float64{fr.XLow})
	h.AddAttribute("", "ylow", []float64{fr.YLow})
	h.AddAttribute("", "dx", []float64{fr.Dx})
	h.AddAttribute("", "dy", []float64{fr.Dy})
	h.AddAttribute("", "grid_number", []int32{int32(fr.GridID)})
	h.AddAttribute("", "frame", []int32{int32(fr.Index)})
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("fgout: creating netcdf header: %v", err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fgout: creating netcdf file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("fgout: creating netcdf file %s: %v", path, err)
	}

	data := make([]float64, fr.Mx*fr.My)
	for iv, v := range netcdfVars {
		for j := 0; j < fr.My; j++ {
			for i := 0; i < fr.Mx; i++ {
				data[j*fr.Mx+i] = fr.Q.Get(iv, i, j)
			}
		}
		w := f.Writer(v.name, []int{0, 0}, []int{fr.My, fr.Mx})
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("fgout: writing netcdf variable %s: %v", v.name, err)
		}
	}
	return nil
}
