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

// Package fgoututil holds the configuration and command-line glue for
// working with fixed-grid output outside the host solver: validating
// grids data files and converting written frames for post-processing.
package fgoututil

import (
	"fmt"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbarnhart/geoclaw/fgout"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridsFile",
			usage: `
              GridsFile is the path to the fixed output grid definitions
              data file.`,
			shorthand:  "g",
			defaultVal: "fgout_grids.data",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory holding written frame files.`,
			shorthand:  "o",
			defaultVal: "_output",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Restart",
			usage: `
              Restart specifies whether the run continues from a prior
              checkpoint, in which case output times already produced by
              the prior run are skipped.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "StartTime",
			usage: `
              StartTime is the solver time the run actually starts at,
              used to decide which scheduled outputs are skipped.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "grid",
			usage: `
              grid is the id of the fixed output grid to convert.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{netcdfCmd.Flags()},
		},
		{
			name: "frame",
			usage: `
              frame is the output sequence number to convert.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{netcdfCmd.Flags()},
		},
		{
			name: "binary",
			usage: `
              binary specifies that the frame was written in binary
              format, so channel data are read from the .b file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{netcdfCmd.Flags()},
		},
		{
			name: "outfile",
			usage: `
              outfile is the NetCDF file to create. If empty, the frame
              file name with a .nc extension is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{netcdfCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FGOUT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(validateCmd)
	Root.AddCommand(netcdfCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fgoututil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fgout",
	Short: "Work with GeoClaw fixed-grid output.",
	Long: `fgout validates fixed output grid definitions and converts written
snapshot frames for post-processing. The sampling and writing themselves run
inside the host solver; refer to the subcommand documentation for the
operations available offline.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FGOUT_var' where 'var' is
the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of fgout.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("fgout v%s\n", fgout.Version)
	},
	DisableAutoGenTag: true,
}

// validateCmd parses the grids data file, derives each grid's schedule,
// and reports it, failing on any configuration error the solver would
// reject at setup.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check grid definitions and report their output schedules.",
	Long: `validate parses the grids data file, performs the same setup the host
solver would perform at the beginning of a run, and reports the derived
output schedule of each grid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := LoadRegistry(Cfg.GetString("GridsFile"),
			Cfg.GetBool("Restart"), Cfg.GetFloat64("StartTime"))
		if err != nil {
			return err
		}
		for _, g := range reg.Grids() {
			var skipped int
			for _, st := range g.States {
				if st.Status == fgout.StatusSkipped {
					skipped++
				}
			}
			logrus.WithFields(logrus.Fields{
				"grid":    g.ID,
				"mx":      g.Mx,
				"my":      g.My,
				"dt":      g.Dt,
				"outputs": len(g.OutputTimes),
				"skipped": skipped,
			}).Info("fgout: grid schedule")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// netcdfCmd converts one written frame to NetCDF.
var netcdfCmd = &cobra.Command{
	Use:   "netcdf",
	Short: "Convert a written frame to a NetCDF file.",
	Long: `netcdf reads one written snapshot frame of one fixed output grid and
converts it to a NetCDF file with one variable per output channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := fgout.FormatAscii
		if Cfg.GetBool("binary") {
			format = fgout.FormatBinary
		}
		fr, err := fgout.ReadFrame(Cfg.GetString("OutputDir"),
			Cfg.GetInt("grid"), Cfg.GetInt("frame"), format)
		if err != nil {
			return err
		}
		outfile := Cfg.GetString("outfile")
		if outfile == "" {
			outfile = filepath.Join(Cfg.GetString("OutputDir"),
				fmt.Sprintf("fgout%04d_%04d.nc", fr.GridID, fr.Index))
		}
		if err := fr.WriteNetCDF(outfile); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"grid":  fr.GridID,
			"frame": fr.Index,
			"time":  fr.Time,
			"file":  outfile,
		}).Info("fgout: wrote NetCDF file")
		return nil
	},
	DisableAutoGenTag: true,
}
