/*
Copyright © 2026 the WERA authors.
This file is part of WERA.

WERA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WERA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WERA.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package werautil wires the WERA wind-erosion toolbox into a command-line
// interface: configuration handling, parameter-table reading, and the batch
// orchestration around the core shadow engine.
package werautil

import (
	"context"
	"fmt"

	"github.com/spatialmodel/wera"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to WERA.
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
			name: "DEM",
			usage: `
              DEM is the path to the obstacle-height raster (ESRI ASCII grid)
              produced by the landscape-elements calculator. The raster must
              use a metric CRS; it defines extent, resolution, and
              georeferencing of all outputs.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "ParamTable",
			usage: `
              ParamTable is the path to the scan parameter table (.csv, .xlsx
              or .xls) with one row per shadow mask: label, azimuth, altitude,
              and the constant stamped into shadowed cells.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "SheetName",
			usage: `
              SheetName is the Excel sheet holding the parameter table. It is
              ignored for CSV tables; empty means the first sheet.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Columns.Label",
			usage: `
              Columns.Label is the table column holding the output label.`,
			defaultVal: "Bez",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Columns.Azimuth",
			usage: `
              Columns.Azimuth is the table column holding the azimuth in
              compass degrees.`,
			defaultVal: "Azimut",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Columns.Altitude",
			usage: `
              Columns.Altitude is the table column holding the altitude in
              degrees above the horizon.`,
			defaultVal: "Altitude",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Columns.Constant",
			usage: `
              Columns.Constant is the table column holding the numeric value
              written into shadowed cells.`,
			defaultVal: "Constant",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory receiving one shadow raster per
              parameter-table row.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Prefix",
			usage: `
              Prefix is prepended to every output file name.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "Suffix",
			usage: `
              Suffix is appended to every output label.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "MaxGapCells",
			usage: `
              MaxGapCells is the longest lit gap along a scan strip that is
              closed by the 1D gap fill, in cells. Zero disables the fill.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "MaxDistance",
			usage: `
              MaxDistance truncates each strip scan after this along-light
              distance in CRS units. Zero means unlimited within the grid.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "FatShadow",
			usage: `
              FatShadow adds an extra dilation after the gap closing, giving
              slightly thicker, more conservative shadow regions. It only
              affects the internal scan, not external backend results.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "FatKernel",
			usage: `
              FatKernel is the dilation kernel size for fat shadows: 3 (3x3)
              or 2 (2x2).`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "UseSAGA",
			usage: `
              UseSAGA prefers SAGA analytical hillshading (shadows only) over
              the internal scan, falling back when SAGA is missing or fails.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "SAGACmd",
			usage: `
              SAGACmd is the saga_cmd executable used when UseSAGA is set.`,
			defaultVal: "saga_cmd",
			flagsets:   []*pflag.FlagSet{shadeCmd.Flags()},
		},
		{
			name: "WindMatrix",
			usage: `
              WindMatrix is the path to the aggregated wind-frequency matrix
              CSV (vclass column plus one column per direction sector).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{windstatsCmd.Flags()},
		},
		{
			name: "OutputTable",
			usage: `
              OutputTable is the CSV file receiving the derived WERA
              parameter table.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{windstatsCmd.Flags()},
		},
		{
			name: "Threshold",
			usage: `
              Threshold is the critical wind speed u_t in m/s for the onset
              of erosion.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{windstatsCmd.Flags()},
		},
		{
			name: "Porosity",
			usage: `
              Porosity of the shelterbelt, between 0 and 1.`,
			defaultVal: 0.4,
			flagsets:   []*pflag.FlagSet{windstatsCmd.Flags()},
		},
		{
			name: "DropEmpty",
			usage: `
              DropEmpty omits wind directions without erosive transport from
              the parameter table instead of keeping them with altitude 0.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{windstatsCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WERA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
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
	Root.AddCommand(shadeCmd)
	Root.AddCommand(windstatsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wera: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wera",
	Short: "A landscape-structure based wind erosion risk assessment toolbox.",
	Long: `WERA generates wind-shade masks from an obstacle-height raster and a table
of wind-derived scan parameters, and derives those parameters from
aggregated wind statistics. Use the subcommands specified below to access
the functionality.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'WERA_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of WERA.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("WERA v%s\n", wera.Version)
	},
	DisableAutoGenTag: true,
}

// shadeCmd runs the shadow calculator: one output raster per table row.
var shadeCmd = &cobra.Command{
	Use:   "shade",
	Short: "Generate shadow masks from a DEM and a parameter table.",
	Long: `shade computes, for every row of the parameter table, a shadow mask of the
obstacle-height raster under the row's virtual light direction, and writes
it as a raster where shadowed cells hold the row's constant, lit cells 0,
and nodata cells the input's nodata value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShade(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

// windstatsCmd derives the shade parameter table from wind statistics.
var windstatsCmd = &cobra.Command{
	Use:   "windstats",
	Short: "Derive shadow-scan parameters from a wind-frequency matrix.",
	Long: `windstats turns an aggregated wind-frequency matrix (event counts per
direction sector and 1 m/s speed class) into the WERA parameter table
consumed by the shade command: five leeward protection zones plus one
upwind zone per direction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunWindStats(Cfg)
	},
	DisableAutoGenTag: true,
}
