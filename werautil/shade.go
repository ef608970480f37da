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

package werautil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wera"
	"github.com/spatialmodel/wera/internal/ascgrid"
	"github.com/spatialmodel/wera/sagacmd"
	"github.com/spatialmodel/wera/windstats"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ReadElevationGrid loads the obstacle-height raster from an ESRI ASCII
// grid file.
func ReadElevationGrid(path string) (*wera.ElevationGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wera: opening DEM: %v", err)
	}
	defer f.Close()
	ag, err := ascgrid.Read(f)
	if err != nil {
		return nil, fmt.Errorf("wera: reading DEM %s: %v", path, err)
	}
	g, err := wera.NewElevationGrid(ag.Data, ag.Nodata, ag.GeoTransform(), "")
	if err != nil {
		return nil, err
	}
	b := g.Bounds()
	logrus.WithFields(logrus.Fields{
		"cols": g.Cols(), "rows": g.Rows(), "cellsize": g.Dx,
		"extent": fmt.Sprintf("(%g, %g)-(%g, %g)", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y),
	}).Info("DEM loaded once")
	return g, nil
}

// dirWriter persists output rasters as ASCII grids in one directory.
type dirWriter struct {
	dir    string
	prefix string
}

// WriteRaster implements wera.RasterWriter.
func (w *dirWriter) WriteRaster(name string, data *sparse.DenseArray, g *wera.ElevationGrid) error {
	ag := &ascgrid.Grid{
		Ncols:    g.Cols(),
		Nrows:    g.Rows(),
		Xll:      g.GeoTransform[0],
		Yll:      g.GeoTransform[3] - float64(g.Rows())*g.Dy,
		CellSize: g.Dx,
		Nodata:   g.NodataValue,
		Data:     data,
	}
	path := filepath.Join(w.dir, w.prefix+name+".asc")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wera: creating output raster: %v", err)
	}
	defer f.Close()
	if err := ag.Write(f); err != nil {
		return fmt.Errorf("wera: writing output raster %s: %v", path, err)
	}
	return nil
}

// RunShade runs the shadow calculator batch configured in cfg: it loads the
// DEM once, reads the parameter table, and produces one shadow raster per
// usable table row. Configuration problems abort before any scanning
// starts; per-row failures are logged and skipped inside wera.Run.
func RunShade(ctx context.Context, cfg *viper.Viper) error {
	demPath := cfg.GetString("DEM")
	if demPath == "" {
		return fmt.Errorf("wera: no DEM specified")
	}
	tablePath := cfg.GetString("ParamTable")
	if tablePath == "" {
		return fmt.Errorf("wera: no parameter table specified")
	}
	outDir := cfg.GetString("OutputDir")
	if outDir == "" {
		return fmt.Errorf("wera: no output directory specified")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("wera: creating output directory: %v", err)
	}

	g, err := ReadElevationGrid(demPath)
	if err != nil {
		return err
	}

	cols := DefaultTableColumns()
	if v := cfg.GetString("Columns.Label"); v != "" {
		cols.Label = v
	}
	if v := cfg.GetString("Columns.Azimuth"); v != "" {
		cols.Azimuth = v
	}
	if v := cfg.GetString("Columns.Altitude"); v != "" {
		cols.Altitude = v
	}
	if v := cfg.GetString("Columns.Constant"); v != "" {
		cols.Constant = v
	}
	requests, err := ReadScanRequests(tablePath, cfg.GetString("SheetName"), cols)
	if err != nil {
		return err
	}
	for i := range requests {
		requests[i].Label += cfg.GetString("Suffix")
	}
	logrus.WithField("rows", len(requests)).Info("parameter table read")

	// Unset options keep the scan defaults. Values may arrive as strings
	// from environment variables or the configuration file, so convert
	// them explicitly.
	scanCfg := wera.DefaultScanConfig()
	if v := cfg.Get("FatShadow"); v != nil {
		scanCfg.FatShadow = cfg.GetBool("FatShadow")
	}
	if v := cfg.Get("UseSAGA"); v != nil {
		scanCfg.PreferBackend = cfg.GetBool("UseSAGA")
	}
	if v := cfg.Get("MaxGapCells"); v != nil {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("wera: MaxGapCells: %v", err)
		}
		scanCfg.MaxGapCells = n
	}
	if v := cfg.Get("MaxDistance"); v != nil {
		d, err := cast.ToFloat64E(v)
		if err != nil {
			return fmt.Errorf("wera: MaxDistance: %v", err)
		}
		scanCfg.MaxDistance = d
	}
	if v := cfg.Get("FatKernel"); v != nil {
		k, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("wera: FatKernel: %v", err)
		}
		scanCfg.FatKernel = k
	}
	if scanCfg.FatKernel != 2 {
		scanCfg.FatKernel = 3
	}

	var backend wera.ShadowBackend
	if scanCfg.PreferBackend {
		sb := sagacmd.New()
		if cmd := cfg.GetString("SAGACmd"); cmd != "" {
			sb.Cmd = cmd
		}
		backend = sb
	}

	writer := &dirWriter{dir: outDir, prefix: cfg.GetString("Prefix")}
	written, err := wera.Run(ctx, g, requests, backend, writer, scanCfg)
	if err != nil {
		return err
	}
	logrus.WithField("rasters", len(written)).Info("done")
	return nil
}

// RunWindStats derives the WERA parameter table from the configured
// wind-frequency matrix and writes it as a semicolon-separated CSV.
func RunWindStats(cfg *viper.Viper) error {
	inPath := cfg.GetString("WindMatrix")
	if inPath == "" {
		return fmt.Errorf("wera: no wind matrix specified")
	}
	outPath := cfg.GetString("OutputTable")
	if outPath == "" {
		return fmt.Errorf("wera: no output table specified")
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("wera: opening wind matrix: %v", err)
	}
	defer in.Close()
	matrix, err := windstats.ReadMatrix(in)
	if err != nil {
		return err
	}

	wcfg := windstats.DefaultConfig()
	if cfg.IsSet("Threshold") {
		wcfg.Threshold = cfg.GetFloat64("Threshold")
	}
	if cfg.IsSet("Porosity") {
		wcfg.Porosity = cfg.GetFloat64("Porosity")
	}
	if cfg.IsSet("DropEmpty") {
		wcfg.DropEmpty = cfg.GetBool("DropEmpty")
	}
	params, err := windstats.Compute(matrix, wcfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("wera: creating output directory: %v", err)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("wera: creating output table: %v", err)
	}
	defer out.Close()
	if err := windstats.WriteTable(out, params); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"rows": len(params), "output": outPath,
	}).Info("parameter table written")
	return nil
}
