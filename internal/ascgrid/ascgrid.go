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

// Package ascgrid reads and writes single-band rasters in the ESRI ASCII
// grid format. It exists so the command-line tools can exchange grids with
// GIS engines without a GDAL binding; it is not a general raster library.
package ascgrid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// DefaultNodata is used when a grid carries no NODATA_value header entry.
const DefaultNodata = -9999.0

// Grid is an ESRI ASCII grid: a row-major float raster with its lower-left
// corner coordinates, square cell size, and nodata sentinel.
type Grid struct {
	Ncols, Nrows int
	Xll, Yll     float64
	CellSize     float64
	Nodata       float64
	Data         *sparse.DenseArray // shape [Nrows, Ncols], row 0 northmost
}

// GeoTransform returns the grid's affine transform in GDAL order.
func (g *Grid) GeoTransform() [6]float64 {
	return [6]float64{
		g.Xll, g.CellSize, 0,
		g.Yll + float64(g.Nrows)*g.CellSize, 0, -g.CellSize,
	}
}

// Read parses an ASCII grid. Header keys are case-insensitive;
// xllcenter/yllcenter headers are converted to corner coordinates.
func Read(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	g := &Grid{Ncols: -1, Nrows: -1, CellSize: -1, Nodata: DefaultNodata}
	var xCenter, yCenter bool
	// The header is a sequence of "key value" pairs; the first token that
	// is not a known key starts the data block.
	var first string
	for {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("ascgrid: reading header: %w", err)
		}
		key := strings.ToLower(tok)
		if key != "ncols" && key != "nrows" && key != "xllcorner" && key != "yllcorner" &&
			key != "xllcenter" && key != "yllcenter" && key != "cellsize" && key != "nodata_value" {
			first = tok
			break
		}
		val, err := next()
		if err != nil {
			return nil, fmt.Errorf("ascgrid: reading header value for %s: %w", tok, err)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("ascgrid: parsing header %s: %v", tok, err)
		}
		switch key {
		case "ncols":
			g.Ncols = int(f)
		case "nrows":
			g.Nrows = int(f)
		case "xllcorner":
			g.Xll = f
		case "yllcorner":
			g.Yll = f
		case "xllcenter":
			g.Xll, xCenter = f, true
		case "yllcenter":
			g.Yll, yCenter = f, true
		case "cellsize":
			g.CellSize = f
		case "nodata_value":
			g.Nodata = f
		}
	}
	if g.Ncols <= 0 || g.Nrows <= 0 || g.CellSize <= 0 {
		return nil, fmt.Errorf("ascgrid: incomplete header (ncols=%d nrows=%d cellsize=%g)",
			g.Ncols, g.Nrows, g.CellSize)
	}
	if xCenter {
		g.Xll -= g.CellSize / 2
	}
	if yCenter {
		g.Yll -= g.CellSize / 2
	}

	g.Data = sparse.ZerosDense(g.Nrows, g.Ncols)
	n := g.Nrows * g.Ncols
	for i := 0; i < n; i++ {
		tok := first
		if i > 0 || tok == "" {
			var err error
			tok, err = next()
			if err != nil {
				return nil, fmt.Errorf("ascgrid: reading cell %d of %d: %w", i, n, err)
			}
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("ascgrid: parsing cell %d: %v", i, err)
		}
		g.Data.Elements[i] = v
	}
	return g, nil
}

// Write serializes the grid with corner-referenced header keys and one
// data row per raster row.
func (g *Grid) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Ncols)
	fmt.Fprintf(bw, "nrows %d\n", g.Nrows)
	fmt.Fprintf(bw, "xllcorner %g\n", g.Xll)
	fmt.Fprintf(bw, "yllcorner %g\n", g.Yll)
	fmt.Fprintf(bw, "cellsize %g\n", g.CellSize)
	fmt.Fprintf(bw, "NODATA_value %g\n", g.Nodata)
	for i := 0; i < g.Nrows; i++ {
		for j := 0; j < g.Ncols; j++ {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(g.Data.Get(i, j), 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
