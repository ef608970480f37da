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

// Package wera implements the shadow-casting core of a landscape-structure
// based wind erosion risk assessment: it turns an obstacle-height raster and
// a set of virtual light directions into per-direction shadow masks using a
// strip-sweep horizon scan.
package wera

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Version is the version of this software.
const Version = "0.2.0"

// ElevationGrid holds an obstacle-height raster (heights above ground,
// row-major, north-up) together with its nodata mask and georeferencing.
// The grid is loaded once per invocation and shared read-only between all
// direction computations.
type ElevationGrid struct {
	// Heights holds the height values with shape [rows, columns].
	Heights *sparse.DenseArray

	// Nodata marks cells that hold no valid height. Nodata cells never
	// occlude other cells and are never marked as shadowed.
	Nodata []bool

	// Dx and Dy are the cell sizes in the CRS unit, which must be metric.
	Dx, Dy float64

	// GeoTransform is the affine georeferencing transform in GDAL order
	// (origin x, pixel width, row rotation, origin y, column rotation,
	// pixel height). It is retained for output only; the pixel height is
	// typically negative for north-up rasters.
	GeoTransform [6]float64

	// Proj identifies the coordinate reference system. The core requires a
	// metric CRS; enforcing that is the caller's responsibility.
	Proj string

	// NodataValue is the sentinel stamped into nodata cells on output.
	NodataValue float64
}

// NewElevationGrid wraps heights (shape [rows, columns]) into an
// ElevationGrid. Cells equal to nodataValue or holding non-finite values are
// masked as nodata.
func NewElevationGrid(heights *sparse.DenseArray, nodataValue float64, gt [6]float64, proj string) (*ElevationGrid, error) {
	if heights == nil || len(heights.Shape) != 2 {
		return nil, fmt.Errorf("wera: elevation grid must be 2-dimensional")
	}
	dx, dy := math.Abs(gt[1]), math.Abs(gt[5])
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("wera: invalid cell size %g x %g", dx, dy)
	}
	nodata := make([]bool, len(heights.Elements))
	for i, v := range heights.Elements {
		if math.IsNaN(v) || math.IsInf(v, 0) || v == nodataValue {
			nodata[i] = true
		}
	}
	return &ElevationGrid{
		Heights:      heights,
		Nodata:       nodata,
		Dx:           dx,
		Dy:           dy,
		GeoTransform: gt,
		Proj:         proj,
		NodataValue:  nodataValue,
	}, nil
}

// Rows returns the number of grid rows.
func (g *ElevationGrid) Rows() int { return g.Heights.Shape[0] }

// Cols returns the number of grid columns.
func (g *ElevationGrid) Cols() int { return g.Heights.Shape[1] }

// IsNodata reports whether the cell at row i, column j is masked.
func (g *ElevationGrid) IsNodata(i, j int) bool {
	return g.Nodata[i*g.Heights.Shape[1]+j]
}

// Bounds returns the georeferenced extent of the grid.
func (g *ElevationGrid) Bounds() *geom.Bounds {
	x0 := g.GeoTransform[0]
	y0 := g.GeoTransform[3]
	x1 := x0 + float64(g.Cols())*g.GeoTransform[1]
	y1 := y0 + float64(g.Rows())*g.GeoTransform[5]
	return &geom.Bounds{
		Min: geom.Point{X: math.Min(x0, x1), Y: math.Min(y0, y1)},
		Max: geom.Point{X: math.Max(x0, x1), Y: math.Max(y0, y1)},
	}
}
