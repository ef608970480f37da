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

package wera

import (
	"math"

	"github.com/ctessum/sparse"
)

// A ShadowMask is a boolean grid with the same shape as the elevation grid
// it was computed from; true means the cell is shadowed for one light
// direction. A fresh mask is allocated for every direction; masks are never
// shared between directions.
type ShadowMask struct {
	S      []bool
	Ny, Nx int
}

func newShadowMask(ny, nx int) *ShadowMask {
	return &ShadowMask{S: make([]bool, ny*nx), Ny: ny, Nx: nx}
}

// At reports the shadow state of the cell at row i, column j.
func (m *ShadowMask) At(i, j int) bool { return m.S[i*m.Nx+j] }

func (m *ShadowMask) set(i, j int, v bool) { m.S[i*m.Nx+j] = v }

// clearNodata forces all nodata cells to unshadowed. It is applied before
// a mask leaves the scanner so that downstream consumers never see a
// shadowed nodata cell.
func (m *ShadowMask) clearNodata(g *ElevationGrid) {
	for i, nd := range g.Nodata {
		if nd {
			m.S[i] = false
		}
	}
}

// count returns the number of shadowed cells.
func (m *ShadowMask) count() int {
	n := 0
	for _, v := range m.S {
		if v {
			n++
		}
	}
	return n
}

// obstacleClass is the protection-class constant reserved for cells
// physically occupied by a landscape element. Cells with strictly positive
// obstacle height always receive this class on output, regardless of the
// computed shadow state. The rule is specific to this numbering convention
// and is not applied for any other constant.
const obstacleClass = 5.0

// OutputRaster converts a finalized shadow mask into the numeric output
// grid: shadowed cells hold constant, lit cells 0, and nodata cells the
// grid's nodata sentinel.
func OutputRaster(g *ElevationGrid, m *ShadowMask, constant float64) *sparse.DenseArray {
	out := sparse.ZerosDense(g.Rows(), g.Cols())
	isObstacleClass := math.Abs(constant-obstacleClass) < 1e-6
	for i, nd := range g.Nodata {
		switch {
		case nd:
			out.Elements[i] = g.NodataValue
		case isObstacleClass && g.Heights.Elements[i] > 0:
			out.Elements[i] = obstacleClass
		case m.S[i]:
			out.Elements[i] = constant
		}
	}
	return out
}
