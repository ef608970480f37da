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

import "math"

// A stripper partitions the grid into strips perpendicular to the light
// direction. Strips are indexed by integer offsets from zero; strip s is
// centered on the perpendicular coordinate s·width and collects the cells
// whose perpendicular coordinate falls within half a width of that center.
type stripper struct {
	basis  pixelBasis
	width  float64
	s0, s1 int // inclusive strip index range covering the grid
	ny, nx int
}

// A stripCell is one grid cell together with its along-light coordinate.
type stripCell struct {
	l    float64
	i, j int
}

func newStripper(g *ElevationGrid, b pixelBasis) *stripper {
	ny, nx := g.Rows(), g.Cols()

	// The smaller of the two non-zero perpendicular steps, so no cell can
	// fall between adjacent strip centers.
	width := math.Inf(1)
	if b.dSCol != 0 {
		width = math.Abs(b.dSCol)
	}
	if b.dSRow != 0 && math.Abs(b.dSRow) < width {
		width = math.Abs(b.dSRow)
	}
	width = math.Max(1e-9, width)

	// Perpendicular coordinates of the four grid corners give the index
	// range; one extra strip on each side guards against rounding.
	sMin, sMax := math.Inf(1), math.Inf(-1)
	for _, c := range [4][2]int{{0, 0}, {0, nx - 1}, {ny - 1, 0}, {ny - 1, nx - 1}} {
		s := float64(c[0])*b.dSRow + float64(c[1])*b.dSCol
		sMin = math.Min(sMin, s)
		sMax = math.Max(sMax, s)
	}
	return &stripper{
		basis: b,
		width: width,
		s0:    int(math.Round(sMin/width)) - 1,
		s1:    int(math.Round(sMax/width)) + 1,
		ny:    ny,
		nx:    nx,
	}
}

// cells collects the non-nodata cells belonging to strip s into buf,
// which is truncated and reused between strips. Membership is the closed
// interval |S − s·width| ≤ width/2 on both sides: a cell exactly on a
// boundary may be collected by two adjacent strips, which is harmless for
// the horizon scan and kept for compatibility.
func (st *stripper) cells(g *ElevationGrid, s int, buf []stripCell) []stripCell {
	buf = buf[:0]
	b := st.basis
	target := float64(s) * st.width
	halfW := 0.5 * st.width

	for i := 0; i < st.ny; i++ {
		sRow := float64(i) * b.dSRow
		var j0, j1 int
		if b.dSCol != 0 {
			// Solve S(i,j) == target for j and scan a narrow window
			// around the solution.
			jStar := (target - sRow) / b.dSCol
			j0 = int(math.Floor(jStar - 1))
			j1 = int(math.Ceil(jStar + 1))
			if j0 < 0 {
				j0 = 0
			}
			if j1 > st.nx-1 {
				j1 = st.nx - 1
			}
			if j0 > j1 {
				continue
			}
		} else {
			// Perpendicular purely row-aligned: the whole row shares one
			// S value.
			if math.Abs(sRow-target) > halfW {
				continue
			}
			j0, j1 = 0, st.nx-1
		}
		for j := j0; j <= j1; j++ {
			sij := sRow + float64(j)*b.dSCol
			if math.Abs(sij-target) <= halfW && !g.IsNodata(i, j) {
				buf = append(buf, stripCell{
					l: float64(i)*b.dLRow + float64(j)*b.dLCol,
					i: i,
					j: j,
				})
			}
		}
	}
	return buf
}
