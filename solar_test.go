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
	"testing"
)

func TestLightDirection(t *testing.T) {
	const tol = 1e-12
	cases := []struct {
		azimuth, altitude float64
		ux, uy, tanAlt    float64
	}{
		// Sun in the north: light travels south (-y).
		{0, 45, 0, -1, 1},
		// Sun in the east: light travels west (-x).
		{90, 45, -1, 0, 1},
		// Sun in the south: light travels north (+y).
		{180, 30, 0, 1, math.Tan(30 * math.Pi / 180)},
		// Sun in the west: light travels east (+x).
		{270, 60, 1, 0, math.Tan(60 * math.Pi / 180)},
		// Azimuth 360 wraps to north.
		{360, 45, 0, -1, 1},
	}
	for _, c := range cases {
		d := NewLightDirection(c.azimuth, c.altitude)
		if math.Abs(d.Ux-c.ux) > tol || math.Abs(d.Uy-c.uy) > tol {
			t.Errorf("azimuth %g: u = (%g, %g), want (%g, %g)",
				c.azimuth, d.Ux, d.Uy, c.ux, c.uy)
		}
		if math.Abs(d.TanAlt-c.tanAlt) > tol {
			t.Errorf("altitude %g: tanAlt = %g, want %g", c.altitude, d.TanAlt, c.tanAlt)
		}
	}
}

func TestLightDirectionUnit(t *testing.T) {
	for az := 0.0; az < 360; az += 7.3 {
		d := NewLightDirection(az, 45)
		if n := math.Hypot(d.Ux, d.Uy); math.Abs(n-1) > 1e-12 {
			t.Errorf("azimuth %g: |u| = %g, want 1", az, n)
		}
	}
}

func TestPixelBasis(t *testing.T) {
	const tol = 1e-12
	// Sun in the west on square 1 m cells: along-light advances one unit per
	// column, the perpendicular one unit per row (flipped for north-up rows).
	b := NewLightDirection(270, 45).pixelBasis(1, 1)
	if math.Abs(b.dLCol-1) > tol || math.Abs(b.dLRow) > tol {
		t.Errorf("dL = (%g, %g), want (1, 0)", b.dLCol, b.dLRow)
	}
	if b.dSCol != 0 {
		t.Errorf("dSCol = %g, want exactly 0 after snapping", b.dSCol)
	}
	if math.Abs(b.dSRow+1) > tol {
		t.Errorf("dSRow = %g, want -1", b.dSRow)
	}

	// Rectangular cells scale each component by its own cell size.
	b = NewLightDirection(0, 45).pixelBasis(2, 3)
	if math.Abs(b.dLCol) > tol || math.Abs(b.dLRow-3) > tol {
		t.Errorf("dL = (%g, %g), want (0, 3)", b.dLCol, b.dLRow)
	}
	if math.Abs(b.dSCol-2) > tol || b.dSRow != 0 {
		t.Errorf("dS = (%g, %g), want (2, 0)", b.dSCol, b.dSRow)
	}
}

// Near-axis azimuths must snap sub-nanometer perpendicular steps to exactly
// zero so the stripper takes the whole-row path.
func TestPixelBasisSnap(t *testing.T) {
	b := NewLightDirection(270+1e-10, 45).pixelBasis(1, 1)
	if b.dSCol != 0 {
		t.Errorf("dSCol = %g, want 0", b.dSCol)
	}
}
