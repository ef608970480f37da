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

// dirEps is the threshold below which perpendicular pixel increments are
// snapped to exactly zero to avoid near-singular strip widths.
const dirEps = 1e-9

// LightDirection is one virtual light source given in horizontal
// alt-azimuth coordinates: azimuth in compass degrees (0 = north,
// clockwise) and altitude in degrees above the horizon. It is immutable
// for the duration of one scan.
//
// Angles are passed through unvalidated. Negative altitudes give a
// negative tangent, shading everything behind the first cell of each
// strip; altitudes of ±90° give an infinite tangent, which the scanner
// tolerates (nothing, respectively everything, ends up shadowed).
type LightDirection struct {
	Azimuth, Altitude float64

	// Ux, Uy form the unit vector pointing from the light source toward
	// the ground in map coordinates (x east, y north).
	Ux, Uy float64

	// TanAlt is the tangent of the altitude angle.
	TanAlt float64
}

// NewLightDirection converts the compass bearing to the mathematical angle
// convention (counterclockwise from east) and derives the sun-to-ground
// vector and altitude tangent.
func NewLightDirection(azimuth, altitude float64) LightDirection {
	theta := (450 - azimuth) * math.Pi / 180
	return LightDirection{
		Azimuth:  azimuth,
		Altitude: altitude,
		Ux:       -math.Cos(theta),
		Uy:       -math.Sin(theta),
		TanAlt:   math.Tan(altitude * math.Pi / 180),
	}
}

// pixelBasis expresses a light direction in pixel-step terms for a grid
// with the given cell sizes: the change of the along-light coordinate L and
// the perpendicular coordinate S per column and per row step. Rows increase
// downward (southward), so the row step vector is (0, -dy).
type pixelBasis struct {
	dLCol, dLRow float64
	dSCol, dSRow float64
}

func (l LightDirection) pixelBasis(dx, dy float64) pixelBasis {
	// Perpendicular direction is the light vector rotated by +90°.
	upx, upy := -l.Uy, l.Ux
	b := pixelBasis{
		dLCol: dx * l.Ux,
		dLRow: -dy * l.Uy,
		dSCol: dx * upx,
		dSRow: -dy * upy,
	}
	if math.Abs(b.dSCol) < dirEps {
		b.dSCol = 0
	}
	if math.Abs(b.dSRow) < dirEps {
		b.dSRow = 0
	}
	return b
}
