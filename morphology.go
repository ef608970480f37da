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

// dilate returns the binary dilation of the mask. kernel 3 ORs the full
// 3×3 neighborhood of each cell; kernel 2 ORs the 2×2 window whose
// lower-right corner is the cell. Cells outside the grid count as false.
func (m *ShadowMask) dilate(kernel int) *ShadowMask {
	out := newShadowMask(m.Ny, m.Nx)
	if kernel == 2 {
		for i := 0; i < m.Ny; i++ {
			for j := 0; j < m.Nx; j++ {
				v := m.At(i, j)
				if !v && i > 0 {
					v = m.At(i-1, j)
				}
				if !v && j > 0 {
					v = m.At(i, j-1)
				}
				if !v && i > 0 && j > 0 {
					v = m.At(i-1, j-1)
				}
				out.set(i, j, v)
			}
		}
		return out
	}
	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			var v bool
			for di := -1; di <= 1 && !v; di++ {
				ii := i + di
				if ii < 0 || ii >= m.Ny {
					continue
				}
				for dj := -1; dj <= 1; dj++ {
					jj := j + dj
					if jj >= 0 && jj < m.Nx && m.At(ii, jj) {
						v = true
						break
					}
				}
			}
			out.set(i, j, v)
		}
	}
	return out
}

// invert flips every cell in place and returns the mask.
func (m *ShadowMask) invert() *ShadowMask {
	for i, v := range m.S {
		m.S[i] = !v
	}
	return m
}

// closeHoles performs a 3×3 binary closing (dilation followed by erosion,
// implemented as dilation of the complement) to fill the small holes left
// by strip-boundary effects. Applying it twice gives the same result as
// applying it once.
func (m *ShadowMask) closeHoles() *ShadowMask {
	return m.dilate(3).invert().dilate(3).invert()
}
