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

import "testing"

func maskFromRows(rows []string) *ShadowMask {
	m := newShadowMask(len(rows), len(rows[0]))
	for i, r := range rows {
		for j, c := range r {
			m.set(i, j, c == 'x')
		}
	}
	return m
}

func maskEqual(t *testing.T, name string, got *ShadowMask, want []string) {
	t.Helper()
	for i, r := range want {
		for j, c := range r {
			w := c == 'x'
			if got.At(i, j) != w {
				t.Errorf("%s: cell (%d,%d) = %v, want %v", name, i, j, got.At(i, j), w)
			}
		}
	}
}

func TestDilate3(t *testing.T) {
	m := maskFromRows([]string{
		".....",
		".....",
		"..x..",
		".....",
		".....",
	})
	maskEqual(t, "dilate3", m.dilate(3), []string{
		".....",
		".xxx.",
		".xxx.",
		".xxx.",
		".....",
	})
}

func TestDilate2(t *testing.T) {
	// Kernel 2 grows one cell down-right only.
	m := maskFromRows([]string{
		"....",
		".x..",
		"....",
		"....",
	})
	maskEqual(t, "dilate2", m.dilate(2), []string{
		"....",
		".xx.",
		".xx.",
		"....",
	})
}

func TestCloseHoles(t *testing.T) {
	// A one-cell hole inside a shadow blob is filled; the blob outline is
	// unchanged.
	m := maskFromRows([]string{
		".......",
		".......",
		"..xxx..",
		"..x.x..",
		"..xxx..",
		".......",
		".......",
	})
	maskEqual(t, "hole", m.closeHoles(), []string{
		".......",
		".......",
		"..xxx..",
		"..xxx..",
		"..xxx..",
		".......",
		".......",
	})

	// A thin shadow line survives the closing unchanged.
	line := maskFromRows([]string{
		"........",
		"........",
		"..xxxx..",
		"........",
		"........",
	})
	maskEqual(t, "line", line.closeHoles(), []string{
		"........",
		"........",
		"..xxxx..",
		"........",
		"........",
	})
}

func TestCloseHolesIdempotent(t *testing.T) {
	m := maskFromRows([]string{
		"x..x..",
		".xx...",
		".x.x..",
		"....xx",
		"..x..x",
	})
	once := m.closeHoles()
	twice := once.closeHoles()
	for i := range once.S {
		if once.S[i] != twice.S[i] {
			t.Fatalf("closing not idempotent at cell %d", i)
		}
	}
}

func TestInvert(t *testing.T) {
	m := maskFromRows([]string{"x.", ".x"})
	m.invert()
	maskEqual(t, "invert", m, []string{".x", "x."})
}
