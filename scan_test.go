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
	"context"
	"testing"

	"github.com/ctessum/sparse"
)

const testNodata = -9999.0

// testGrid builds an elevation grid with 1 m square cells from row-major
// height values; cells equal to testNodata become nodata.
func testGrid(t *testing.T, h [][]float64) *ElevationGrid {
	t.Helper()
	ny, nx := len(h), len(h[0])
	d := sparse.ZerosDense(ny, nx)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			d.Set(h[i][j], i, j)
		}
	}
	gt := [6]float64{0, 1, 0, float64(ny), 0, -1}
	g, err := NewElevationGrid(d, testNodata, gt, "EPSG:25832")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// zeroGrid builds a flat ny×nx grid of height zero.
func zeroGrid(t *testing.T, ny, nx int) *ElevationGrid {
	t.Helper()
	h := make([][]float64, ny)
	for i := range h {
		h[i] = make([]float64, nx)
	}
	return testGrid(t, h)
}

// A flat surface must not shadow itself for any positive altitude: the
// scanner tolerance has to absorb the floating-point noise of the projected
// ray heights.
func TestFlatSurface(t *testing.T) {
	g := zeroGrid(t, 8, 8)
	for _, az := range []float64{0, 37, 90, 135, 180, 225, 270, 315} {
		for _, alt := range []float64{1, 15, 45, 89} {
			mask, err := CastShadow(context.Background(), g, NewLightDirection(az, alt), DefaultScanConfig())
			if err != nil {
				t.Fatal(err)
			}
			if n := mask.count(); n != 0 {
				t.Errorf("az=%g alt=%g: flat surface has %d shadowed cells", az, alt, n)
			}
		}
	}
}

// A single 10 m spike on a 10×10 zero grid with the sun in the west at 45°
// must shadow exactly the cells east of the spike, out to
// 10/tan(45°) = 10 cells (clipped by the grid edge).
func TestSingleSpike(t *testing.T) {
	h := make([][]float64, 10)
	for i := range h {
		h[i] = make([]float64, 10)
	}
	h[5][5] = 10
	g := testGrid(t, h)

	mask, err := CastShadow(context.Background(), g, NewLightDirection(270, 45), DefaultScanConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			want := i == 5 && j >= 6
			if mask.At(i, j) != want {
				t.Errorf("cell (%d,%d): shadow=%v, want %v", i, j, mask.At(i, j), want)
			}
		}
	}
}

// Raising the sun can only shrink the shadowed set.
func TestAltitudeMonotonic(t *testing.T) {
	h := make([][]float64, 12)
	for i := range h {
		h[i] = make([]float64, 12)
	}
	h[6][2] = 10
	h[3][8] = 4
	g := testGrid(t, h)

	cfg := DefaultScanConfig()
	low, err := CastShadow(context.Background(), g, NewLightDirection(270, 30), cfg)
	if err != nil {
		t.Fatal(err)
	}
	high, err := CastShadow(context.Background(), g, NewLightDirection(270, 60), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if low.count() <= high.count() {
		t.Errorf("low sun shadows %d cells, high sun %d; want strictly more at low sun here",
			low.count(), high.count())
	}
	for i, v := range high.S {
		if v && !low.S[i] {
			t.Errorf("cell %d shadowed at 60° but not at 30°", i)
		}
	}
}

// Nodata cells must neither occlude nor be marked shadowed, even when the
// 2D closing would spill onto them.
func TestNodataContainment(t *testing.T) {
	h := make([][]float64, 10)
	for i := range h {
		h[i] = make([]float64, 10)
	}
	h[5][2] = 10
	h[5][4] = testNodata
	g := testGrid(t, h)

	mask, err := CastShadow(context.Background(), g, NewLightDirection(270, 45), DefaultScanConfig())
	if err != nil {
		t.Fatal(err)
	}
	if mask.At(5, 4) {
		t.Error("nodata cell marked shadowed")
	}
	// The shadow must continue past the nodata hole.
	for _, j := range []int{3, 5, 6, 7, 8, 9} {
		if !mask.At(5, j) {
			t.Errorf("cell (5,%d) not shadowed", j)
		}
	}
	for _, j := range []int{0, 1, 2} {
		if mask.At(5, j) {
			t.Errorf("up-sun cell (5,%d) shadowed", j)
		}
	}

	// A nodata obstacle casts nothing at all.
	h2 := make([][]float64, 10)
	for i := range h2 {
		h2[i] = make([]float64, 10)
	}
	h2[5][5] = testNodata
	g2 := testGrid(t, h2)
	mask2, err := CastShadow(context.Background(), g2, NewLightDirection(270, 45), DefaultScanConfig())
	if err != nil {
		t.Fatal(err)
	}
	if n := mask2.count(); n != 0 {
		t.Errorf("nodata obstacle produced %d shadowed cells", n)
	}
}

// Opposite light directions shadow disjoint cell sets for an isolated
// obstacle.
func TestOppositeDirections(t *testing.T) {
	h := make([][]float64, 20)
	for i := range h {
		h[i] = make([]float64, 20)
	}
	h[10][10] = 5
	g := testGrid(t, h)

	east, err := CastShadow(context.Background(), g, NewLightDirection(90, 45), DefaultScanConfig())
	if err != nil {
		t.Fatal(err)
	}
	west, err := CastShadow(context.Background(), g, NewLightDirection(270, 45), DefaultScanConfig())
	if err != nil {
		t.Fatal(err)
	}
	if east.count() == 0 || west.count() == 0 {
		t.Fatal("expected shadows on both sides")
	}
	for i := range east.S {
		if east.S[i] && west.S[i] {
			t.Errorf("cell %d shadowed from both opposite directions", i)
		}
	}
}

// The max-distance cutoff truncates the strip walk; the first cell past the
// cutoff is still processed before the walk stops, matching the sweep's
// check-after-classify order.
func TestMaxDistance(t *testing.T) {
	h := make([][]float64, 10)
	for i := range h {
		h[i] = make([]float64, 10)
	}
	h[5][2] = 100
	g := testGrid(t, h)

	cfg := DefaultScanConfig()
	cfg.MaxDistance = 3
	mask, err := CastShadow(context.Background(), g, NewLightDirection(270, 45), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 10; j++ {
		want := j == 3 || j == 4
		if mask.At(5, j) != want {
			t.Errorf("cell (5,%d): shadow=%v, want %v", j, mask.At(5, j), want)
		}
	}
}

func TestCastShadowCanceled(t *testing.T) {
	g := zeroGrid(t, 50, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CastShadow(ctx, g, NewLightDirection(225, 30), DefaultScanConfig()); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestFillRayGaps(t *testing.T) {
	cases := []struct {
		name   string
		in     []bool
		maxGap int
		want   []bool
	}{
		{
			name:   "short gap filled",
			in:     []bool{true, false, false, true},
			maxGap: 3,
			want:   []bool{true, true, true, true},
		},
		{
			name:   "long gap kept",
			in:     []bool{true, false, false, false, false, true},
			maxGap: 3,
			want:   []bool{true, false, false, false, false, true},
		},
		{
			name:   "gap at strip end kept",
			in:     []bool{false, false, true, true, false},
			maxGap: 3,
			want:   []bool{false, false, true, true, false},
		},
		{
			name:   "disabled",
			in:     []bool{true, false, true},
			maxGap: 0,
			want:   []bool{true, false, true},
		},
	}
	for _, c := range cases {
		mask := newShadowMask(1, len(c.in))
		cells := make([]stripCell, len(c.in))
		for j, v := range c.in {
			mask.set(0, j, v)
			cells[j] = stripCell{l: float64(j), i: 0, j: j}
		}
		fillRayGaps(mask, cells, c.maxGap)
		for j, want := range c.want {
			if mask.At(0, j) != want {
				t.Errorf("%s: cell %d = %v, want %v", c.name, j, mask.At(0, j), want)
			}
		}
	}
}
