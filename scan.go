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
	"math"
	"sort"
)

// ScanConfig holds the tuning parameters of the shadow scan. There is no
// package-level tuning state; a config is passed explicitly into every scan.
type ScanConfig struct {
	// MaxGapCells is the longest run of lit cells between two shadowed
	// cells of the same strip that the 1D gap fill flips to shadow. Zero
	// disables the fill.
	MaxGapCells int

	// MaxDistance truncates each strip walk once the along-light distance
	// from the strip's sunward end exceeds it, in CRS units. Zero means
	// unlimited within the grid.
	MaxDistance float64

	// FatShadow adds one extra dilation with FatKernel (3×3 or 2×2) after
	// the closing, giving a deliberately more conservative shadow region.
	// It applies only to masks produced by the internal scanner, never to
	// masks from an external backend.
	FatShadow bool
	FatKernel int

	// PreferBackend selects whether an external shadow backend, when one
	// is supplied, is tried before the internal scanner.
	PreferBackend bool
}

// DefaultScanConfig returns the default scan tuning.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MaxGapCells:   3,
		MaxDistance:   0,
		FatShadow:     false,
		FatKernel:     3,
		PreferBackend: true,
	}
}

// CastShadow computes the shadow mask of grid g for one light direction
// using the strip-sweep horizon scan: the grid is partitioned into strips
// perpendicular to the light direction, and each strip is walked from its
// sunward end toward the lee while a running horizon height classifies each
// cell as lit or shadowed.
//
// Cancellation is checked between strips; a canceled context returns
// ctx.Err() with no mask.
func CastShadow(ctx context.Context, g *ElevationGrid, dir LightDirection, cfg ScanConfig) (*ShadowMask, error) {
	basis := dir.pixelBasis(g.Dx, g.Dy)
	st := newStripper(g, basis)
	mask := newShadowMask(g.Rows(), g.Cols())

	// Tolerance against floating-point noise; keeps a flat surface from
	// shadowing itself.
	eps := 1e-5 * math.Max(g.Dx, g.Dy)

	var buf []stripCell
	for s := st.s0; s <= st.s1; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf = st.cells(g, s, buf)
		if len(buf) == 0 {
			continue
		}
		scanStrip(g, mask, buf, dir.TanAlt, eps, cfg.MaxDistance)
		fillRayGaps(mask, buf, cfg.MaxGapCells)
	}

	mask.clearNodata(g)
	mask = mask.closeHoles()
	if cfg.FatShadow {
		mask = mask.dilate(cfg.FatKernel)
	}
	// The closing and dilation can spill onto masked cells; force them
	// clear again before the mask leaves the scanner.
	mask.clearNodata(g)
	return mask, nil
}

// scanStrip classifies the cells of one strip. Cells are ordered sunward to
// lee by their along-light coordinate; a cell is shadowed when the running
// horizon exceeds its own projected sun-ray height T = z + tanAlt·d. The
// horizon is raised by every cell, shadowed or not: terrain that is itself
// in shadow still blocks cells further down-sun.
func scanStrip(g *ElevationGrid, mask *ShadowMask, cells []stripCell, tanAlt, eps, maxDist float64) {
	sort.Slice(cells, func(a, b int) bool { return cells[a].l < cells[b].l })

	l0 := cells[0].l
	horizon := math.Inf(-1)
	for _, c := range cells {
		d := c.l - l0
		t := g.Heights.Get(c.i, c.j) + tanAlt*d
		if horizon > t-eps {
			mask.set(c.i, c.j, true)
		}
		if t > horizon {
			horizon = t
		}
		if maxDist > 0 && d > maxDist {
			break
		}
	}
}

// fillRayGaps flips runs of at most maxGap consecutive lit cells that are
// bounded by shadowed cells on both sides within one strip's sorted order.
// Such short gaps are sampling artifacts of the strip discretization, not
// true terrain gaps.
func fillRayGaps(mask *ShadowMask, cells []stripCell, maxGap int) {
	if maxGap <= 0 || len(cells) < 3 {
		return
	}
	n := len(cells)
	for k := 0; k < n; {
		if mask.At(cells[k].i, cells[k].j) {
			k++
			continue
		}
		start := k
		for k < n && !mask.At(cells[k].i, cells[k].j) {
			k++
		}
		end := k - 1
		if start == 0 || end == n-1 {
			continue // gap touches a strip end; not bounded by shadow
		}
		if end-start+1 <= maxGap {
			for t := start; t <= end; t++ {
				mask.set(cells[t].i, cells[t].j, true)
			}
		}
	}
}
