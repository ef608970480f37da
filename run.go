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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// A ScanRequest asks for one shadow mask: a label for the output name, the
// light direction, and the constant stamped into shadowed cells.
type ScanRequest struct {
	Label             string
	Azimuth, Altitude float64
	Constant          float64
}

// A RasterWriter persists one output raster per scan request. The grid
// supplies the affine transform, CRS and nodata sentinel that the output
// must carry.
type RasterWriter interface {
	WriteRaster(name string, data *sparse.DenseArray, g *ElevationGrid) error
}

// Run computes one shadow raster per request and hands each to w. When a
// backend is supplied and cfg.PreferBackend is set, the external backend is
// tried first for every request; it is disabled for the rest of the run the
// first time it reports itself unavailable, while any other backend failure
// falls back to the internal scanner for that request only. Backend masks
// are written as-is; the fat-shadow postprocessing only ever applies to
// internally scanned masks.
//
// A failing request is logged and skipped; the run only fails as a whole if
// the context is canceled or no output at all could be produced. The names
// of the written rasters are returned.
func Run(ctx context.Context, g *ElevationGrid, requests []ScanRequest, backend ShadowBackend, w RasterWriter, cfg ScanConfig) ([]string, error) {
	if g == nil {
		return nil, fmt.Errorf("wera: nil elevation grid")
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("wera: empty scan request table")
	}
	if w == nil {
		return nil, fmt.Errorf("wera: nil raster writer")
	}

	adapter := newBackendAdapter(backend, cfg.PreferBackend)
	var written []string

	for n, req := range requests {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		reqLog := logrus.WithFields(logrus.Fields{
			"row":      n + 1,
			"label":    req.Label,
			"azimuth":  req.Azimuth,
			"altitude": req.Altitude,
			"constant": req.Constant,
		})

		dir := NewLightDirection(req.Azimuth, req.Altitude)

		mask, err := adapter.shadow(ctx, g, dir)
		if err != nil {
			if !errors.Is(err, errBackendDisabled) {
				reqLog.WithError(err).Error("external backend failed; falling back to internal scan")
			}
			mask, err = CastShadow(ctx, g, dir, cfg)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return written, err
				}
				reqLog.WithError(err).Error("shadow scan failed; skipping row")
				continue
			}
		}

		name := OutputName(req.Label, req.Azimuth, req.Altitude, req.Constant)
		if err := w.WriteRaster(name, OutputRaster(g, mask, req.Constant), g); err != nil {
			reqLog.WithError(err).Error("writing output raster failed; skipping row")
			continue
		}
		reqLog.WithField("output", name).Info("shadow mask written")
		written = append(written, name)
	}

	if len(written) == 0 {
		return nil, fmt.Errorf("wera: no shadow masks were created")
	}
	return written, nil
}

// OutputName builds the file name stem for one request:
// <label>_sm_az<azimuth>_alt<altitude>_c<constant>. The label is slugged to
// filesystem-safe characters; integral constants lose their decimal point.
func OutputName(label string, azimuth, altitude, constant float64) string {
	ctag := strconv.FormatFloat(constant, 'g', -1, 64)
	if constant == math.Trunc(constant) && !math.IsInf(constant, 0) {
		ctag = strconv.Itoa(int(constant))
	}
	return fmt.Sprintf("%s_sm_az%d_alt%d_c%s",
		slug(label), int(math.Round(azimuth)), int(math.Round(altitude)), ctag)
}

// slug replaces characters that are unsafe in file names.
func slug(name string) string {
	var b strings.Builder
	for _, ch := range strings.TrimSpace(name) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9',
			ch == '.', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	s := strings.Trim(b.String(), " .")
	if s == "" {
		return "shadow"
	}
	return s
}
