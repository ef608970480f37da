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

	"github.com/ctessum/sparse"
)

// A ShadowBackend is an external shadow computation, typically an
// analytical-hillshade implementation in a GIS engine. It returns a raster
// in the backend's own convention: sunlit cells hold the returned nodata
// value, shadowed cells hold any finite value. Whether the backend is
// usable at all is only discovered by calling it; there is no feature probe.
type ShadowBackend interface {
	Shadow(ctx context.Context, g *ElevationGrid, azimuth, altitude float64) (shade *sparse.DenseArray, nodata float64, err error)

	// Name identifies the backend in log messages.
	Name() string
}

// UnavailableError reports that a backend is missing entirely (executable
// not installed, algorithm not registered) as opposed to having failed for
// one particular request. The batch runner disables a backend for the rest
// of the run on the first UnavailableError, while other errors only fall
// back for the request at hand.
type UnavailableError struct {
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("wera: backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type backendState int

const (
	backendPreferred backendState = iota
	backendFallbackOnly
)

// errBackendDisabled is returned by the adapter once the backend has been
// downgraded, or when no backend was configured at all.
var errBackendDisabled = errors.New("wera: external backend disabled")

// A backendAdapter governs the choice between an external shadow backend
// and the internal scanner. It starts in the preferred state and moves to
// fallback-only exactly once, the first time the backend reports itself
// unavailable.
type backendAdapter struct {
	backend ShadowBackend
	state   backendState
}

func newBackendAdapter(b ShadowBackend, prefer bool) *backendAdapter {
	a := &backendAdapter{backend: b}
	if b == nil || !prefer {
		a.state = backendFallbackOnly
	}
	return a
}

// shadow runs the external backend and translates its raster into this
// system's boolean convention. An UnavailableError additionally downgrades
// the adapter so later requests skip the backend without calling it.
func (a *backendAdapter) shadow(ctx context.Context, g *ElevationGrid, dir LightDirection) (*ShadowMask, error) {
	if a.state != backendPreferred {
		return nil, errBackendDisabled
	}
	shade, nodata, err := a.backend.Shadow(ctx, g, dir.Azimuth, dir.Altitude)
	if err != nil {
		var unavail *UnavailableError
		if errors.As(err, &unavail) {
			a.state = backendFallbackOnly
		}
		return nil, err
	}
	if len(shade.Shape) != 2 || shade.Shape[0] != g.Rows() || shade.Shape[1] != g.Cols() {
		return nil, fmt.Errorf("wera: backend %s returned shape %v, want [%d %d]",
			a.backend.Name(), shade.Shape, g.Rows(), g.Cols())
	}
	mask := newShadowMask(g.Rows(), g.Cols())
	for i, v := range shade.Elements {
		mask.S[i] = !math.IsNaN(v) && !math.IsInf(v, 0) && v != nodata
	}
	mask.clearNodata(g)
	return mask, nil
}
