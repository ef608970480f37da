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

// Package sagacmd runs SAGA's analytical hillshading ("shadows only"
// method) through the saga_cmd executable as an external shadow backend.
// Grids are exchanged through temporary ASCII files; whether SAGA is
// installed at all is only discovered by running it.
package sagacmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/wera"
	"github.com/spatialmodel/wera/internal/ascgrid"
)

// Backend invokes saga_cmd for every shadow request.
type Backend struct {
	// Cmd is the saga_cmd executable; it defaults to "saga_cmd" resolved
	// through PATH.
	Cmd string

	// TempDir is where exchange grids are created; empty means the system
	// temp directory.
	TempDir string
}

// New returns a Backend using the saga_cmd found on PATH.
func New() *Backend { return &Backend{Cmd: "saga_cmd"} }

// Name implements wera.ShadowBackend.
func (b *Backend) Name() string { return "saga_cmd" }

// unavailablePhrases mark saga_cmd failures that mean the tool chain is
// missing, as opposed to a request-specific failure.
var unavailablePhrases = []string{
	"library not found",
	"module not found",
	"tool not found",
	"could not load library",
	"ta_lighting",
}

// Shadow implements wera.ShadowBackend by running SAGA analytical
// hillshading with METHOD=3 (shadows only). In the returned raster, sunlit
// cells hold the nodata value and shadowed cells a finite value.
func (b *Backend) Shadow(ctx context.Context, g *wera.ElevationGrid, azimuth, altitude float64) (*sparse.DenseArray, float64, error) {
	if g.Dx != g.Dy {
		return nil, 0, fmt.Errorf("sagacmd: ASCII grid exchange needs square cells, have %g x %g", g.Dx, g.Dy)
	}

	dir, err := os.MkdirTemp(b.TempDir, "wera-saga-")
	if err != nil {
		return nil, 0, fmt.Errorf("sagacmd: creating temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	demPath := filepath.Join(dir, "dem.asc")
	shadePath := filepath.Join(dir, "shade.asc")
	if err := writeDEM(demPath, g); err != nil {
		return nil, 0, err
	}

	cmdName := b.Cmd
	if cmdName == "" {
		cmdName = "saga_cmd"
	}
	cmd := exec.CommandContext(ctx, cmdName,
		"-f=s", "ta_lighting", "0",
		"-ELEVATION", demPath,
		"-SHADE", shadePath,
		"-METHOD", "3", // shadows only
		"-POSITION", "0", // azimuth and height given directly
		"-AZIMUTH", fmt.Sprintf("%g", azimuth),
		"-DECLINATION", fmt.Sprintf("%g", altitude),
		"-EXAGGERATION", "1",
		"-SHADOW", "1", // fat shadow tracing
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, 0, &wera.UnavailableError{Backend: b.Name(), Err: err}
		}
		msg := strings.ToLower(out.String())
		for _, phrase := range unavailablePhrases {
			if strings.Contains(msg, phrase) {
				return nil, 0, &wera.UnavailableError{
					Backend: b.Name(),
					Err:     fmt.Errorf("%v: %s", err, firstLine(out.String())),
				}
			}
		}
		return nil, 0, fmt.Errorf("sagacmd: saga_cmd failed: %v: %s", err, firstLine(out.String()))
	}

	f, err := os.Open(shadePath)
	if err != nil {
		return nil, 0, fmt.Errorf("sagacmd: opening shade output: %v", err)
	}
	defer f.Close()
	shade, err := ascgrid.Read(f)
	if err != nil {
		return nil, 0, fmt.Errorf("sagacmd: reading shade output: %v", err)
	}
	return shade.Data, shade.Nodata, nil
}

func writeDEM(path string, g *wera.ElevationGrid) error {
	ag := &ascgrid.Grid{
		Ncols:    g.Cols(),
		Nrows:    g.Rows(),
		Xll:      g.GeoTransform[0],
		Yll:      g.GeoTransform[3] - float64(g.Rows())*g.Dy,
		CellSize: g.Dx,
		Nodata:   g.NodataValue,
		Data:     g.Heights,
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sagacmd: creating exchange DEM: %v", err)
	}
	defer f.Close()
	if err := ag.Write(f); err != nil {
		return fmt.Errorf("sagacmd: writing exchange DEM: %v", err)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
