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

package windstats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// A Matrix is an aggregated wind-frequency matrix: event counts (or
// frequencies) per direction sector and integer 1 m/s speed class. Missing
// classes between zero and the highest observed class count as empty.
type Matrix struct {
	// Directions holds the sector azimuths in column order, degrees.
	Directions []float64

	// Counts maps each direction to its per-class counts, indexed by
	// speed class 0..MaxSpeed.
	Counts map[float64][]float64

	// MaxSpeed is the highest observed integer speed class.
	MaxSpeed int
}

// ReadMatrix parses a wind-frequency matrix CSV: a "vclass" column followed
// by one column per direction, the direction azimuth in the header. The
// delimiter is sniffed (semicolon, comma, or tab). Rows with an infinite or
// non-numeric vclass (such as an open-ended overflow bin) are ignored.
// Non-integer spacing between the remaining classes is an error, since the
// derivation assumes 1 m/s bins; missing intermediate bins are zero-filled.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("windstats: reading matrix: %v", err)
	}
	text := strings.TrimPrefix(string(raw), "\uFEFF")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("windstats: parsing matrix CSV: %v", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("windstats: matrix CSV is empty")
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("windstats: matrix needs a vclass column and at least one direction column")
	}

	// Direction columns are the header entries after the first that parse
	// as numbers; anything else is ignored.
	type dirCol struct {
		col int
		az  float64
	}
	var dirCols []dirCol
	for idx, name := range header[1:] {
		az, err := strconv.ParseFloat(strings.TrimSpace(name), 64)
		if err != nil {
			continue
		}
		dirCols = append(dirCols, dirCol{col: idx + 1, az: az})
	}
	if len(dirCols) == 0 {
		return nil, fmt.Errorf("windstats: no direction columns found in header %v", header)
	}

	// First pass: the set of integer speed classes.
	var speeds []int
	seen := make(map[int]bool)
	for _, row := range rows[1:] {
		speed, frac, ok := parseVclass(row)
		if !ok {
			continue
		}
		if frac {
			return nil, fmt.Errorf("windstats: vclass %q is not on a 1 m/s binning; check the aggregation",
				strings.TrimSpace(row[0]))
		}
		if !seen[speed] {
			seen[speed] = true
			speeds = append(speeds, speed)
		}
	}
	if len(speeds) == 0 {
		return nil, fmt.Errorf("windstats: no numeric vclass values found")
	}
	minSpeed, maxSpeed := speeds[0], speeds[0]
	for _, s := range speeds[1:] {
		if s < minSpeed {
			minSpeed = s
		}
		if s > maxSpeed {
			maxSpeed = s
		}
	}
	if minSpeed < 0 {
		return nil, fmt.Errorf("windstats: negative vclass %d is not supported", minSpeed)
	}

	m := &Matrix{
		Counts:   make(map[float64][]float64, len(dirCols)),
		MaxSpeed: maxSpeed,
	}
	for _, dc := range dirCols {
		m.Directions = append(m.Directions, dc.az)
		m.Counts[dc.az] = make([]float64, maxSpeed+1)
	}

	// Second pass: accumulate counts; blank or non-numeric cells count as
	// zero events.
	for _, row := range rows[1:] {
		speed, _, ok := parseVclass(row)
		if !ok || speed < 0 || speed > maxSpeed {
			continue
		}
		for _, dc := range dirCols {
			if dc.col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[dc.col])
			if cell == "" {
				continue
			}
			count, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
			if err != nil {
				continue
			}
			m.Counts[dc.az][speed] += count
		}
	}
	return m, nil
}

// parseVclass extracts the integer speed class from a data row, skipping
// blank, non-numeric, infinite and NaN values. frac reports a class value
// that is not (close to) an integer, which means the binning is wrong.
func parseVclass(row []string) (speed int, frac, ok bool) {
	if len(row) == 0 {
		return 0, false, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, false
	}
	return int(math.Round(v)), math.Abs(v-math.Round(v)) > 1e-6, true
}

// sniffDelimiter picks the most frequent candidate delimiter in the first
// few lines, defaulting to the semicolon used by the DWD aggregation tools.
func sniffDelimiter(text string) rune {
	sample := text
	if lines := strings.SplitN(text, "\n", 11); len(lines) > 10 {
		sample = strings.Join(lines[:10], "\n")
	}
	best, bestCount := ';', strings.Count(sample, ";")
	if n := strings.Count(sample, ","); n > bestCount {
		best, bestCount = ',', n
	}
	if n := strings.Count(sample, "\t"); n > bestCount {
		best = '\t'
	}
	return best
}

// WriteTable writes the parameter table as a semicolon-separated CSV with
// the WERA column layout (Record;Bez;Azimut;Altitude;Constant), ready to be
// fed to the shadow calculator.
func WriteTable(w io.Writer, params []Parameter) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Record", "Bez", "Azimut", "Altitude", "Constant"}); err != nil {
		return fmt.Errorf("windstats: writing table header: %v", err)
	}
	for _, p := range params {
		rec := []string{
			strconv.Itoa(p.Record),
			p.Label,
			strconv.FormatFloat(p.Azimuth, 'g', -1, 64),
			strconv.FormatFloat(p.Altitude, 'g', -1, 64),
			strconv.FormatFloat(p.Constant, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("windstats: writing table row %d: %v", p.Record, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
