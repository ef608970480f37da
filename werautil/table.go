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

package werautil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/wera"
	"github.com/tealeg/xlsx"
)

// TableColumns names the parameter-table columns holding the four values of
// a scan request. Matching is case-insensitive.
type TableColumns struct {
	Label, Azimuth, Altitude, Constant string
}

// DefaultTableColumns returns the WERA column naming convention.
func DefaultTableColumns() TableColumns {
	return TableColumns{Label: "Bez", Azimuth: "Azimut", Altitude: "Altitude", Constant: "Constant"}
}

// ReadScanRequests reads the parameter table at path, dispatching on the
// file extension (.csv, .xlsx, .xls). Rows missing any of the four values
// are reported and skipped, never fatal; the returned slice holds only the
// usable rows, which may be empty.
func ReadScanRequests(path, sheet string, cols TableColumns) ([]wera.ScanRequest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRequests(path, cols)
	case ".xlsx", ".xls":
		f, err := xlsx.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("wera: opening parameter table %s: %v", path, err)
		}
		return readXLSXRequests(f, sheet, cols)
	default:
		return nil, fmt.Errorf("wera: parameter table %s: only .csv, .xlsx, and .xls are supported", path)
	}
}

func readCSVRequests(path string, cols TableColumns) ([]wera.ScanRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wera: reading parameter table: %v", err)
	}
	text := strings.TrimPrefix(string(raw), "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("wera: parameter table %s is empty", path)
	}

	// More semicolons than commas in the first line means semicolons.
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	delim := ';'
	if strings.Count(firstLine, ",") > strings.Count(firstLine, ";") {
		delim = ','
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("wera: parsing parameter table: %v", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("wera: parameter table %s has no data rows", path)
	}

	idx := headerIndex(rows[0])
	get := func(row []string, col string) (string, bool) {
		i, ok := idx[strings.ToLower(col)]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	var requests []wera.ScanRequest
	for n, row := range rows[1:] {
		label, _ := get(row, cols.Label)
		azs, _ := get(row, cols.Azimuth)
		alts, _ := get(row, cols.Altitude)
		cs, _ := get(row, cols.Constant)
		req, ok := buildRequest(label, azs, alts, cs)
		if !ok {
			logrus.WithField("row", n+2).Error("parameter table row incomplete (label/azimuth/altitude/constant); skipped")
			continue
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// readXLSXRequests reads the requests from an opened Excel workbook; sheet
// selects the worksheet by name, empty meaning the first one.
func readXLSXRequests(f *xlsx.File, sheet string, cols TableColumns) ([]wera.ScanRequest, error) {
	var s *xlsx.Sheet
	if sheet != "" {
		var ok bool
		if s, ok = f.Sheet[sheet]; !ok {
			return nil, fmt.Errorf("wera: parameter table has no sheet %s", sheet)
		}
	} else {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("wera: parameter table workbook has no sheets")
		}
		s = f.Sheets[0]
	}
	if s.MaxRow < 2 {
		return nil, fmt.Errorf("wera: parameter table sheet %s has no data rows", s.Name)
	}

	header := make([]string, s.MaxCol)
	for c := 0; c < s.MaxCol; c++ {
		header[c] = s.Cell(0, c).Value
	}
	idx := headerIndex(header)
	get := func(r int, col string) (string, bool) {
		c, ok := idx[strings.ToLower(col)]
		if !ok {
			return "", false
		}
		return s.Cell(r, c).Value, true
	}

	var requests []wera.ScanRequest
	for r := 1; r < s.MaxRow; r++ {
		label, _ := get(r, cols.Label)
		azs, _ := get(r, cols.Azimuth)
		alts, _ := get(r, cols.Altitude)
		cs, _ := get(r, cols.Constant)
		req, ok := buildRequest(label, azs, alts, cs)
		if !ok {
			if label == "" && azs == "" && alts == "" && cs == "" {
				continue // silently allow fully blank trailing rows
			}
			logrus.WithField("row", r+1).Error("parameter table row incomplete (label/azimuth/altitude/constant); skipped")
			continue
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// headerIndex maps lower-cased, trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// buildRequest assembles a scan request from the raw cell values, accepting
// comma decimal separators. ok is false when any value is missing or
// unparseable.
func buildRequest(label, az, alt, c string) (wera.ScanRequest, bool) {
	req := wera.ScanRequest{Label: strings.TrimSpace(label)}
	if req.Label == "" {
		return req, false
	}
	var err error
	if req.Azimuth, err = parseTableFloat(az); err != nil {
		return req, false
	}
	if req.Altitude, err = parseTableFloat(alt); err != nil {
		return req, false
	}
	if req.Constant, err = parseTableFloat(c); err != nil {
		return req, false
	}
	return req, true
}

func parseTableFloat(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}
