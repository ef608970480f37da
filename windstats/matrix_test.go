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
	"strings"
	"testing"
)

func TestReadMatrix(t *testing.T) {
	const csvText = `vclass;90;270
1;10;20
2;30;40
5;50;0,5
inf;99;99
`
	m, err := ReadMatrix(strings.NewReader(csvText))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Directions) != 2 || m.Directions[0] != 90 || m.Directions[1] != 270 {
		t.Fatalf("directions = %v, want [90 270]", m.Directions)
	}
	if m.MaxSpeed != 5 {
		t.Fatalf("MaxSpeed = %d, want 5", m.MaxSpeed)
	}
	// Classes 0, 3 and 4 are absent from the file and zero-filled; the
	// overflow bin at inf is ignored.
	want90 := []float64{0, 10, 30, 0, 0, 50}
	want270 := []float64{0, 20, 40, 0, 0, 0.5}
	for speed := 0; speed <= 5; speed++ {
		if m.Counts[90][speed] != want90[speed] {
			t.Errorf("counts[90][%d] = %g, want %g", speed, m.Counts[90][speed], want90[speed])
		}
		if m.Counts[270][speed] != want270[speed] {
			t.Errorf("counts[270][%d] = %g, want %g", speed, m.Counts[270][speed], want270[speed])
		}
	}
}

func TestReadMatrixCommaDelimited(t *testing.T) {
	const csvText = "vclass,45,225\n7,1,2\n8,3,4\n"
	m, err := ReadMatrix(strings.NewReader(csvText))
	if err != nil {
		t.Fatal(err)
	}
	if m.MaxSpeed != 8 {
		t.Fatalf("MaxSpeed = %d, want 8", m.MaxSpeed)
	}
	if m.Counts[45][7] != 1 || m.Counts[225][8] != 4 {
		t.Errorf("counts = %v", m.Counts)
	}
}

func TestReadMatrixErrors(t *testing.T) {
	cases := []struct {
		name, text string
	}{
		{"non-integer binning", "vclass;90\n1.5;3\n"},
		{"negative class", "vclass;90\n-1;3\n"},
		{"no direction columns", "vclass;name\n1;3\n"},
		{"no classes", "vclass;90\ninf;3\n"},
		{"empty", ""},
	}
	for _, c := range cases {
		if _, err := ReadMatrix(strings.NewReader(c.text)); err == nil {
			t.Errorf("%s: no error", c.name)
		}
	}
}

func TestReadMatrixBOM(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader("\uFEFFvclass;90\n7;2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Counts[90][7] != 2 {
		t.Errorf("counts = %v", m.Counts)
	}
}

func TestWriteTable(t *testing.T) {
	params := []Parameter{
		{Record: 1, Label: "r90a", Azimuth: 90, Altitude: 12.5, Constant: 1},
		{Record: 2, Label: "r90f", Azimuth: 270, Altitude: 45, Constant: 5},
	}
	var b strings.Builder
	if err := WriteTable(&b, params); err != nil {
		t.Fatal(err)
	}
	want := "Record;Bez;Azimut;Altitude;Constant\n" +
		"1;r90a;90;12.5;1\n" +
		"2;r90f;270;45;5\n"
	if b.String() != want {
		t.Errorf("table:\n%s\nwant:\n%s", b.String(), want)
	}
}
