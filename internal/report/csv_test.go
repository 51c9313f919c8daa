package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

func readAll(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteSections(t *testing.T) {
	p := &bem.Performance{Sections: []bem.SectionResult{
		{
			Index: 2,
			SegmentResult: bem.SegmentResult{
				Station:    geometry.Station{R: 5, Chord: 3, Pitch: 8, Thickness: 100},
				A:          0.1,
				Cn:         0.5,
				Loads:      bem.Loads{Pn: 120.5},
				Iterations: 17,
			},
			Dr:    2.5,
			Power: 4000,
		},
	}}

	var buf bytes.Buffer
	if err := WriteSections(&buf, p); err != nil {
		t.Fatal(err)
	}
	rows := readAll(t, &buf)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, expected header + 1", len(rows))
	}
	row := map[string]string{}
	for i, h := range rows[0] {
		row[h] = rows[1][i]
	}
	want := map[string]string{"index": "2", "r": "5", "a": "0.1", "pn": "120.5", "dr": "2.5", "power": "4000", "iterations": "17"}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("%s = %q, expected %q", k, row[k], v)
		}
	}
}

func TestWritePerformanceSkipsMissingPoints(t *testing.T) {
	points := []*bem.Performance{
		{WindSpeed: 10, Omega: bem.RPMToRadPerSec(60), TotalPower: 1e6, Failures: []bem.StationFailure{{Index: 0}}},
		nil,
		{WindSpeed: 12},
	}
	var buf bytes.Buffer
	if err := WritePerformance(&buf, points); err != nil {
		t.Fatal(err)
	}
	rows := readAll(t, &buf)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, expected 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(PerformanceHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "60" || rows[1][4] != "1000000" || rows[1][9] != "1" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	err := WriteFile(path, func(w io.Writer) error {
		return WritePerformance(w, []*bem.Performance{{WindSpeed: 8}})
	})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "wind_speed,omega") {
		t.Errorf("unexpected file content: %q", data)
	}
}
