package diagram

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexiusacademia/gobem/internal/bem"
	"github.com/alexiusacademia/gobem/internal/geometry"
)

func sampleChart() *Chart {
	return &Chart{
		Title:  "Rotor coefficients",
		XLabel: "Tip speed ratio λ",
		YLabel: "Coefficient",
		X:      []float64{1, 2, 3, 4},
		Series: []Series{
			{Name: "Cp", Y: []float64{0.1, 0.3, 0.45, 0.4}},
			{Name: "CT", Y: []float64{0.2, 0.5, 0.8, 0.9}},
		},
	}
}

func TestValidate(t *testing.T) {
	c := sampleChart()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	c.Series[1].Y = c.Series[1].Y[:3]
	if err := c.Validate(); err == nil {
		t.Error("expected a length mismatch error")
	}
	if err := (&Chart{}).Validate(); err == nil {
		t.Error("expected an empty chart error")
	}
}

func TestTipSpeedRatioChart(t *testing.T) {
	points := []*bem.Performance{
		{TipSpeedRatio: 2, Cp: 0.2, CT: 0.3},
		{TipSpeedRatio: 4, Cp: 0.4, CT: 0.6},
	}
	c, err := TipSpeedRatioChart(points)
	if err != nil {
		t.Fatal(err)
	}
	if c.X[1] != 4 || c.Series[0].Y[1] != 0.4 || c.Series[1].Y[0] != 0.3 {
		t.Errorf("unexpected chart: %+v", c)
	}

	if _, err := TipSpeedRatioChart([]*bem.Performance{points[0], nil}); err == nil {
		t.Error("expected an error for a missing point")
	}
}

func TestPowerCurveChartGroupsByWind(t *testing.T) {
	var points []*bem.Performance
	for _, pt := range bem.PowerCurveSweep([]float64{6, 8}, 10, 30, 3) {
		points = append(points, &bem.Performance{WindSpeed: pt.WindSpeed, Omega: pt.Omega, TotalPower: 1000 * pt.WindSpeed})
	}

	c, err := PowerCurveChart(points)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Series) != 2 || len(c.X) != 3 {
		t.Fatalf("got %d series over %d x values", len(c.Series), len(c.X))
	}
	if c.Series[1].Name != "v0 = 8 m/s" || c.Series[1].Y[2] != 8 {
		t.Errorf("unexpected second series: %+v", c.Series[1])
	}
	if d := c.X[2] - 30; d > 1e-9 || d < -1e-9 {
		t.Errorf("last rpm = %v, expected 30", c.X[2])
	}
}

func TestSpanwiseChart(t *testing.T) {
	p := &bem.Performance{Sections: []bem.SectionResult{
		{SegmentResult: bem.SegmentResult{Station: geometry.Station{R: 3}, Loads: bem.Loads{Pn: 100, Pt: 10}}},
		{SegmentResult: bem.SegmentResult{Station: geometry.Station{R: 6}, Loads: bem.Loads{Pn: 400, Pt: 40}}},
	}}
	c, err := SpanwiseChart(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.X[1] != 6 || c.Series[0].Y[1] != 400 || c.Series[1].Y[0] != 10 {
		t.Errorf("unexpected chart: %+v", c)
	}
}

func TestASCII(t *testing.T) {
	out, err := sampleChart().ASCII(10, 40)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rotor coefficients") || !strings.Contains(out, "Cp, CT") {
		t.Errorf("caption missing from graph:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines < 10 {
		t.Errorf("graph has %d lines, expected at least the requested height", lines)
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, sampleChart()); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "echarts", "Cp", "CT"} {
		if !strings.Contains(html, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"curve.png", "curve.svg", "plots/curve"} {
		path := filepath.Join(dir, name)
		if err := sampleChart().SaveImage(path); err != nil {
			t.Fatalf("SaveImage(%s): %v", name, err)
		}
		if filepath.Ext(path) == "" {
			path += ".png"
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s was not written: %v", path, err)
		}
	}
}

func TestDrawSummaryBoxAlignsUnicode(t *testing.T) {
	box := DrawSummaryBox("Rotor", []string{"λ = 7.0", "P = 1.2 MW"})
	lines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	width := len([]rune(lines[0]))
	for _, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Errorf("line %q has width %d, expected %d", l, n, width)
		}
	}
}
