package diagram

import (
	"errors"
	"fmt"

	"github.com/alexiusacademia/gobem/internal/bem"
)

// Series is one named curve sampled at the chart's X values
type Series struct {
	Name string
	Y    []float64
}

// Chart holds curves sharing a common X axis
type Chart struct {
	Title  string
	XLabel string
	YLabel string

	X      []float64
	Series []Series
}

// Validate checks that every series matches the X axis
func (c *Chart) Validate() error {
	if len(c.X) == 0 {
		return errors.New("chart has no data points")
	}
	if len(c.Series) == 0 {
		return errors.New("chart has no series")
	}
	for _, s := range c.Series {
		if len(s.Y) != len(c.X) {
			return fmt.Errorf("series %q has %d values for %d x values", s.Name, len(s.Y), len(c.X))
		}
	}
	return nil
}

// TipSpeedRatioChart plots Cp and CT against λ for a fixed-wind sweep
func TipSpeedRatioChart(points []*bem.Performance) (*Chart, error) {
	c := &Chart{
		Title:  "Rotor coefficients",
		XLabel: "Tip speed ratio λ",
		YLabel: "Coefficient",
		X:      make([]float64, len(points)),
		Series: []Series{
			{Name: "Cp", Y: make([]float64, len(points))},
			{Name: "CT", Y: make([]float64, len(points))},
		},
	}
	for i, p := range points {
		if p == nil {
			return nil, fmt.Errorf("operating point %d was not evaluated", i)
		}
		c.X[i] = p.TipSpeedRatio
		c.Series[0].Y[i] = p.Cp
		c.Series[1].Y[i] = p.CT
	}
	return c, c.Validate()
}

// PowerCurveChart plots power (kW) against rpm, one curve per wind speed.
// Points must be grouped by wind speed with the same rpm grid, as built by bem.PowerCurveSweep.
func PowerCurveChart(points []*bem.Performance) (*Chart, error) {
	c := &Chart{
		Title:  "Power curves",
		XLabel: "Rotor speed (rpm)",
		YLabel: "Power (kW)",
	}
	var current *Series
	var wind float64
	for i, p := range points {
		if p == nil {
			return nil, fmt.Errorf("operating point %d was not evaluated", i)
		}
		if current == nil || p.WindSpeed != wind {
			wind = p.WindSpeed
			c.Series = append(c.Series, Series{Name: fmt.Sprintf("v0 = %g m/s", wind)})
			current = &c.Series[len(c.Series)-1]
		}
		if len(c.Series) == 1 {
			c.X = append(c.X, bem.RadPerSecToRPM(p.Omega))
		}
		current.Y = append(current.Y, p.TotalPower/1000)
	}
	return c, c.Validate()
}

// SpanwiseChart plots the normal and tangential loads along the blade
func SpanwiseChart(p *bem.Performance) (*Chart, error) {
	c := &Chart{
		Title:  fmt.Sprintf("Spanwise loads at v0 = %g m/s, λ = %.2f", p.WindSpeed, p.TipSpeedRatio),
		XLabel: "Radius (m)",
		YLabel: "Load (N/m)",
		X:      make([]float64, len(p.Sections)),
		Series: []Series{
			{Name: "pn", Y: make([]float64, len(p.Sections))},
			{Name: "pt", Y: make([]float64, len(p.Sections))},
		},
	}
	for i, s := range p.Sections {
		c.X[i] = s.R
		c.Series[0].Y[i] = s.Pn
		c.Series[1].Y[i] = s.Pt
	}
	return c, c.Validate()
}
