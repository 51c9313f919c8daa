package diagram

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveImage renders the chart to filename. The format follows the extension
// (.png, .svg, .pdf); any other extension gets .png appended.
func (c *Chart) SaveImage(filename string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	args := make([]interface{}, 0, 2*len(c.Series))
	for _, s := range c.Series {
		pts := make(plotter.XYs, len(c.X))
		for i := range c.X {
			pts[i].X = c.X[i]
			pts[i].Y = s.Y[i]
		}
		args = append(args, s.Name, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("plotting failed: %w", err)
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.LineStyle.Color = plotutil.Color(7)
	zero.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(zero)

	width := 8 * vg.Inch
	height := 6 * vg.Inch

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
