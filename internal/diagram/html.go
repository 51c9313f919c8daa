package diagram

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func (c *Chart) line() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     types.ThemeWesteros,
			PageTitle: c.Title,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.YLabel + " vs " + c.XLabel,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: c.XLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  c.YLabel,
			Scale: opts.Bool(true),
		}),
	)

	x := make([]string, len(c.X))
	for i, v := range c.X {
		x[i] = strconv.FormatFloat(v, 'g', 4, 64)
	}
	line.SetXAxis(x)

	for _, s := range c.Series {
		data := make([]opts.LineData, len(s.Y))
		for i, y := range s.Y {
			data[i] = opts.LineData{Value: y}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}

// RenderHTML writes the charts as one interactive HTML page
func RenderHTML(w io.Writer, cs ...*Chart) error {
	page := components.NewPage()
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
		page.AddCharts(c.line())
	}
	return page.Render(w)
}
