package diagram

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// ASCII renders the chart as a terminal line graph. The graph is sampled by index, so
// the X values only appear in the caption range.
func (c *Chart) ASCII(height, width int) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	data := make([][]float64, len(c.Series))
	names := make([]string, len(c.Series))
	for i, s := range c.Series {
		data[i] = s.Y
		names[i] = s.Name
	}

	caption := fmt.Sprintf("%s: %s vs %s [%g .. %g] (%s)",
		c.Title, c.YLabel, c.XLabel, c.X[0], c.X[len(c.X)-1], strings.Join(names, ", "))

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(3),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.PlotMany(data, opts...), nil
}

// DrawSummaryBox frames a title and result lines in a box
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := len([]rune(title))
	for _, line := range lines {
		if n := len([]rune(line)); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title, maxLen-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line, maxLen-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// pad right-pads s to n runes; fmt widths count bytes
func pad(s string, n int) string {
	if k := n - len([]rune(s)); k > 0 {
		return s + strings.Repeat(" ", k)
	}
	return s
}
