package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ajdepersio/ConfigUsageReport/pkg/report"
	"github.com/fatih/color"
)

// formatTable renders per-extension usage counts as an aligned console table
func (f *formatter) formatTable(table *report.Table) (string, error) {
	f.log.Debug("Formatting table output")

	cols := f.columns(table)

	header := append([]string{CodeHeader}, cols...)
	header = append(header, "Total")

	cells := make([][]string, 0, table.Len())
	for _, row := range table.Rows {
		line := make([]string, 0, len(header))
		line = append(line, row.Code)
		for _, ext := range cols {
			line = append(line, strconv.Itoa(len(row.Extension(ext))))
		}
		line = append(line, strconv.Itoa(len(row.Files)))
		cells = append(cells, line)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, line := range cells {
		for i, c := range line {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	headerColor := f.color(color.FgWhite, color.Bold)
	codeColor := f.color(color.FgBlue, color.Bold)
	zeroColor := f.color(color.FgHiBlack)

	var b strings.Builder
	for i, h := range header {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(headerColor.Sprint(pad(h, widths[i], i > 0)))
	}
	b.WriteString("\n")

	for _, line := range cells {
		for i, c := range line {
			cell := pad(c, widths[i], i > 0)
			switch {
			case i == 0:
				cell = codeColor.Sprint(cell)
			case c == "0":
				cell = zeroColor.Sprint(cell)
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	if f.config.WithStats {
		f.log.Debug("Adding statistics to output")
		s := f.calculateStats(table)
		b.WriteString("\nStatistics:\n")
		b.WriteString(fmt.Sprintf("  Codes Used: %d\n", s.Codes))
		b.WriteString(fmt.Sprintf("  Files With Usages: %d\n", s.Files))
		b.WriteString(fmt.Sprintf("  Total Usages: %d\n", s.Usages))
	}

	return b.String(), nil
}

// color returns a color that is forced on or off by the formatter config,
// independent of terminal detection
func (f *formatter) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.config.WithColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func pad(s string, width int, right bool) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(" ", width-len(s))
	if right {
		return fill + s
	}
	return s + fill
}
