package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

type renderer interface {
	render(Status, string, state, Statistics) string
}

const (
	minBarWidth = 10
	maxBarWidth = 40
)

type barRenderer struct {
	width     int
	noColor   bool
	showStats bool
}

func (r *barRenderer) render(status Status, message string, st state, stats Statistics) string {
	var output strings.Builder

	output.WriteString(colorize(message, st, r.noColor))
	output.WriteString(" ")

	counts := fmt.Sprintf(" %3.0f%% %d/%d files", stats.ProgressPercentage, status.Scanned, status.Total)
	extra := ""
	if r.showStats {
		extra = statsLine(stats)
	}

	barWidth := r.width - len(message) - len(counts) - len(extra) - 3
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}

	ratio := stats.ProgressPercentage / 100
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(barWidth) * ratio)

	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	output.WriteString("[")
	output.WriteString(paint(color.FgGreen, bar, r.noColor))
	output.WriteString("]")
	output.WriteString(counts)
	output.WriteString(extra)

	return output.String()
}

type simpleRenderer struct {
	noColor   bool
	showStats bool
}

func (r *simpleRenderer) render(status Status, message string, st state, stats Statistics) string {
	var output strings.Builder

	output.WriteString(colorize(message, st, r.noColor))
	output.WriteString(fmt.Sprintf(" %d/%d files (%.0f%%)", status.Scanned, status.Total, stats.ProgressPercentage))

	if r.showStats {
		output.WriteString(statsLine(stats))
	}

	return output.String()
}

func statsLine(stats Statistics) string {
	return fmt.Sprintf(" | %s | %d matches | %.1f files/s | ETA %s",
		formatSize(stats.BytesProcessed),
		stats.Matches,
		stats.ProcessingSpeed,
		formatDuration(stats.RemainingTime))
}

func colorize(message string, st state, noColor bool) string {
	switch st {
	case stateFailed:
		return paint(color.FgRed, message, noColor)
	case stateDone:
		return paint(color.FgGreen, message, noColor)
	}
	return message
}

func paint(attr color.Attribute, s string, noColor bool) string {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm%ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
