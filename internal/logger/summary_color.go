package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/seeker/internal/models"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning/threshold metrics
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Label is colored cyan, value is colored based on the metric type and value.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// slowDirectoryThreshold marks a directory listing slow enough to highlight.
const slowDirectoryThreshold = time.Second

// formatColorizedTimings formats per-directory timing statistics with color coding.
// Returns empty string if no directories were timed.
// Format: "timed: N, min: X, avg: X, max: X"
// The max value is colored yellow when it exceeds slowDirectoryThreshold.
func formatColorizedTimings(summary models.MetricSummary, scheme *colorScheme) string {
	if summary.Count == 0 {
		return ""
	}

	var parts []string

	parts = append(parts, formatColorizedMetric("timed", humanize.Comma(int64(summary.Count)), scheme))
	parts = append(parts, formatColorizedMetric("min", summary.Min.Round(time.Microsecond), scheme))
	parts = append(parts, formatColorizedMetric("avg", summary.Average.Round(time.Microsecond), scheme))

	maxStr := summary.Max.Round(time.Microsecond).String()
	if summary.Max > slowDirectoryThreshold {
		labelColored := scheme.warn.Sprint("max")
		valueColored := scheme.warn.Sprint(maxStr)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	} else {
		parts = append(parts, formatColorizedMetric("max", maxStr, scheme))
	}

	return strings.Join(parts, ", ")
}
