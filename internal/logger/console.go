// Package logger provides logging implementations for Seeker runs.
//
// The logger package offers structured logging of search progress at the
// run and summary levels. Implementations are thread-safe and support various
// output destinations (console, results file, etc.).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/seeker/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs search progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps for tracking run flow.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum log level for messages to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
// Color output is automatically enabled when writing to os.Stdout or os.Stderr with TTY support.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		mutex:       sync.Mutex{},
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}

	if w == os.Stdout || w == os.Stderr {
		// The color library's detection also honors NO_COLOR.
		return !color.NoColor
	}

	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if validLevels[normalized] {
		return normalized
	}

	return "info" // Default level
}

// shouldLog checks if a message at the given level should be logged.
// Returns true if messageLevel >= configured logLevel.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo // Default to info if unknown
	}
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel is a helper that logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string

	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogSearchStart logs the start of a search run at INFO level.
// Format: "[HH:MM:SS] Starting <mode> search under <root>: <n> workers"
func (cl *ConsoleLogger) LogSearchStart(root, mode string, workers int) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	workerLabel := "workers"
	if workers == 1 {
		workerLabel = "worker"
	}

	var message string
	if cl.colorOutput {
		// Bold for the run header
		rootName := color.New(color.Bold).Sprint(root)
		message = fmt.Sprintf("[%s] Starting %s search under %s: %d %s\n", ts, mode, rootName, workers, workerLabel)
	} else {
		message = fmt.Sprintf("[%s] Starting %s search under %s: %d %s\n", ts, mode, root, workers, workerLabel)
	}

	cl.writer.Write([]byte(message))
}

// LogSearchComplete logs the completion of a search run at INFO level.
// Format: "[HH:MM:SS] <root> complete (<duration>)"
func (cl *ConsoleLogger) LogSearchComplete(root string, duration time.Duration) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(duration)

	var message string
	if cl.colorOutput {
		rootName := color.New(color.Bold).Sprint(root)
		completeText := color.New(color.FgGreen).Sprint("complete")
		message = fmt.Sprintf("[%s] %s %s (%s)\n", ts, rootName, completeText, durationStr)
	} else {
		message = fmt.Sprintf("[%s] %s complete (%s)\n", ts, root, durationStr)
	}

	cl.writer.Write([]byte(message))
}

// LogProgress logs a point-in-time view of a running search at INFO level.
// Format: "[HH:MM:SS] Progress: workers 4 | queued 27 | matches 153"
func (cl *ConsoleLogger) LogProgress(snap models.Snapshot) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()

	line := NewStatusLine(cl.colorOutput)
	line.Update(snap)

	output := fmt.Sprintf("[%s] Progress: %s\n", ts, line.Render())
	cl.writer.Write([]byte(output))
}

// LogSummary logs the run summary with match and traversal statistics at INFO level.
// Format: "[HH:MM:SS] === Search Summary ===\n[HH:MM:SS] Matches: <n>\n..."
func (cl *ConsoleLogger) LogSummary(result models.RunResult) {
	if cl.writer == nil {
		return
	}

	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(result.Elapsed)
	matches := int64(len(result.Records))
	timings := models.SummarizeMetrics(result.Metrics)

	var output string

	if cl.colorOutput {
		scheme := newColorScheme()

		header := color.New(color.Bold).Sprint("=== Search Summary ===")
		output = fmt.Sprintf("[%s] %s\n", ts, header)

		// Green for matches found
		matchesText := scheme.success.Sprintf("Matches: %s", humanize.Comma(matches))
		output += fmt.Sprintf("[%s] %s\n", ts, matchesText)

		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Directories", humanize.Comma(result.Directories), scheme))
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Files examined", humanize.Comma(result.Files), scheme))
		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Data scanned", humanize.IBytes(uint64(result.Bytes)), scheme))

		// Red for faults if any, otherwise show in default color
		if result.Faults > 0 {
			faultsText := scheme.fail.Sprintf("Faults: %d", result.Faults)
			output += fmt.Sprintf("[%s] %s\n", ts, faultsText)
		} else {
			output += fmt.Sprintf("[%s] Faults: %d\n", ts, result.Faults)
		}

		output += fmt.Sprintf("[%s] %s\n", ts, formatColorizedMetric("Duration", durationStr, scheme))

		if timingsLine := formatColorizedTimings(timings, scheme); timingsLine != "" {
			output += fmt.Sprintf("[%s] Directory timings: %s\n", ts, timingsLine)
		}

		if result.Canceled {
			canceledText := color.New(color.FgYellow).Sprint("Search canceled: results are partial")
			output += fmt.Sprintf("[%s] %s\n", ts, canceledText)
		}
	} else {
		output = fmt.Sprintf("[%s] === Search Summary ===\n", ts)
		output += fmt.Sprintf("[%s] Matches: %s\n", ts, humanize.Comma(matches))
		output += fmt.Sprintf("[%s] Directories: %s\n", ts, humanize.Comma(result.Directories))
		output += fmt.Sprintf("[%s] Files examined: %s\n", ts, humanize.Comma(result.Files))
		output += fmt.Sprintf("[%s] Data scanned: %s\n", ts, humanize.IBytes(uint64(result.Bytes)))
		output += fmt.Sprintf("[%s] Faults: %d\n", ts, result.Faults)
		output += fmt.Sprintf("[%s] Duration: %s\n", ts, durationStr)

		if timings.Count > 0 {
			output += fmt.Sprintf("[%s] Directory timings: timed %s dirs, min %s, avg %s, max %s\n",
				ts,
				humanize.Comma(int64(timings.Count)),
				timings.Min.Round(time.Microsecond),
				timings.Average.Round(time.Microsecond),
				timings.Max.Round(time.Microsecond),
			)
		}

		if result.Canceled {
			output += fmt.Sprintf("[%s] Search canceled: results are partial\n", ts)
		}
	}

	cl.writer.Write([]byte(output))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogTrace is a no-op implementation.
func (n *NoOpLogger) LogTrace(message string) {
}

// LogDebug is a no-op implementation.
func (n *NoOpLogger) LogDebug(message string) {
}

// LogInfo is a no-op implementation.
func (n *NoOpLogger) LogInfo(message string) {
}

// LogWarn is a no-op implementation.
func (n *NoOpLogger) LogWarn(message string) {
}

// LogError is a no-op implementation.
func (n *NoOpLogger) LogError(message string) {
}

// LogSearchStart is a no-op implementation.
func (n *NoOpLogger) LogSearchStart(root, mode string, workers int) {
}

// LogSearchComplete is a no-op implementation.
func (n *NoOpLogger) LogSearchComplete(root string, duration time.Duration) {
}

// LogProgress is a no-op implementation.
func (n *NoOpLogger) LogProgress(snap models.Snapshot) {
}

// LogSummary is a no-op implementation.
func (n *NoOpLogger) LogSummary(result models.RunResult) {
}
