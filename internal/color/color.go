// Package color provides small helpers for coloring terminal output using
// ANSI escape sequences, mapping risk levels to conventional severity colors.
//
//nolint:revive // package name conflicts with standard library
package color

import "github.com/capdesc/go-capdesc/internal/captypes"

// ANSI color codes
const (
	resetCode  = "\033[0m"
	grayCode   = "\033[90m" // Bright black/gray
	greenCode  = "\033[32m"
	yellowCode = "\033[33m"
	redCode    = "\033[31m"
	cyanCode   = "\033[36m"
	boldRed    = "\033[1;31m"
)

// Color represents a color function that wraps text with ANSI escape
// sequences.
type Color func(text string) string

// NewColor creates a color function with the specified ANSI code.
func NewColor(ansiCode string) Color {
	return func(text string) string {
		return ansiCode + text + resetCode
	}
}

// Plain returns text unchanged. It is the Color used when output is not a
// terminal.
func Plain(text string) string { return text }

// Predefined color functions
var (
	// Gray colors text in gray (bright black)
	Gray = NewColor(grayCode)

	// Green colors text in green
	Green = NewColor(greenCode)

	// Yellow colors text in yellow
	Yellow = NewColor(yellowCode)

	// Red colors text in red
	Red = NewColor(redCode)

	// Cyan colors text in cyan
	Cyan = NewColor(cyanCode)

	// BoldRed colors text in bold red
	BoldRed = NewColor(boldRed)
)

// ForRiskLevel returns the color conventionally associated with a risk
// level: green for safe through bold red for critical. Unknown levels are
// rendered gray.
func ForRiskLevel(level captypes.RiskLevel) Color {
	switch level {
	case captypes.RiskLevelSafe:
		return Green
	case captypes.RiskLevelLow:
		return Cyan
	case captypes.RiskLevelMedium:
		return Yellow
	case captypes.RiskLevelHigh:
		return Red
	case captypes.RiskLevelCritical:
		return BoldRed
	default:
		return Gray
	}
}

// RiskLevel formats the level's name, colored when enabled is true.
func RiskLevel(level captypes.RiskLevel, enabled bool) string {
	if !enabled {
		return level.String()
	}
	return ForRiskLevel(level)(level.String())
}
