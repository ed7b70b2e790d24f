package logging

import "strings"

// Level is a log severity.
type Level int

const (
	// DebugLevel carries per-record diagnostics (termination probing, skipped rows)
	DebugLevel Level = iota
	// InfoLevel is the default
	InfoLevel
	// WarnLevel marks degraded results that were still served
	WarnLevel
	// ErrorLevel marks failed requests and commands
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}
