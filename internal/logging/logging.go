// Package logging configures the structured, leveled logger every
// component uses in place of the teacher's raw fmt.Printf/textcolor
// scheme (spec §2 [AMBIENT]).
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger writing to stderr at the given level name
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
