package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures console logging at the requested level. The debug
// flag overrides the configured level.
func SetupLogger(level string, debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	if debug {
		parsed = log.DebugLevel
	}
	logger.SetLevel(parsed)

	return logger
}
