package util

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// SetLogLevel configures the logger level from the LOG_LEVEL env value.
// Unknown or empty values fall back to Info.
func SetLogLevel(logger *logrus.Logger, level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}
