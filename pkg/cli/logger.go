package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Debug mode uses a text formatter
// with full timestamps at debug level; otherwise entries are JSON at level.
func NewLogger(out io.Writer, level string, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, using info")
	}
	return logger
}
