// Package logging is the process-wide logger. It keeps the bracketed-tag
// printf style ("[STORAGE] ...") used across the codebase and adds structured
// fields for request logs.
package logging

import (
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// ParseLevel maps a LOG_LEVEL value to a logrus level. Unknown values fall
// back to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Configure sets the level of the shared logger.
func Configure(level string) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(ParseLevel(level))
}

// SetJSON switches between logrus's JSON and text formatters.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetOutput redirects log output. Tests use it to silence or capture logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Logger returns the shared logger.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Logf logs an informational message. Messages containing "ERROR" or
// "WARNING" tags are promoted to the matching level.
func Logf(format string, v ...interface{}) {
	l := Logger()
	switch {
	case strings.Contains(format, "ERROR"):
		l.Errorf(format, v...)
	case strings.Contains(format, "WARNING"):
		l.Warnf(format, v...)
	default:
		l.Infof(format, v...)
	}
}

// Debugf logs at debug level.
func Debugf(format string, v ...interface{}) {
	Logger().Debugf(format, v...)
}

// WithFields returns an entry carrying the given structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger().WithFields(fields)
}
