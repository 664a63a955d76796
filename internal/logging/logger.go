// Package logging builds the single *logrus.Logger every Animica component
// takes by constructor injection, an explicit dependency rather than a
// process-wide global.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a JSON-formatted logger at the given level. An unrecognized
// level falls back to info rather than erroring, matching the caller's
// expectation that ValidateConfig already rejected bad level strings.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// WithComponent returns an entry pre-tagged with a "component" field, the
// field-based idiom every Animica package logs through instead of building
// ad-hoc message strings.
func WithComponent(log *logrus.Logger, component string) *logrus.Entry {
	return log.WithField("component", component)
}
