package logger

import (
	"github.com/sirupsen/logrus"
)

// StructuredLogger emits structured logs via logrus. Used by the long-running
// agents (pipeline-agent, review-agent) where logs are scraped rather than
// read off a terminal.
type StructuredLogger struct {
	entry *logrus.Entry
}

// NewStructuredLogger creates a logrus-backed logger tagged with the given
// component name.
func NewStructuredLogger(component string) *StructuredLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	return &StructuredLogger{
		entry: l.WithField("component", component),
	}
}

func (s *StructuredLogger) Info(msg string, args ...interface{}) {
	s.entry.Infof(msg, args...)
}

func (s *StructuredLogger) Error(msg string, args ...interface{}) {
	s.entry.Errorf(msg, args...)
}

func (s *StructuredLogger) Debug(msg string, args ...interface{}) {
	s.entry.Debugf(msg, args...)
}
