package aescrypt

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logging facade injected into Encryptor/Decryptor. The
// engine never imports a concrete logging package directly outside of the
// default adapter below; callers may supply their own implementation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// nopLogger discards everything. It is the zero value of Logger used when
// a caller leaves the Logger option unset.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NopLogger is a Logger that discards all output.
var NopLogger Logger = nopLogger{}

// logrusLogger adapts a *logrus.Logger to the Logger interface.
type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger wraps an existing *logrus.Logger. Passing nil uses
// logrus.StandardLogger().
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{l: l}
}

func (a *logrusLogger) Debugf(format string, args ...any) { a.l.Debugf(format, args...) }
func (a *logrusLogger) Infof(format string, args ...any)  { a.l.Infof(format, args...) }
func (a *logrusLogger) Warnf(format string, args ...any)  { a.l.Warnf(format, args...) }
func (a *logrusLogger) Errorf(format string, args ...any) { a.l.Errorf(format, args...) }
