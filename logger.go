package vidq

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger defines logging methods used by the library. Implementations should
// be cheap. Default is FmtLogger which writes to stdout/stderr using fmt.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// FmtLogger is a minimal logger that prints messages with level prefixes.
// Debug/Info go to stdout; Warn/Error go to stderr.
type FmtLogger struct{}

// NewFmtLogger creates a new FmtLogger.
func NewFmtLogger() *FmtLogger { return &FmtLogger{} }

func (FmtLogger) Debugf(format string, args ...any) { fmt.Printf("[DEBUG] "+format+"\n", args...) }
func (FmtLogger) Infof(format string, args ...any)  { fmt.Printf("[INFO]  "+format+"\n", args...) }
func (FmtLogger) Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[WARN]  "+format+"\n", args...)
}
func (FmtLogger) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}

// LogrusLogger adapts a logrus logger to the Logger interface. The binaries
// install it so library logs share the process-wide structured output.
type LogrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger wraps the given logrus logger. A nil argument wraps the
// logrus standard logger.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{l: l}
}

func (a *LogrusLogger) Debugf(format string, args ...any) { a.l.Debugf(format, args...) }
func (a *LogrusLogger) Infof(format string, args ...any)  { a.l.Infof(format, args...) }
func (a *LogrusLogger) Warnf(format string, args ...any)  { a.l.Warnf(format, args...) }
func (a *LogrusLogger) Errorf(format string, args ...any) { a.l.Errorf(format, args...) }
