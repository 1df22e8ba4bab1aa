package pool

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the minimal diagnostic sink used by the pool. It receives
// rejected submissions and contained task faults. A nil Logger on the
// pool configuration means diagnostics are silently discarded.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// defaultLogger implements Logger using standard log
type defaultLogger struct {
	logger *log.Logger
}

// NewDefaultLogger creates a Logger writing to stderr
func NewDefaultLogger() Logger {
	return &defaultLogger{
		logger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
	}
}

// NewWriterLogger creates a Logger writing plain lines to w
func NewWriterLogger(w io.Writer) Logger {
	return &defaultLogger{
		logger: log.New(w, "", 0),
	}
}

func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.logger.Output(3, fmt.Sprintf(format, args...))
}

// nopLogger discards all diagnostics
type nopLogger struct{}

func (nopLogger) Errorf(format string, args ...interface{}) {}
