package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger writes leveled messages with key/value pairs under a component
// prefix, e.g. "[audit-worker] [INFO] Wrote batch count=12"
type Logger struct {
	prefix string
	logger *log.Logger

	mu    sync.Mutex
	level int
}

// NewLogger creates a logger for a component. The level defaults to the
// package level at construction time.
func NewLogger(prefix string) *Logger {
	return NewLoggerTo(os.Stdout, prefix)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, prefix string) *Logger {
	logLevelMutex.Lock()
	level := LogLevel
	logLevelMutex.Unlock()

	return &Logger{
		prefix: prefix,
		logger: log.New(w, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
		level:  level,
	}
}

// SetLevel overrides the level of this logger only
func (l *Logger) SetLevel(level int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.write(Debug, "DEBUG", msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.write(Info, "INFO", msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.write(Warning, "WARN", msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.write(Error, "ERROR", msg, keyvals) }

func (l *Logger) write(level int, tag, msg string, keyvals []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level > level {
		return
	}
	l.logger.Println(formatMessage(tag, msg, keyvals))
}

// formatMessage renders "[TAG] msg k1=v1 k2=v2". A trailing key without a
// value is dropped.
func formatMessage(tag, msg string, keyvals []interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", tag, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	return b.String()
}
