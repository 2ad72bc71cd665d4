// Package logger provides leveled logging with [LEVEL] prefixes.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string to a Level. Unknown values map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

var (
	mu     sync.RWMutex
	level  = InfoLevel
	output = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
)

// Init sets the minimum level written to stderr.
func Init(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(lvl)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = log.New(w, "", log.LstdFlags|log.Lshortfile)
}

func logf(lvl Level, prefix, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if lvl < level {
		return
	}
	_ = output.Output(3, fmt.Sprintf(prefix+format, args...))
}

func Debug(format string, args ...interface{}) { logf(DebugLevel, "[DEBUG] ", format, args...) }

func Info(format string, args ...interface{}) { logf(InfoLevel, "[INFO] ", format, args...) }

func Warn(format string, args ...interface{}) { logf(WarnLevel, "[WARN] ", format, args...) }

func Error(format string, args ...interface{}) { logf(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs regardless of level and exits the process.
func Fatal(format string, args ...interface{}) {
	mu.RLock()
	_ = output.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	mu.RUnlock()
	os.Exit(1)
}

// CronLogger adapts this package to the cron.Logger interface.
type CronLogger struct{}

func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	Debug("cron: %s %v", msg, keysAndValues)
}

func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	Error("cron: %s: %v %v", msg, err, keysAndValues)
}
