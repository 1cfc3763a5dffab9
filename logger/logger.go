// Package logger provides the daemon's leveled, file-backed logger. The
// log file is capped at a fixed number of lines and trimmed in place so a
// long-lived daemon never grows it without bound.
package logger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxLogLines is the maximum number of lines kept in the log file.
const MaxLogLines = 5000

// Level is a logging level.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a level
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// FileLogger writes timestamped, leveled lines to a file with line-count
// capping.
type FileLogger struct {
	mu        sync.Mutex
	file      *os.File
	lineCount int
	level     Level
}

var globalLogger *FileLogger

// fallback is used before the global logger is initialized
var fallback = &FileLogger{file: os.Stderr, level: LevelInfo}

// NewFileLogger creates a FileLogger over an open file and installs it as
// the global logger. The existing line count is taken from the file.
func NewFileLogger(file *os.File, level Level) *FileLogger {
	fl := &FileLogger{file: file, level: level}
	fl.countExistingLines()
	globalLogger = fl
	return fl
}

// SetLevel sets the logging level.
func (fl *FileLogger) SetLevel(level Level) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.level = level
}

func (fl *FileLogger) shouldLog(level Level) bool {
	return level >= fl.level
}

func (fl *FileLogger) log(level Level, format string, v ...any) {
	if !fl.shouldLog(level) {
		return
	}
	msg := fmt.Sprintf("%s [%s] %s\n",
		time.Now().Format("2006/01/02 15:04:05"), level.String(), fmt.Sprintf(format, v...))
	fl.Write([]byte(msg))
}

// Debug logs a debug message
func (fl *FileLogger) Debug(format string, v ...any) { fl.log(LevelDebug, format, v...) }

// Info logs an info message
func (fl *FileLogger) Info(format string, v ...any) { fl.log(LevelInfo, format, v...) }

// Warn logs a warning message
func (fl *FileLogger) Warn(format string, v ...any) { fl.log(LevelWarn, format, v...) }

// Error logs an error message
func (fl *FileLogger) Error(format string, v ...any) { fl.log(LevelError, format, v...) }

// Fatal logs an error message and exits with code 1
func (fl *FileLogger) Fatal(format string, v ...any) {
	fl.log(LevelError, format, v...)
	os.Exit(1)
}

// Close closes the underlying file.
func (fl *FileLogger) Close() error {
	return fl.file.Close()
}

// Write implements io.Writer so the standard log package can be routed
// through the same file with the same capping.
func (fl *FileLogger) Write(p []byte) (int, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	n, err := fl.file.Write(p)
	if err != nil {
		return n, err
	}

	fl.lineCount += strings.Count(string(p), "\n")
	if fl.lineCount > MaxLogLines {
		fl.trim()
	}
	return n, err
}

func (fl *FileLogger) countExistingLines() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	fl.file.Seek(0, 0)
	scanner := bufio.NewScanner(fl.file)
	count := 0
	for scanner.Scan() {
		count++
	}
	fl.lineCount = count
	fl.file.Seek(0, 2)
}

// trim rewrites the file keeping only the last MaxLogLines lines.
func (fl *FileLogger) trim() {
	fl.file.Seek(0, 0)
	scanner := bufio.NewScanner(fl.file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > MaxLogLines {
		lines = lines[len(lines)-MaxLogLines:]
	}

	fl.file.Truncate(0)
	fl.file.Seek(0, 0)
	for _, line := range lines {
		fl.file.WriteString(line + "\n")
	}
	fl.lineCount = len(lines)
}

func active() *FileLogger {
	if globalLogger != nil {
		return globalLogger
	}
	return fallback
}

// Package-level logging functions using the global logger.

func Debug(format string, v ...any) { active().Debug(format, v...) }
func Info(format string, v ...any)  { active().Info(format, v...) }
func Warn(format string, v ...any)  { active().Warn(format, v...) }
func Error(format string, v ...any) { active().Error(format, v...) }
func Fatal(format string, v ...any) { active().Fatal(format, v...) }

// noopFunc is a reusable no-op to avoid allocations when tracing is off
var noopFunc = func() {}

// Trace returns a function that logs the operation duration when called.
// Usage: defer logger.Trace("operation")()
func Trace(name string) func() {
	l := active()
	if !l.shouldLog(LevelTrace) {
		return noopFunc
	}
	start := time.Now()
	return func() {
		l.log(LevelTrace, "%s: %v", name, time.Since(start))
	}
}
