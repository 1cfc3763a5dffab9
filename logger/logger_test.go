package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ghosttab/assert"
)

func tempLogFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(t.TempDir(), "test.log"),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	assert.NoError(t, err, "opening temp log file")
	t.Cleanup(func() { f.Close() })
	return f
}

func readLog(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	assert.NoError(t, err, "reading log file")
	return string(data)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"), "trace")
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"), "debug uppercase")
	assert.Equal(t, LevelInfo, ParseLevel("info"), "info")
	assert.Equal(t, LevelWarn, ParseLevel("warning"), "warning alias")
	assert.Equal(t, LevelError, ParseLevel("error"), "error")
	assert.Equal(t, LevelInfo, ParseLevel("bogus"), "unknown defaults to info")
	assert.Equal(t, LevelInfo, ParseLevel(""), "empty defaults to info")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "TRACE", LevelTrace.String(), "trace")
	assert.Equal(t, "ERROR", LevelError.String(), "error")
	assert.Equal(t, "UNKNOWN", Level(99).String(), "out of range")
}

func TestLevelFiltering(t *testing.T) {
	f := tempLogFile(t)
	fl := NewFileLogger(f, LevelWarn)

	fl.Debug("not logged")
	fl.Info("not logged either")
	fl.Warn("warning message")
	fl.Error("error message")

	content := readLog(t, f)
	assert.False(t, strings.Contains(content, "not logged"), "below-level lines filtered")
	assert.Contains(t, content, "[WARN] warning message", "warn logged")
	assert.Contains(t, content, "[ERROR] error message", "error logged")
}

func TestSetLevel(t *testing.T) {
	f := tempLogFile(t)
	fl := NewFileLogger(f, LevelError)

	fl.Info("before")
	fl.SetLevel(LevelInfo)
	fl.Info("after")

	content := readLog(t, f)
	assert.False(t, strings.Contains(content, "before"), "filtered before SetLevel")
	assert.Contains(t, content, "after", "logged after SetLevel")
}

func TestWriteCountsExistingLines(t *testing.T) {
	f := tempLogFile(t)
	_, err := f.WriteString("old line one\nold line two\n")
	assert.NoError(t, err, "seeding log file")

	fl := NewFileLogger(f, LevelInfo)
	assert.Equal(t, 2, fl.lineCount, "existing lines counted")

	fl.Info("new line")
	assert.Equal(t, 3, fl.lineCount, "count advances on write")
}

func TestTrimKeepsMostRecentLines(t *testing.T) {
	f := tempLogFile(t)
	fl := NewFileLogger(f, LevelInfo)

	for i := 0; i < MaxLogLines+10; i++ {
		fl.Info("line %d", i)
	}

	assert.LessOrEqual(t, fl.lineCount, MaxLogLines, "line count capped")

	content := readLog(t, f)
	assert.False(t, strings.Contains(content, "line 0\n"), "oldest lines trimmed")
	assert.Contains(t, content, "line 5009", "most recent line kept")
}
