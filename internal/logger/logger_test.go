package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesTerminalAndJSONFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	l, err := NewLogger(Options{Dir: dir, Service: "test-svc", Terminal: &out})
	require.NoError(t, err)

	l.Info("purchase", "created purchase 7")
	l.Close()

	assert.Contains(t, out.String(), "PURCHASE")
	assert.Contains(t, out.String(), "created purchase 7")

	files, err := filepath.Glob(filepath.Join(dir, "test-svc-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry.Category == "PURCHASE" {
			found = true
			assert.Equal(t, "INFO", entry.Level)
			assert.Equal(t, "test-svc", entry.Service)
			assert.Equal(t, "logger_test.go", entry.File)
			assert.Equal(t, "created purchase 7", entry.Message)
		}
	}
	assert.True(t, found)
}

func TestLoggerMinLevelFiltersDebug(t *testing.T) {
	var out bytes.Buffer
	l, err := NewLogger(Options{Terminal: &out, MinLevel: INFO})
	require.NoError(t, err)

	l.Debug("sweeper", "noisy")
	l.Warn("sweeper", "kept")

	assert.NotContains(t, out.String(), "noisy")
	assert.Contains(t, out.String(), "kept")
}

func TestFatalUsesExitHook(t *testing.T) {
	var code int
	l := &Logger{terminal: &bytes.Buffer{}, exit: func(c int) { code = c }}

	l.Fatal("config", "JWT_SECRET not set")

	assert.Equal(t, 1, code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARN "))
	assert.Equal(t, INFO, ParseLevel("chatty"))
	assert.Equal(t, "ERROR", ERROR.String())
}
