package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helmetkiosk/internal/config"
)

func TestNewWithWriter_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.WithFields(Fields{"endpoint": "/detect"}).Warning("submission failed: %s", "boom")

	out := buf.String()
	assert.Contains(t, out, "submission failed: boom")
	assert.Contains(t, out, "endpoint")
	assert.Contains(t, out, "/detect")
}

func TestNewLogger_WritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(&config.Config{LogDirectory: dir, LogLevel: "debug"})
	require.NoError(t, err)

	log.Info("hello info")
	log.Warning("hello warning")
	log.Error("hello error")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "hello info")
	assert.NotContains(t, string(info), "hello error")

	warning, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	require.NoError(t, err)
	assert.Contains(t, string(warning), "hello warning")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "hello error")
}

func TestCleanLogs(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(&config.Config{LogDirectory: dir, LogLevel: "info"})
	require.NoError(t, err)

	log.Error("to be cleared 1")
	log.Error("to be cleared 2")
	log.Error("to be cleared 3")
	require.NoError(t, log.CleanLogs("error.log"))

	log.Error("after clear")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	content := string(errs)
	assert.NotContains(t, content, "\x00")
	assert.NotContains(t, content, "to be cleared")
	assert.Equal(t, 1, strings.Count(content, "\n"))
	assert.Contains(t, content, "after clear")
}

func TestCleanLogs_NeverWrittenFile(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(&config.Config{LogDirectory: dir, LogLevel: "info"})
	require.NoError(t, err)

	assert.NoError(t, log.CleanLogs("warning.log"))
	assert.Error(t, log.CleanLogs("other.log"))
}
