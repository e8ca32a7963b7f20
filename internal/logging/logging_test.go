package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_DebugGoesToFileOnly(t *testing.T) {
	var file, console bytes.Buffer
	log := slog.New(NewHandler(&file, &console))

	log.Debug("exec: magick a.dds a.png")
	log.Info("converted")

	assert.Contains(t, file.String(), "DEBUG exec: magick a.dds a.png")
	assert.Contains(t, file.String(), "INFO  converted")
	assert.NotContains(t, console.String(), "exec: magick")
	assert.Contains(t, console.String(), "INFO  converted")
}

func TestHandler_FileLinesCarryTimestamp(t *testing.T) {
	var file, console bytes.Buffer
	log := slog.New(NewHandler(&file, &console))

	log.Warn("DDS not found")

	fileLine := strings.TrimSuffix(file.String(), "\n")
	// "2006-01-02 15:04:05" prefix, then the level and message.
	require.True(t, len(fileLine) > 19, "file line too short: %q", fileLine)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} WARN  DDS not found$`, fileLine)

	assert.Equal(t, "WARN  DDS not found\n", console.String())
}

func TestHandler_LevelsPadToFiveColumns(t *testing.T) {
	var file bytes.Buffer
	log := slog.New(NewHandler(&file, nil))

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	text := file.String()
	assert.Contains(t, text, "DEBUG d")
	assert.Contains(t, text, "INFO  i")
	assert.Contains(t, text, "WARN  w")
	assert.Contains(t, text, "ERROR e")
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	var console bytes.Buffer
	log := slog.New(NewHandler(nil, &console))

	log.Info("loaded", "entries", 21)
	log.WithGroup("run").With("id", "abc").Info("started")

	text := console.String()
	assert.Contains(t, text, "INFO  loaded entries=21")
	assert.Contains(t, text, "INFO  started run.id=abc")
}

func TestHandler_MultilineMessagesPassThrough(t *testing.T) {
	var console bytes.Buffer
	log := slog.New(NewHandler(nil, &console))

	log.Info("\nWarnings (1):")

	assert.Contains(t, console.String(), "\nWarnings (1):\n")
}

func TestSetup_TruncatesPreviousLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extraction.log")
	require.NoError(t, os.WriteFile(path, []byte("stale content from last run\n"), 0o644))

	var console bytes.Buffer
	log, closeLog, err := Setup(path, &console)
	require.NoError(t, err)

	log.Info("fresh run")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale content")
	assert.Contains(t, string(data), "INFO  fresh run")
}

func TestSetup_FailsOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Setup(filepath.Join(dir, "no", "such", "dir", "x.log"), nil)
	assert.Error(t, err)
}
