package installer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/msiflow/progress"
)

var _ progress.Logger = (*Logger)(nil)

func TestMemoryLogger(t *testing.T) {
	log := NewMemoryLogger()
	log.Info("hello %s", "world")
	log.Debug("hidden")
	log.SetDebug(true)
	log.Debug("shown %d", 1)
	log.Warn("careful")

	lines := strings.Split(log.Content(), "\n")
	require.Len(t, lines, 3)
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\] INFO: hello world$`, lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "DEBUG: shown 1"))
	assert.True(t, strings.HasSuffix(lines[2], "WARN: careful"))
	assert.Empty(t, log.Path())
}

func TestLoggerMirror(t *testing.T) {
	var buf bytes.Buffer
	log := NewMemoryLogger()
	log.SetMirror(&buf)
	log.Error("bad %d", 7)
	log.SetMirror(nil)
	log.Info("quiet")

	assert.Contains(t, buf.String(), "ERROR: bad 7\n")
	assert.NotContains(t, buf.String(), "quiet")
}

func TestNilLogger(t *testing.T) {
	var log *Logger
	assert.NotPanics(t, func() {
		log.Info("x")
		log.Debug("x")
		log.SetDebug(true)
		log.SetMirror(os.Stderr)
		log.Close()
	})
	assert.Empty(t, log.Content())
	assert.Empty(t, log.Path())
}

func TestLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.log")
	log, err := NewLoggerToFile(path)
	require.NoError(t, err)

	log.Step("Starting: %s", "copy")
	log.Close()
	log.Info("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "STEP: Starting: copy")
	assert.Contains(t, string(data), "=== Log ended:")
	assert.NotContains(t, string(data), "after close")
	assert.Contains(t, log.Content(), "after close")
}
