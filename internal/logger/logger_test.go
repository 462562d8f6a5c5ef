package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseToggle(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebugSuppressedWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Debug("hidden %s", "message")
	Info("hidden %s", "message")
	assert.Empty(t, buf.String())
}

func TestWarnWritesWhenQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(false)

	Warn("dropped %d", 2)
	assert.Contains(t, buf.String(), "[WARN] dropped 2")
}

func TestLevelsWriteWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetVerbose(true)
	defer SetVerbose(false)

	Debug("d %d", 1)
	Info("i %d", 2)
	Warn("w %d", 3)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] d 1")
	assert.Contains(t, out, "[INFO] i 2")
	assert.Contains(t, out, "[WARN] w 3")
}
