package log

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

func entries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestLoggerFactoryLevels(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggerFactory(Config{Level: "warn", Format: "json"}, &buf)
	logger := factory.NewLogger("sdp")

	logger.Trace("trace")
	logger.Debugf("debug %d", 1)
	logger.Info("info")
	logger.Warnf("offer %s", "rejected")
	logger.Error("failed")

	got := entries(t, &buf)
	require.Len(t, got, 2)
	assert.Equal(t, "warning", got[0]["level"])
	assert.Equal(t, "offer rejected", got[0]["msg"])
	assert.Equal(t, "sdp", got[0]["scope"])
	assert.Equal(t, "error", got[1]["level"])
}

func TestLoggerFactoryDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggerFactory(Config{Level: "loud", Format: "json"}, &buf)
	logger := factory.NewLogger("negotiator")

	logger.Debug("hidden")
	logger.Infof("version %d", 2)

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "version 2", got[0]["msg"])
	assert.Equal(t, "negotiator", got[0]["scope"])
}

func TestLoggerFactoryText(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerFactory(Config{Level: "trace"}, &buf).NewLogger("cli").Tracef("reading %s", "-")

	assert.Contains(t, buf.String(), "level=trace")
	assert.Contains(t, buf.String(), `msg="reading -"`)
	assert.Contains(t, buf.String(), "scope=cli")
}

func TestLoggerFactoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdpredux.log")

	var buf bytes.Buffer
	factory := NewLoggerFactory(Config{
		Level:  "info",
		Format: "json",
		File:   FileConfig{Enabled: true, Path: path, MaxSizeMB: 1},
	}, &buf)
	factory.NewLogger("cli").Info("written twice")
	require.NoError(t, factory.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Equal(t, buf.String(), string(data))

	assert.NoError(t, NewLoggerFactory(Config{}, &buf).Close())
}
