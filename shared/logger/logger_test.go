package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_JSONLevels(t *testing.T) {
	tests := []struct {
		level    string
		wantMsgs []string
	}{
		{level: "debug", wantMsgs: []string{"debug", "info", "warn", "error"}},
		{level: "info", wantMsgs: []string{"info", "warn", "error"}},
		{level: "", wantMsgs: []string{"info", "warn", "error"}},
		{level: "warning", wantMsgs: []string{"warn", "error"}},
		{level: "error", wantMsgs: []string{"error"}},
		{level: "verbose", wantMsgs: []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			output := &bytes.Buffer{}
			logger, err := New(&Config{Level: tt.level, Format: "json", writer: output})
			require.NoError(t, err)

			logger.Debug("debug")
			logger.Info("info")
			logger.Warn("warn")
			logger.Error("error")

			var msgs []string
			for _, e := range decodeLines(t, output) {
				msgs = append(msgs, e["msg"].(string))
			}
			assert.Equal(t, tt.wantMsgs, msgs)
		})
	}
}

func TestNew_ServiceAttrs(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Format:      "json",
		Service:     "job-board-api",
		Version:     "1.0.0",
		Environment: "test",
		writer:      output,
	})
	require.NoError(t, err)

	logger.Info("Job created", slog.String("job_id", "abc"))

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "job-board-api", entries[0]["service"])
	assert.Equal(t, "1.0.0", entries[0]["version"])
	assert.Equal(t, "test", entries[0]["env"])
	assert.Equal(t, "abc", entries[0]["job_id"])
}

func TestNew_ServiceAttrsOmittedWhenEmpty(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Format: "json", Service: "worker", writer: output})
	require.NoError(t, err)

	logger.Info("hello")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "worker", entries[0]["service"])
	assert.NotContains(t, entries[0], "version")
	assert.NotContains(t, entries[0], "env")
}

func TestNew_ConsoleFormat(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Format: "console", TimeFormat: "15:04", writer: output})
	require.NoError(t, err)

	logger.Info("Connected to Redis", slog.String("addr", "localhost:6379"))

	line := output.String()
	assert.Contains(t, line, "Connected to Redis")
	assert.Contains(t, line, "addr=localhost:6379")
	assert.NotContains(t, line, "\x1b[", "buffers are not terminals")
}

func TestNew_EnableSource(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Format: "json", EnableSource: true, writer: output})
	require.NoError(t, err)

	logger.Info("with source")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], slog.SourceKey)
}

func TestLogger_With(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Format: "json", writer: output})
	require.NoError(t, err)

	scoped := logger.With(slog.String("worker_id", "view-worker-1"))
	scoped.Info("Processing message", slog.Int("job_count", 3))
	logger.Info("unscoped")

	entries := decodeLines(t, output)
	require.Len(t, entries, 2)
	assert.Equal(t, "view-worker-1", entries[0]["worker_id"])
	assert.Equal(t, float64(3), entries[0]["job_count"])
	assert.NotContains(t, entries[1], "worker_id")
	assert.NoError(t, scoped.Close())
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	logger, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: path,
	})
	require.NoError(t, err)

	logger.Info("written to file", slog.String("job_id", "abc"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(data, &logEntry))
	assert.Equal(t, "written to file", logEntry["msg"])
	assert.Equal(t, "abc", logEntry["job_id"])
}

func TestNew_FileOutputUnwritable(t *testing.T) {
	logger, err := New(&Config{
		Format: "json",
		Output: filepath.Join(t.TempDir(), "missing", "api.log"),
	})
	require.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("INFO"))
}
