package utils

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

func TestLogger_FansOut(t *testing.T) {
	var text, js bytes.Buffer
	logger := NewLoggerWithWriters(&text, &js, "info")

	reqID := "req-42"
	logger.Info(&reqID, "Summarized %d sentences", 12)
	logger.Debug(nil, "hidden")

	assert.Contains(t, text.String(), "Summarized 12 sentences")
	assert.Contains(t, text.String(), "reqid=req-42")
	assert.NotContains(t, text.String(), "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "Summarized 12 sentences", record["msg"])
	assert.Equal(t, "req-42", record["reqid"])
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{level: "debug", visible: []string{"d-msg", "i-msg", "w-msg", "e-msg"}},
		{level: "warning", visible: []string{"w-msg", "e-msg"}, hidden: []string{"d-msg", "i-msg"}},
		{level: "error", visible: []string{"e-msg"}, hidden: []string{"w-msg"}},
		{level: "bogus", visible: []string{"i-msg"}, hidden: []string{"d-msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var text bytes.Buffer
			logger := NewLoggerWithWriters(&text, &bytes.Buffer{}, tt.level)

			logger.Debug(nil, "d-msg")
			logger.Info(nil, "i-msg")
			logger.Warn(nil, "w-msg")
			logger.Error(nil, "e-msg")

			for _, msg := range tt.visible {
				assert.Contains(t, text.String(), msg)
			}
			for _, msg := range tt.hidden {
				assert.NotContains(t, text.String(), msg)
			}
		})
	}
}

func TestNewLogger_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precis.log")
	logger := NewLogger("info", false, path)

	logger.Warn(nil, "Using fallback ranking")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Using fallback ranking", record["msg"])
}
