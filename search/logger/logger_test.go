package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buffer bytes.Buffer
	SetupWriter(&buffer, "warn", "json")

	WithComponent("run").Info("hidden")
	WithQuery(WithComponent("run"), "42").Warn("unknown document", "externalId", "d9")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))

	assert.Equal(t, "unknown document", line["msg"])
	assert.Equal(t, "run", line["component"])
	assert.Equal(t, "42", line["qid"])
	assert.Equal(t, "d9", line["externalId"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
