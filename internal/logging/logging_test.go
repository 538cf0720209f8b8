package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Config{ServiceName: "showbiz", Environment: "test", Level: "debug"})

	logger.Debug("hello", "account_id", "42")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "showbiz", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "42", record["account_id"])
	assert.Equal(t, "hello", record["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}
