package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSON: true, Output: &buf})

	l.WithRequestID("req-1").LogOutbound("chat.send", "POST", "/chat/message/3", 200, 15*time.Millisecond)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "backend call completed", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "chat.send", record["operation"])
	assert.EqualValues(t, 200, record["status"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", JSON: false, Output: &buf})

	l.Info("hidden")
	l.LogError(errors.New("boom"), "visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "boom")
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings("debug", "text")
	assert.False(t, cfg.JSON)
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, FromSettings("info", "json").JSON)
}

func TestWithEmptyIDsReturnsSameLogger(t *testing.T) {
	l := Discard()
	assert.Same(t, l, l.WithRequestID(""))
	assert.Same(t, l, l.WithUserID(""))
}
