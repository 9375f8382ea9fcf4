package notify

import (
	"bytes"
	"strings"
	"testing"

	"ai-agent-character-demo/client/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Success("saved")
	r.Error("failed")
	r.Info("fyi")

	assert.Len(t, r.All(), 3)
	assert.Equal(t, []string{"failed"}, r.Messages(LevelError))

	r.Reset()
	assert.Empty(t, r.All())
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, b}

	m.Error("boom")
	m.Info("hello")

	assert.Equal(t, a.All(), b.All())
	assert.Equal(t, []Notification{{LevelError, "boom"}, {LevelInfo, "hello"}}, a.All())
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.New(logger.Config{Level: "info", JSON: true, Output: &buf}))

	n.Error("Not found")

	assert.Contains(t, buf.String(), `"message":"Not found"`)
	assert.Contains(t, buf.String(), `"toast_level":"error"`)
	assert.Equal(t, 1, strings.Count(buf.String(), `"level":`))
}
