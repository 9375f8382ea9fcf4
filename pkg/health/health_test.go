package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-agent-character-demo/client/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCriticalComponentDown(t *testing.T) {
	c := NewChecker(logger.Discard(), time.Minute)
	var pingErr error
	c.RegisterStorageCheck(pingerFunc(func(context.Context) error { return pingErr }))

	var seen []bool
	c.OnChange(func(healthy bool) { seen = append(seen, healthy) })

	c.RunChecks(context.Background())
	assert.True(t, c.IsSystemHealthy())

	pingErr = errors.New("connection refused")
	c.RunChecks(context.Background())
	assert.False(t, c.IsSystemHealthy())

	status := c.GetStatus()
	require.Contains(t, status, "storage")
	assert.Equal(t, StatusDown, status["storage"].Status)
	assert.Equal(t, "connection refused", status["storage"].Error)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestAPICheck(t *testing.T) {
	code := http.StatusNotFound
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}))
	defer srv.Close()

	c := NewChecker(logger.Discard(), time.Minute)
	c.RegisterAPICheck("backend", srv.URL, srv.Client())

	c.RunChecks(context.Background())
	assert.Equal(t, StatusUp, c.GetStatus()["api-backend"].Status)

	code = http.StatusBadGateway
	c.RunChecks(context.Background())
	assert.Equal(t, StatusDegraded, c.GetStatus()["api-backend"].Status)
	assert.True(t, c.IsSystemHealthy())

	srv.Close()
	c.RunChecks(context.Background())
	assert.Equal(t, StatusDown, c.GetStatus()["api-backend"].Status)
	assert.False(t, c.IsSystemHealthy())
}

func TestStartStopsWithContext(t *testing.T) {
	c := NewChecker(logger.Discard(), 10*time.Millisecond)
	ran := make(chan struct{}, 10)
	c.RegisterCheck("probe", false, func(context.Context) (Status, string, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return StatusUp, "ok", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	<-ran
	<-ran
	cancel()
}
