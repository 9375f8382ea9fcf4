package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type upstreamErr struct{ status int }

func (e upstreamErr) Error() string   { return "Not found" }
func (e upstreamErr) HTTPStatus() int { return e.status }

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	appErr := NewNotFoundError("NOPE", "missing")
	assert.Same(t, appErr, FromError(fmt.Errorf("wrapped: %w", appErr)))

	up := FromError(fmt.Errorf("call: %w", upstreamErr{status: http.StatusNotFound}))
	assert.Equal(t, http.StatusNotFound, up.StatusCode)
	assert.Equal(t, "UPSTREAM_ERROR", up.Code)

	other := FromError(stderrors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusBadGateway, other.StatusCode)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", GetErrorCode(other))
}

func TestIs(t *testing.T) {
	a := NewBadRequestError("INVALID", "a")
	b := NewBadRequestError("INVALID", "b")
	assert.True(t, Is(a, b))
	assert.False(t, Is(stderrors.New("x"), b))
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(upstreamErr{status: http.StatusNotFound})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Not found"`)
}

func TestRecoveryWithLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryWithLogger())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SERVER_ERROR")
}
