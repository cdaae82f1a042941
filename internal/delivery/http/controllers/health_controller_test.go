package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthController_Health(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, nil)
		rr := httptest.NewRecorder()

		ctrl.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var out HealthResponse
		decodeEnvelope(t, rr, &out)
		assert.Equal(t, "ok", out.Status)
		assert.Empty(t, out.Dependencies)
	})

	t.Run("dependency down", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, map[string]Pinger{
			"postgres": pingFunc(func(context.Context) error { return nil }),
			"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		})
		rr := httptest.NewRecorder()

		ctrl.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var out HealthResponse
		decodeEnvelope(t, rr, &out)
		assert.Equal(t, "degraded", out.Status)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "down"}, out.Dependencies)
	})
}
