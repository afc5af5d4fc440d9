package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/price-tracker/internal/pkg/version"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/model/system"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func call(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestNewHandler_Panics(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil, version.Info{}) })
}

func TestHealthCheckHandler(t *testing.T) {
	t.Run("정상", func(t *testing.T) {
		h := NewHandler(pingerFunc(func(context.Context) error { return nil }), version.Info{})
		rec := call(t, h.HealthCheckHandler, "/health")

		assert.Equal(t, http.StatusOK, rec.Code)

		var body system.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, constants.HealthStatusHealthy, body.Status)
		assert.Equal(t, constants.HealthStatusHealthy, body.Dependencies[constants.DependencyDatabase].Status)
	})

	t.Run("데이터베이스 이상", func(t *testing.T) {
		h := NewHandler(pingerFunc(func(context.Context) error { return errors.New("database is locked") }), version.Info{})
		rec := call(t, h.HealthCheckHandler, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body system.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, constants.HealthStatusUnhealthy, body.Status)

		dep := body.Dependencies[constants.DependencyDatabase]
		assert.Equal(t, constants.HealthStatusUnhealthy, dep.Status)
		assert.Equal(t, "database is locked", dep.Message)
	})

	t.Run("Ping에 제한 시간이 걸린다", func(t *testing.T) {
		h := NewHandler(pingerFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		}), version.Info{})
		call(t, h.HealthCheckHandler, "/health")
	})
}

func TestVersionHandler(t *testing.T) {
	info := version.Info{Version: "1.2.0", Commit: "abc1234", GoVersion: "go1.24.0"}
	h := NewHandler(pingerFunc(func(context.Context) error { return nil }), info)

	rec := call(t, h.VersionHandler, "/version")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body version.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, info.Version, body.Version)
	assert.Equal(t, info.Commit, body.Commit)
}
