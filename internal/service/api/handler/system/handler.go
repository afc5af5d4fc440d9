// Package system 인증 없이 접근 가능한 시스템 엔드포인트(/health, /version) 핸들러입니다.
package system

import (
	"context"
	"net/http"
	"time"

	"github.com/darkkaiser/price-tracker/internal/pkg/version"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/model/system"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
)

// healthCheckTimeout 의존 서비스 하나의 상태 확인 제한 시간
const healthCheckTimeout = 2 * time.Second

// Pinger 상태를 확인할 수 있는 의존 서비스입니다. *store.Store가 구현합니다.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 시스템 엔드포인트 핸들러
type Handler struct {
	db Pinger

	buildInfo version.Info

	serverStartTime time.Time
}

func NewHandler(db Pinger, buildInfo version.Info) *Handler {
	if db == nil {
		panic("system: Pinger는 필수입니다")
	}

	return &Handler{
		db:              db,
		buildInfo:       buildInfo,
		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler 서버와 데이터베이스 상태를 반환합니다. 의존 서비스가 비정상이면 503입니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	dep := system.DependencyStatus{
		Status:    constants.HealthStatusHealthy,
		LatencyMs: latency,
	}
	status := constants.HealthStatusHealthy
	code := http.StatusOK

	if err != nil {
		applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
			"dependency": constants.DependencyDatabase,
			"error":      err,
		}).Warn("헬스 체크: 데이터베이스 상태 이상")

		dep.Status = constants.HealthStatusUnhealthy
		dep.Message = err.Error()
		status = constants.HealthStatusUnhealthy
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, system.HealthResponse{
		Status: status,
		Uptime: int64(time.Since(h.serverStartTime).Seconds()),
		Dependencies: map[string]system.DependencyStatus{
			constants.DependencyDatabase: dep,
		},
	})
}

// VersionHandler 빌드 정보를 반환합니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}
