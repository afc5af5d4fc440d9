package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/price-tracker/internal/service/api/middleware"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig HTTP 서버 생성 설정
type HTTPServerConfig struct {
	Debug bool

	// AllowOrigins CORS 허용 Origin 목록. 비어 있으면 CORS 헤더를 붙이지 않는다.
	AllowOrigins []string

	// RequestTimeout 0이면 constants.DefaultRequestTimeout
	RequestTimeout time.Duration
}

// NewHTTPServer 미들웨어 체인이 구성된 Echo 인스턴스를 생성합니다. 라우트는 포함하지 않습니다.
//
// 적용 순서:
//  1. PanicRecovery: 다른 미들웨어의 패닉까지 복구하도록 가장 먼저
//  2. RequestID: 이후 로그에 request_id가 남도록
//  3. HTTPLogger: 429/503 응답도 기록되도록 RateLimit/Timeout보다 앞에
//  4. RateLimit (IP별)
//  5. BodyLimit
//  6. Timeout
//  7. CORS
//  8. Secure 헤더
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = constants.DefaultReadTimeout
	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.WriteTimeout = constants.DefaultWriteTimeout
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = httputil.ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimit(constants.DefaultRateLimitPerSecond, constants.DefaultRateLimitBurst))
	e.Use(middleware.BodyLimit(constants.DefaultMaxBodySize))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))
	if len(cfg.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderContentType, constants.HeaderAppKey},
		}))
	}
	e.Use(middleware.Secure())

	return e
}
