package middleware

import (
	"github.com/darkkaiser/price-tracker/internal/service/api/auth"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/darkkaiser/price-tracker/pkg/strutil"
	"github.com/labstack/echo/v4"
)

// RequireAppKey X-App-Key 헤더로 요청을 인증합니다.
//
//   - 헤더 없음: 401 (ErrAppKeyRequired)
//   - 등록되지 않은 키: 401 (ErrAppKeyInvalid)
func RequireAppKey(authenticator *auth.Authenticator) echo.MiddlewareFunc {
	if authenticator == nil {
		panic("RequireAppKey: Authenticator는 필수입니다")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			appKey := c.Request().Header.Get(constants.HeaderAppKey)
			if appKey == "" {
				return ErrAppKeyRequired
			}

			if !authenticator.Authenticate(appKey) {
				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"received_app_key": strutil.Mask(appKey),
					"path":             c.Request().URL.Path,
					"remote_ip":        c.RealIP(),
				}).Warn("APP_KEY 불일치")

				return ErrAppKeyInvalid
			}

			return next(c)
		}
	}
}
