package middleware

import (
	"mime"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequireJSON 본문이 있는 요청의 Content-Type이 application/json인지 확인합니다.
func RequireJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			contentType := req.Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != echo.MIMEApplicationJSON {
				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"method":    req.Method,
					"path":      req.URL.Path,
					"actual":    contentType,
					"remote_ip": c.RealIP(),
				}).Warn("지원하지 않는 Content-Type 요청입니다")

				return ErrUnsupportedMediaType
			}

			return next(c)
		}
	}
}
