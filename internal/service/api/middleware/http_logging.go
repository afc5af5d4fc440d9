package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/darkkaiser/price-tracker/pkg/strutil"
	"github.com/labstack/echo/v4"
)

// sensitiveQueryParams 로그에 남기기 전에 값을 가리는 쿼리 파라미터
var sensitiveQueryParams = []string{
	"app_key",
	"api_key",
	"token",
	"secret",
}

// HTTPLogger 요청/응답 정보를 구조화된 로그로 기록합니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			defer func() {
				latency := time.Since(start)

				bytesIn := req.Header.Get(echo.HeaderContentLength)
				if bytesIn == "" {
					bytesIn = "0"
				}

				fields := applog.Fields{
					"method":        req.Method,
					"uri":           maskSensitiveQueryParams(req.RequestURI),
					"route":         c.Path(),
					"status":        res.Status,
					"remote_ip":     c.RealIP(),
					"user_agent":    req.UserAgent(),
					"bytes_in":      bytesIn,
					"bytes_out":     strconv.FormatInt(res.Size, 10),
					"latency_human": latency.String(),
					"request_id":    res.Header().Get(echo.HeaderXRequestID),
				}
				if id := c.Param(constants.ParamUserID); id != "" {
					fields["user_id"] = id
				}

				applog.WithComponentAndFields(constants.ComponentMiddleware, fields).Info("HTTP 요청")
			}()

			// 에러를 여기서 처리해야 로그에 최종 상태 코드가 남는다.
			if err := next(c); err != nil {
				c.Error(err)
			}

			return nil
		}
	}
}

// maskSensitiveQueryParams URI의 민감한 쿼리 파라미터 값을 가립니다. 파싱에 실패하면 원본을 반환합니다.
//
//	"/api/v1/check?app_key=secret123" → "/api/v1/check?app_key=secr***"
func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range sensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, strutil.Mask(q.Get(param)))
			masked = true
		}
	}

	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
