package middleware

import (
	"net/http"
	"runtime"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
)

// stackBufferSize 패닉 발생 시 스택 트레이스를 담을 버퍼 크기 (4KB)
const stackBufferSize = 4 << 10

// PanicRecovery 핸들러의 패닉을 복구하여 500 응답으로 바꾸고 스택 트레이스를 기록합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				// net/http가 처리하도록 다시 던진다.
				if r == http.ErrAbortHandler {
					panic(r)
				}

				stack := make([]byte, stackBufferSize)
				length := runtime.Stack(stack, false)

				err = newErrPanicRecovered(r)

				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"error":      err,
					"path":       c.Request().URL.Path,
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"stack":      string(stack[:length]),
				}).Error("PANIC RECOVERED")
			}()

			return next(c)
		}
	}
}
