// Package httputil API 응답과 에러 처리를 위한 공통 함수입니다.
package httputil

import (
	"net/http"

	"github.com/darkkaiser/price-tracker/internal/service/api/model/response"
	"github.com/labstack/echo/v4"
)

func NewBadRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message string) error {
	return newHTTPError(http.StatusUnauthorized, message)
}

func NewNotFoundError(message string) error {
	return newHTTPError(http.StatusNotFound, message)
}

func NewTooManyRequestsError(message string) error {
	return newHTTPError(http.StatusTooManyRequests, message)
}

func NewServiceUnavailableError(message string) error {
	return newHTTPError(http.StatusServiceUnavailable, message)
}

func newHTTPError(code int, message string) error {
	return echo.NewHTTPError(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// Success 본문 없는 성공 응답
func Success(c echo.Context, code int) error {
	return c.JSON(code, response.SuccessResponse{
		ResultCode: 0,
		Message:    "성공",
	})
}
