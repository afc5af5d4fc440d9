package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/httputil"
	"github.com/labstack/echo/v4"
)

var (
	// ErrAppKeyRequired X-App-Key 헤더가 없습니다.
	ErrAppKeyRequired = httputil.NewUnauthorizedError(constants.ErrMsgAppKeyRequired)

	// ErrAppKeyInvalid 등록되지 않은 App Key입니다.
	ErrAppKeyInvalid = httputil.NewUnauthorizedError(constants.ErrMsgAppKeyInvalid)

	// ErrRateLimitExceeded 허용된 요청 빈도를 초과했습니다.
	ErrRateLimitExceeded = httputil.NewTooManyRequestsError(constants.ErrMsgTooManyRequests)

	// ErrUnsupportedMediaType 요청 본문의 Content-Type이 JSON이 아닙니다.
	ErrUnsupportedMediaType = echo.NewHTTPError(http.StatusUnsupportedMediaType, constants.ErrMsgUnsupportedMedia)
)

// newErrPanicRecovered 복구한 패닉 값을 내부 오류로 감쌉니다.
func newErrPanicRecovered(r any) error {
	if err, ok := r.(error); ok {
		return apperrors.Wrap(err, apperrors.Internal, "요청 처리 중 패닉이 발생했습니다")
	}
	return apperrors.New(apperrors.Internal, fmt.Sprintf("요청 처리 중 패닉이 발생했습니다: %v", r))
}
