package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
)

var (
	// ErrResponseBodyTooLarge 응답 본문이 허용 크기를 초과했습니다.
	ErrResponseBodyTooLarge = apperrors.New(apperrors.ExecutionFailed, "응답 본문이 허용된 크기를 초과했습니다")
)

// FetchError 페이지 수집 실패를 나타냅니다.
//
// 원인 에러는 AppError로 분류되어 있으므로 apperrors.Is로 성격(Timeout, Unavailable, ExecutionFailed)을 판별할 수 있습니다.
type FetchError struct {
	URL string // 민감 정보가 마스킹된 대상 URL
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("페이지 수집 실패 (%s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary 다음 주기에 다시 시도할 가치가 있는 실패인지 여부
func (e *FetchError) Temporary() bool {
	return apperrors.Is(e.Err, apperrors.Unavailable) || apperrors.Is(e.Err, apperrors.Timeout)
}

// newFetchError 원인 에러를 Timeout/Unavailable/ExecutionFailed 중 하나로 분류하여 FetchError로 감쌉니다.
func newFetchError(targetURL string, err error) *FetchError {
	return &FetchError{URL: redactRawURL(targetURL), Err: classify(err)}
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.Timeout, "요청 시간이 초과되었습니다")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(err, apperrors.Timeout, "요청 시간이 초과되었습니다")
	}

	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.Unavailable, "요청이 취소되었습니다")
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return apperrors.Wrap(err, apperrors.Unavailable, "네트워크 요청에 실패했습니다")
}

// HTTPStatusError 2xx 이외의 응답 상태 코드를 나타냅니다.
type HTTPStatusError struct {
	StatusCode  int
	Status      string
	URL         string
	Header      http.Header
	BodySnippet string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %s", e.Status)
	if e.URL != "" {
		msg += " URL: " + e.URL
	}
	if e.BodySnippet != "" {
		msg += ", Body: " + e.BodySnippet
	}
	return msg
}

func newErrRetryAfterExceeded(retryAfter, maxDelay string) error {
	return apperrors.Newf(apperrors.Unavailable, "서버가 요구한 재시도 대기 시간(%s)이 허용 최대값(%s)을 초과했습니다", retryAfter, maxDelay)
}

func newErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Wrapf(ErrResponseBodyTooLarge, apperrors.ExecutionFailed, "응답 본문이 제한(%d bytes)을 초과했습니다", limit)
}
