package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
)

const (
	maxAllowedRetries = 10

	defaultMinRetryDelay = 1 * time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 일시적인 실패(네트워크 오류, 5xx, 429)를 지수 백오프와 Full Jitter로 재시도합니다.
//
// 서버가 Retry-After 헤더를 보낸 경우 그 값을 우선하며, 허용 최대 대기 시간을 넘으면 즉시 포기합니다.
// 대기 중 요청 컨텍스트가 취소되면 즉시 반환합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

func NewRetryFetcher(delegate Fetcher, maxRetries int, minDelay, maxDelay time.Duration) *RetryFetcher {
	maxRetries = max(0, min(maxRetries, maxAllowedRetries))
	if minDelay <= 0 {
		minDelay = defaultMinRetryDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxRetryDelay
	}
	maxDelay = max(maxDelay, minDelay)

	return &RetryFetcher{
		delegate:   delegate,
		maxRetries: maxRetries,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
	}
}

func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// 본문을 재생성할 수 없는 요청은 재시도하지 않는다.
	retries := f.maxRetries
	if req.Body != nil && req.GetBody == nil {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay, err := f.nextDelay(attempt, lastErr)
			if err != nil {
				return nil, err
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"url":         redactURL(req.URL),
				"attempt":     attempt,
				"max_retries": retries,
				"delay":       delay.String(),
				"error":       lastErr.Error(),
			}).Warn("일시적 오류로 요청을 재시도합니다")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}

			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
				}
				req = req.Clone(ctx)
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		if err == nil {
			return resp, nil
		}
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}

		// 호출자가 요청을 포기했다면 재시도하지 않는다.
		if ctx.Err() != nil || !isRetriable(err) {
			return nil, err
		}

		lastErr = err
	}

	if retries == 0 {
		return nil, lastErr
	}

	return nil, apperrors.Wrapf(lastErr, apperrors.Unavailable, "최대 재시도 횟수(%d회)를 초과했습니다", retries)
}

// nextDelay attempt번째 재시도 전 대기 시간을 계산합니다.
func (f *RetryFetcher) nextDelay(attempt int, lastErr error) (time.Duration, error) {
	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) && statusErr.Header != nil {
		if d, ok := parseRetryAfter(statusErr.Header.Get("Retry-After")); ok {
			if d > f.maxDelay {
				return 0, newErrRetryAfterExceeded(d.String(), f.maxDelay.String())
			}
			return d, nil
		}
	}

	backoff := f.minDelay << (attempt - 1)
	if backoff <= 0 || backoff > f.maxDelay {
		backoff = f.maxDelay
	}

	// Full Jitter: [minDelay, backoff] 구간에서 무작위로 선택한다.
	if backoff > f.minDelay {
		return f.minDelay + time.Duration(rand.Int64N(int64(backoff-f.minDelay)+1)), nil
	}
	return backoff, nil
}

func isRetriable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	var certErr x509.CertificateInvalidError
	if errors.As(err, &hostErr) || errors.As(err, &authErr) || errors.As(err, &certErr) {
		return false
	}

	if errors.Is(err, ErrResponseBodyTooLarge) {
		return false
	}

	// StatusCodeFetcher가 분류한 HTTP 에러
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return apperrors.Is(err, apperrors.Unavailable)
	}

	// 그 외 전송 계층 오류(연결 거부, 타임아웃 등)는 일시적인 것으로 본다.
	return true
}

func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}

	if t, err := http.ParseTime(v); err == nil {
		return max(0, time.Until(t)), true
	}

	return 0, false
}
