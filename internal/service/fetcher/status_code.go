package fetcher

import (
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
)

const maxBodySnippetBytes = 512

// StatusCodeFetcher 2xx 이외의 응답을 에러로 변환합니다.
type StatusCodeFetcher struct {
	delegate Fetcher
}

var _ Fetcher = (*StatusCodeFetcher)(nil)

func NewStatusCodeFetcher(delegate Fetcher) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate}
}

func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			drainAndCloseBody(resp.Body)
		}
		return nil, err
	}

	if err := CheckResponseStatus(resp); err != nil {
		drainAndCloseBody(resp.Body)
		return nil, err
	}

	return resp, nil
}

// CheckResponseStatus 응답 상태 코드를 검사합니다.
//
//   - 2xx: nil
//   - 5xx, 429, 408: Unavailable (재시도 대상)
//   - 그 외: ExecutionFailed
//
// 반환되는 에러 체인에는 *HTTPStatusError가 포함됩니다. 본문은 일부만 읽으며 닫지 않습니다.
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     redactHeaders(resp.Header),
	}
	if resp.Request != nil {
		statusErr.URL = redactURL(resp.Request.URL)
	}
	if resp.Body != nil {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		statusErr.BodySnippet = string(snippet)
	}

	errType := apperrors.ExecutionFailed
	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		errType = apperrors.Unavailable
	case resp.StatusCode >= 500:
		switch resp.StatusCode {
		case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		default:
			errType = apperrors.Unavailable
		}
	}

	return apperrors.Wrapf(statusErr, errType, "HTTP 요청이 실패했습니다 (상태 코드: %d)", resp.StatusCode)
}
