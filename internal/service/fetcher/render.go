package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"golang.org/x/net/html/charset"
)

// RenderProxy 원격 렌더링 서비스(ScraperAPI 호환)를 통해 자바스크립트까지 실행된 페이지를 가져옵니다.
//
// 요청 형식: GET {endpoint}?api_key=...&url=...&render=true&country_code=...
type RenderProxy struct {
	endpoint    string
	apiKey      string
	countryCode string

	chain Fetcher
}

var _ PageFetcher = (*RenderProxy)(nil)

// NewRenderProxy 설정값으로 재시도, 상태 코드 검사, 본문 크기 제한이 적용된 RenderProxy를 생성합니다.
func NewRenderProxy(cfg config.RenderConfig) *RenderProxy {
	var chain Fetcher = NewHTTPFetcher(cfg.Timeout)
	chain = NewMaxBytesFetcher(chain, cfg.MaxBodyBytes)
	chain = NewStatusCodeFetcher(chain)
	chain = NewRetryFetcher(chain, cfg.MaxRetries, cfg.RetryDelay, 0)
	chain = NewLoggingFetcher(chain)

	return newRenderProxy(cfg.Endpoint, cfg.APIKey, cfg.CountryCode, chain)
}

func newRenderProxy(endpoint, apiKey, countryCode string, chain Fetcher) *RenderProxy {
	if chain == nil {
		panic("RenderProxy: Fetcher는 필수입니다")
	}

	return &RenderProxy{
		endpoint:    endpoint,
		apiKey:      apiKey,
		countryCode: strings.ToLower(countryCode),
		chain:       chain,
	}
}

// FetchPage 렌더링된 페이지를 가져와 응답의 문자 집합에 맞게 UTF-8 문자열로 변환합니다.
func (p *RenderProxy) FetchPage(ctx context.Context, rawURL string) (string, error) {
	reqURL, err := p.buildURL(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: apperrors.Wrap(err, apperrors.ExecutionFailed, "요청 생성에 실패했습니다")}
	}

	resp, err := p.chain.Do(req)
	if err != nil {
		return "", newFetchError(rawURL, err)
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", newFetchError(rawURL, apperrors.Wrap(err, apperrors.ExecutionFailed, "응답 문자 집합 변환에 실패했습니다"))
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", newFetchError(rawURL, err)
	}

	return string(body), nil
}

func (p *RenderProxy) buildURL(rawURL string) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.InvalidInput, "렌더링 서비스 주소가 올바르지 않습니다")
	}

	q := u.Query()
	q.Set("api_key", p.apiKey)
	q.Set("url", rawURL)
	q.Set("render", "true")
	if p.countryCode != "" {
		q.Set("country_code", p.countryCode)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
