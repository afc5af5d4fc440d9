// Package fetcher 상품 페이지의 렌더링된 HTML을 가져옵니다.
//
// HTTP 요청은 데코레이터 체인으로 구성됩니다. 바깥쪽부터 순서대로 실행됩니다.
//
//	LoggingFetcher → RetryFetcher → StatusCodeFetcher → MaxBytesFetcher → HTTPFetcher
//
// PageFetcher 구현체(RenderProxy, HeadlessRenderer)는 이 체인 또는 로컬 브라우저를 이용해
// 페이지 내용을 문자열로 반환하며, 실패 시 항상 *FetchError를 반환합니다.
package fetcher

import (
	"context"
	"net/http"
)

const component = "fetcher"

// Fetcher HTTP 요청을 수행하는 최소 인터페이스입니다. 미들웨어는 이 인터페이스를 감싸는 방식으로 구성됩니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetcherFunc 일반 함수를 Fetcher로 사용할 수 있게 하는 어댑터입니다.
type FetcherFunc func(req *http.Request) (*http.Response, error)

func (f FetcherFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// PageFetcher 상품 URL의 렌더링된 페이지 내용을 가져옵니다.
//
// 구현체는 요청마다 시간 제한을 적용해야 하며, 네트워크 오류, 2xx 이외의 응답, 시간 초과는 모두 *FetchError로 반환합니다.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (string, error)
}

// PageFetcherFunc 일반 함수를 PageFetcher로 사용할 수 있게 하는 어댑터입니다.
type PageFetcherFunc func(ctx context.Context, rawURL string) (string, error)

func (f PageFetcherFunc) FetchPage(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}
