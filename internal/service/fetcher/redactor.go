package fetcher

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const redacted = "xxxxx"

var (
	sensitiveKeys = []string{
		"api_key", "apikey", "key", "token", "access_token", "secret", "password", "auth", "signature",
	}

	sensitiveSuffixes = []string{"_token", "_secret", "_key", "_password"}

	sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}
)

// redactURL 사용자 정보와 민감한 쿼리 파라미터(api_key 등)를 마스킹한 URL 문자열을 반환합니다.
// 렌더링 서비스 요청 URL에는 API 키가 포함되므로 로그에 남기기 전에 반드시 거쳐야 한다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u
	if u.User != nil {
		ru.User = url.User(redacted)
	}

	if u.RawQuery != "" {
		q := ru.Query()
		for k := range q {
			if isSensitiveKey(k) {
				q.Set(k, redacted)
			}
		}
		ru.RawQuery = q.Encode()
	}

	return ru.String()
}

func redactRawURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return redactURL(u)
}

func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, k := range sensitiveHeaders {
		if masked.Get(k) != "" {
			masked.Set(k, "***")
		}
	}

	return masked
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if slices.Contains(sensitiveKeys, k) {
		return true
	}
	for _, s := range sensitiveSuffixes {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	return false
}
