// Package strutil 문자열 처리 유틸리티입니다.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// NormalizeSpaces 앞뒤 공백을 제거하고 연속된 공백(줄바꿈, NBSP 포함)을 하나로 축약합니다.
// 예: "  Apple  iPhone  " -> "Apple iPhone"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Mask 토큰이나 API 키를 로그에 남길 수 있도록 일부만 노출합니다.
func Mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 3:
		return "***"
	case len(s) <= 12:
		return s[:4] + "***"
	default:
		return s[:4] + "***" + s[len(s)-4:]
	}
}

// Truncate 문자열을 최대 maxRunes 글자로 자르고, 잘린 경우 "..."를 붙입니다.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}

	return s
}

// SplitAndTrim 구분자로 나눈 뒤 공백을 제거하고 빈 항목을 버립니다. 결과가 없으면 nil입니다.
func SplitAndTrim(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
