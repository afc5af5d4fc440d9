package storefront

import (
	"math"
	"strconv"
	"strings"
)

// NormalizePrice 화면에 표시된 가격 문자열을 숫자로 변환합니다.
//
// 통화 기호, 공백, NBSP, 천 단위 구분자를 포함한 모든 비숫자 문자를 제거한 뒤 해석합니다.
// 대상 스토어들은 정수 루블 단위 가격만 표시하므로 소수점도 함께 제거됩니다.
//
//	NormalizePrice("12 990 ₽")  // 12990, true
//	NormalizePrice("—")         // 0, false
func NormalizePrice(raw string) (float64, bool) {
	var digits strings.Builder
	digits.Grow(len(raw))

	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits.WriteByte(c)
		}
	}

	if digits.Len() == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}
