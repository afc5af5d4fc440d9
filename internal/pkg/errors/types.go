package errors

import "strconv"

// ErrorType 에러의 성격을 분류하는 타입입니다.
type ErrorType int

const (
	// Unknown 분류되지 않은 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그로 간주)
	Internal

	// System 인프라 수준 장애 (DB, 디스크, 네트워크 등)
	System

	// Unauthorized 인증 실패
	Unauthorized

	// Forbidden 접근 권한 없음
	Forbidden

	// InvalidInput 입력값 검증 실패
	InvalidInput

	// Conflict 리소스 충돌
	Conflict

	// NotFound 리소스 없음
	NotFound

	// ExecutionFailed 외부 호출 또는 작업 실행 실패
	ExecutionFailed

	// ParsingFailed 데이터 파싱 또는 변환 실패
	ParsingFailed

	// Timeout 시간 초과
	Timeout

	// Unavailable 일시적 사용 불가 (재시도 가능)
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	Unauthorized:    "Unauthorized",
	Forbidden:       "Forbidden",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

// String 로그와 에러 메시지에 출력될 타입 이름을 반환합니다.
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}

