// Package constants API 서비스 전반에서 쓰는 이름, 기본값, 메시지를 모아 둡니다.
package constants

import "time"

// 로그 컴포넌트
const (
	ComponentService      = "api.service"
	ComponentHandler      = "api.handler"
	ComponentMiddleware   = "api.middleware"
	ComponentErrorHandler = "api.error_handler"
)

// 서버 기본값
const (
	// DefaultRequestTimeout 요청 하나의 최대 처리 시간
	DefaultRequestTimeout = 30 * time.Second

	DefaultReadTimeout       = 15 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 35 * time.Second
	DefaultIdleTimeout       = 60 * time.Second

	// DefaultMaxBodySize 요청 본문 최대 크기
	DefaultMaxBodySize = "64K"

	// IP별 초당 요청 수와 버스트
	DefaultRateLimitPerSecond = 10
	DefaultRateLimitBurst     = 20
)

// 헤더와 파라미터
const (
	HeaderAppKey = "X-App-Key"

	ParamUserID    = "user_id"
	ParamProductID = "product_id"
)

// 헬스 체크
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	DependencyDatabase = "database"
)

// 응답 메시지
const (
	ErrMsgBadRequest         = "잘못된 요청입니다"
	ErrMsgInvalidBody        = "요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"
	ErrMsgAppKeyRequired     = "app_key는 필수입니다 (X-App-Key 헤더)"
	ErrMsgAppKeyInvalid      = "app_key가 유효하지 않습니다"
	ErrMsgNotFound           = "요청한 리소스를 찾을 수 없습니다"
	ErrMsgTooManyRequests    = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"
	ErrMsgInternalServer     = "내부 서버 오류가 발생했습니다"
	ErrMsgServiceUnavailable = "서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요"
	ErrMsgUnsupportedMedia   = "지원하지 않는 Content-Type 형식입니다"
	ErrMsgInvalidPathParam   = "경로 파라미터 %s는 양의 정수여야 합니다"
)

// 로그 메시지
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다"

	LogMsgHTTP4xxClientError = "HTTP 4xx: 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 5xx: 서버 내부 오류"
)
