// Package middleware API 서버의 Echo 미들웨어입니다.
//
// NewHTTPServer에서 적용하는 순서:
//
//	PanicRecovery → RequestID → HTTPLogger → RateLimit → BodyLimit → Timeout → CORS → Secure
//
// 인증(RequireAppKey)과 Content-Type 검증은 라우트 그룹 단위로 적용합니다.
package middleware
