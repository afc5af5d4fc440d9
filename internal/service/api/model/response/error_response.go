package response

// ErrorResponse 에러 응답 본문
type ErrorResponse struct {
	// ResultCode HTTP 상태 코드
	ResultCode int `json:"result_code"`

	Message string `json:"message"`
}
