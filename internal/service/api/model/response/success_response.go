package response

// SuccessResponse 본문 없는 요청이 성공했을 때의 응답
type SuccessResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}
