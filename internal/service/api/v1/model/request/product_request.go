// Package request v1 API 요청 본문 모델입니다.
package request

// CreateProductRequest 상품 등록 요청
type CreateProductRequest struct {
	URL         string   `json:"url"`
	Name        string   `json:"name"`
	TargetPrice *float64 `json:"target_price,omitempty"`
}

// UpdateProductRequest 상품 수정 요청. 생략한 필드는 바뀌지 않습니다.
type UpdateProductRequest struct {
	URL         *string  `json:"url,omitempty"`
	Name        *string  `json:"name,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`

	// ClearTargetPrice true이면 목표 가격을 제거합니다.
	ClearTargetPrice bool `json:"clear_target_price,omitempty"`
}

// LinkChannelRequest 텔레그램 알림 채널 연결 요청
type LinkChannelRequest struct {
	ChatID int64 `json:"chat_id" validate:"required" korean:"chat_id"`
}
