// Package response v1 API 응답 본문 모델입니다.
package response

import (
	"time"

	"github.com/darkkaiser/price-tracker/internal/service/store"
)

// ProductResponse 추적 상품
type ProductResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Store         string     `json:"store"`
	StoreName     string     `json:"store_name"`
	CurrentPrice  *float64   `json:"current_price"`
	TargetPrice   *float64   `json:"target_price"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PricePointResponse 가격 이력 한 건
type PricePointResponse struct {
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// ProductDetailResponse 상품과 가격 이력
type ProductDetailResponse struct {
	ProductResponse
	History []PricePointResponse `json:"history"`
}

// ProductListResponse 상품 목록
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

func NewProductResponse(p store.TrackedProduct) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		URL:           p.URL,
		Store:         string(p.Store),
		StoreName:     p.Store.DisplayName(),
		CurrentPrice:  p.CurrentPrice,
		TargetPrice:   p.TargetPrice,
		LastCheckedAt: p.LastCheckedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewProductListResponse(products []store.TrackedProduct) ProductListResponse {
	res := ProductListResponse{Products: make([]ProductResponse, 0, len(products))}
	for _, p := range products {
		res.Products = append(res.Products, NewProductResponse(p))
	}
	return res
}

func NewProductDetailResponse(p store.TrackedProduct, history []store.PricePoint) ProductDetailResponse {
	res := ProductDetailResponse{
		ProductResponse: NewProductResponse(p),
		History:         make([]PricePointResponse, 0, len(history)),
	}
	for _, pp := range history {
		res.History = append(res.History, PricePointResponse{Price: pp.Price, ObservedAt: pp.ObservedAt})
	}
	return res
}
