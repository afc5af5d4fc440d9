package store

import (
	"time"

	"github.com/darkkaiser/price-tracker/internal/service/storefront"
)

// TrackedProduct 한 사용자의 상품 URL 가격 추적 구독입니다.
//
// CurrentPrice가 nil이면 아직 한 번도 가격 수집에 성공하지 못한 상태입니다.
type TrackedProduct struct {
	ID      uint               `gorm:"primaryKey" json:"id"`
	OwnerID uint               `gorm:"not null;index" json:"owner_id"`
	Name    string             `gorm:"size:300;not null" json:"name"`
	URL     string             `gorm:"size:500;not null" json:"url"`
	Store   storefront.StoreID `gorm:"size:50;not null" json:"store"`

	CurrentPrice *float64 `json:"current_price"`
	TargetPrice  *float64 `json:"target_price"`

	LastCheckedAt *time.Time `json:"last_checked_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PricePoint 가격 이력의 한 건입니다. 한 번 기록되면 수정되지 않습니다.
type PricePoint struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"not null;index:idx_price_points_product_observed,priority:1" json:"product_id"`
	Price      float64   `gorm:"not null" json:"price"`
	ObservedAt time.Time `gorm:"not null;index:idx_price_points_product_observed,priority:2" json:"observed_at"`
}

// NotificationChannel 사용자별 알림 수신처(텔레그램 채팅)입니다.
type NotificationChannel struct {
	ID        uint      `gorm:"primaryKey"`
	OwnerID   uint      `gorm:"not null;uniqueIndex"`
	ChatID    int64     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceAlert 가격 하락 알림 발송 이력입니다. (상품, 가격 기록) 쌍마다 최대 한 건만 존재합니다.
type PriceAlert struct {
	ID           uint      `gorm:"primaryKey"`
	ProductID    uint      `gorm:"not null;uniqueIndex:ux_price_alerts_product_point,priority:1"`
	PricePointID uint      `gorm:"not null;uniqueIndex:ux_price_alerts_product_point,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (TrackedProduct) TableName() string      { return "tracked_products" }
func (PricePoint) TableName() string          { return "price_points" }
func (NotificationChannel) TableName() string { return "notification_channels" }
func (PriceAlert) TableName() string          { return "price_alerts" }

// Observation 가격 수집 결과를 저장한 뒤의 상태입니다.
type Observation struct {
	Product       TrackedProduct
	PreviousPrice *float64
	Point         PricePoint
}

// ProductUpdate 상품 수정 요청입니다. nil 필드는 변경하지 않습니다.
type ProductUpdate struct {
	Name        *string
	URL         *string
	TargetPrice *float64

	// ClearTarget이 true이면 목표 가격을 제거합니다. TargetPrice보다 우선합니다.
	ClearTarget bool
}
