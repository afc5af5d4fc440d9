// Package product 사용자 단위의 추적 상품 관리 기능을 제공합니다.
//
// 입력 검증과 스토어 판별은 저장 전에 동기적으로 수행하며, 등록 직후의 첫 가격 확인은
// 트래커에 비동기로 맡깁니다. 첫 확인의 실패는 호출자에게 전달되지 않습니다.
package product

import (
	"context"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/pkg/validator"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/darkkaiser/price-tracker/pkg/strutil"
)

const component = "product"

// Repository 상품 관리에 필요한 저장소 기능입니다.
type Repository interface {
	CreateProduct(ctx context.Context, p *store.TrackedProduct) error
	GetProduct(ctx context.Context, ownerID, productID uint) (*store.TrackedProduct, error)
	ListProducts(ctx context.Context, ownerID uint) ([]store.TrackedProduct, error)
	UpdateProduct(ctx context.Context, ownerID, productID uint, upd store.ProductUpdate) (*store.TrackedProduct, error)
	DeleteProduct(ctx context.Context, ownerID, productID uint) error
	ListPriceHistory(ctx context.Context, productID uint) ([]store.PricePoint, error)
	LinkChannel(ctx context.Context, ownerID uint, chatID int64) error
}

// Checker 상품 하나의 가격 확인을 비동기로 요청받습니다. *tracker.Tracker가 구현합니다.
type Checker interface {
	Submit(p store.TrackedProduct) error
}

// CreateInput 상품 등록 요청
type CreateInput struct {
	URL         string   `validate:"required,http_url,max=500" korean:"상품 URL"`
	Name        string   `validate:"required,max=300" korean:"상품명"`
	TargetPrice *float64 `validate:"omitempty,gt=0" korean:"목표 가격"`
}

// UpdateInput 상품 수정 요청. nil 필드는 변경하지 않습니다.
type UpdateInput struct {
	URL         *string  `validate:"omitempty,http_url,max=500" korean:"상품 URL"`
	Name        *string  `validate:"omitempty,min=1,max=300" korean:"상품명"`
	TargetPrice *float64 `validate:"omitempty,gt=0" korean:"목표 가격"`

	// ClearTarget 목표 가격을 제거합니다.
	ClearTarget bool
}

// Detail 상품과 가격 이력
type Detail struct {
	Product store.TrackedProduct
	History []store.PricePoint
}

// Service 추적 상품 관리 서비스
type Service struct {
	repo    Repository
	checker Checker
}

func NewService(repo Repository, checker Checker) *Service {
	if repo == nil {
		panic("product: Repository는 필수입니다")
	}
	if checker == nil {
		panic("product: Checker는 필수입니다")
	}

	return &Service{
		repo:    repo,
		checker: checker,
	}
}

// Create 상품을 등록하고 첫 가격 확인을 요청합니다.
//
// 지원하지 않는 스토어의 URL이면 저장하지 않고 storefront.ErrUnsupportedStore를 감싼 에러를 반환합니다.
func (s *Service) Create(ctx context.Context, ownerID uint, in CreateInput) (*store.TrackedProduct, error) {
	in.Name = strutil.NormalizeSpaces(in.Name)

	if err := validator.Struct(in); err != nil {
		return nil, apperrors.New(apperrors.InvalidInput, validator.FormatValidationError(err))
	}

	storeID, err := storefront.Resolve(in.URL)
	if err != nil {
		return nil, err
	}

	p := &store.TrackedProduct{
		OwnerID:     ownerID,
		Name:        in.Name,
		URL:         in.URL,
		Store:       storeID,
		TargetPrice: in.TargetPrice,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"owner_id":   ownerID,
		"product_id": p.ID,
		"store":      storeID,
	}).Info("추적 상품 등록")

	s.submitFirstCheck(*p)

	return p, nil
}

// Get 상품과 가격 이력을 조회합니다.
func (s *Service) Get(ctx context.Context, ownerID, productID uint) (*Detail, error) {
	p, err := s.repo.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListPriceHistory(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &Detail{Product: *p, History: history}, nil
}

// List 사용자의 추적 상품 목록
func (s *Service) List(ctx context.Context, ownerID uint) ([]store.TrackedProduct, error) {
	return s.repo.ListProducts(ctx, ownerID)
}

// Update 상품 정보를 수정합니다. URL이 바뀌면 첫 가격 확인을 다시 요청합니다.
func (s *Service) Update(ctx context.Context, ownerID, productID uint, in UpdateInput) (*store.TrackedProduct, error) {
	if in.Name != nil {
		name := strutil.NormalizeSpaces(*in.Name)
		in.Name = &name
	}

	if err := validator.Struct(in); err != nil {
		return nil, apperrors.New(apperrors.InvalidInput, validator.FormatValidationError(err))
	}

	p, err := s.repo.UpdateProduct(ctx, ownerID, productID, store.ProductUpdate{
		Name:        in.Name,
		URL:         in.URL,
		TargetPrice: in.TargetPrice,
		ClearTarget: in.ClearTarget,
	})
	if err != nil {
		return nil, err
	}

	// URL 변경으로 현재 가격이 초기화된 경우
	if in.URL != nil && p.CurrentPrice == nil {
		s.submitFirstCheck(*p)
	}

	return p, nil
}

// Delete 상품과 가격 이력을 삭제합니다.
func (s *Service) Delete(ctx context.Context, ownerID, productID uint) error {
	if err := s.repo.DeleteProduct(ctx, ownerID, productID); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"owner_id":   ownerID,
		"product_id": productID,
	}).Info("추적 상품 삭제")

	return nil
}

// History 상품의 가격 이력을 시간 순으로 반환합니다.
func (s *Service) History(ctx context.Context, ownerID, productID uint) ([]store.PricePoint, error) {
	if _, err := s.repo.GetProduct(ctx, ownerID, productID); err != nil {
		return nil, err
	}
	return s.repo.ListPriceHistory(ctx, productID)
}

// LinkChannel 사용자의 텔레그램 채팅을 알림 채널로 연결합니다.
func (s *Service) LinkChannel(ctx context.Context, ownerID uint, chatID int64) error {
	if chatID == 0 {
		return apperrors.New(apperrors.InvalidInput, "chat_id는 필수입니다")
	}
	return s.repo.LinkChannel(ctx, ownerID, chatID)
}

func (s *Service) submitFirstCheck(p store.TrackedProduct) {
	if err := s.checker.Submit(p); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"product_id": p.ID,
			"error":      err,
		}).Warn("첫 가격 확인 요청에 실패했습니다. 다음 정기 확인에서 처리됩니다")
	}
}
