// Package handler v1 API 핸들러입니다.
//
// 비즈니스 에러(AppError)는 그대로 반환하여 전역 에러 핸들러가 상태 코드로 변환하도록 합니다.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/darkkaiser/price-tracker/internal/pkg/validator"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/httputil"
	"github.com/darkkaiser/price-tracker/internal/service/api/v1/model/request"
	"github.com/darkkaiser/price-tracker/internal/service/api/v1/model/response"
	"github.com/darkkaiser/price-tracker/internal/service/product"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
)

// ProductService 추적 상품 관리 기능입니다. *product.Service가 구현합니다.
type ProductService interface {
	Create(ctx context.Context, ownerID uint, in product.CreateInput) (*store.TrackedProduct, error)
	Get(ctx context.Context, ownerID, productID uint) (*product.Detail, error)
	List(ctx context.Context, ownerID uint) ([]store.TrackedProduct, error)
	Update(ctx context.Context, ownerID, productID uint, in product.UpdateInput) (*store.TrackedProduct, error)
	Delete(ctx context.Context, ownerID, productID uint) error
	LinkChannel(ctx context.Context, ownerID uint, chatID int64) error
}

// CycleTrigger 가격 확인 사이클을 즉시 실행합니다. *tracker.Tracker가 구현합니다.
type CycleTrigger interface {
	TriggerNow() error
}

// Handler v1 API 핸들러
type Handler struct {
	products ProductService
	trigger  CycleTrigger
}

func NewHandler(products ProductService, trigger CycleTrigger) *Handler {
	if products == nil {
		panic("v1 handler: ProductService는 필수입니다")
	}
	if trigger == nil {
		panic("v1 handler: CycleTrigger는 필수입니다")
	}

	return &Handler{
		products: products,
		trigger:  trigger,
	}
}

// CreateProductHandler POST /api/v1/users/:user_id/products
func (h *Handler) CreateProductHandler(c echo.Context) error {
	ownerID, err := pathID(c, constants.ParamUserID)
	if err != nil {
		return err
	}

	req := new(request.CreateProductRequest)
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}

	p, err := h.products.Create(c.Request().Context(), ownerID, product.CreateInput{
		URL:         req.URL,
		Name:        req.Name,
		TargetPrice: req.TargetPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, response.NewProductResponse(*p))
}

// ListProductsHandler GET /api/v1/users/:user_id/products
func (h *Handler) ListProductsHandler(c echo.Context) error {
	ownerID, err := pathID(c, constants.ParamUserID)
	if err != nil {
		return err
	}

	products, err := h.products.List(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.NewProductListResponse(products))
}

// GetProductHandler GET /api/v1/users/:user_id/products/:product_id
func (h *Handler) GetProductHandler(c echo.Context) error {
	ownerID, productID, err := ownerAndProduct(c)
	if err != nil {
		return err
	}

	detail, err := h.products.Get(c.Request().Context(), ownerID, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.NewProductDetailResponse(detail.Product, detail.History))
}

// UpdateProductHandler PATCH /api/v1/users/:user_id/products/:product_id
func (h *Handler) UpdateProductHandler(c echo.Context) error {
	ownerID, productID, err := ownerAndProduct(c)
	if err != nil {
		return err
	}

	req := new(request.UpdateProductRequest)
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}

	p, err := h.products.Update(c.Request().Context(), ownerID, productID, product.UpdateInput{
		URL:         req.URL,
		Name:        req.Name,
		TargetPrice: req.TargetPrice,
		ClearTarget: req.ClearTargetPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.NewProductResponse(*p))
}

// DeleteProductHandler DELETE /api/v1/users/:user_id/products/:product_id
func (h *Handler) DeleteProductHandler(c echo.Context) error {
	ownerID, productID, err := ownerAndProduct(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.Request().Context(), ownerID, productID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// LinkChannelHandler PUT /api/v1/users/:user_id/channel
func (h *Handler) LinkChannelHandler(c echo.Context) error {
	ownerID, err := pathID(c, constants.ParamUserID)
	if err != nil {
		return err
	}

	req := new(request.LinkChannelRequest)
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}
	if err := validator.Struct(req); err != nil {
		return NewErrValidationFailed(validator.FormatValidationError(err))
	}

	if err := h.products.LinkChannel(c.Request().Context(), ownerID, req.ChatID); err != nil {
		return err
	}

	return httputil.Success(c, http.StatusOK)
}

// TriggerCheckHandler POST /api/v1/check
//
// 사이클은 백그라운드에서 실행되며 응답은 즉시 202를 반환합니다. 이미 실행 중이면 409입니다.
func (h *Handler) TriggerCheckHandler(c echo.Context) error {
	if err := h.trigger.TriggerNow(); err != nil {
		return err
	}

	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"remote_ip": c.RealIP(),
	}).Info("가격 확인 사이클 수동 실행 요청")

	return httputil.Success(c, http.StatusAccepted)
}

func ownerAndProduct(c echo.Context) (ownerID, productID uint, err error) {
	if ownerID, err = pathID(c, constants.ParamUserID); err != nil {
		return 0, 0, err
	}
	if productID, err = pathID(c, constants.ParamProductID); err != nil {
		return 0, 0, err
	}
	return ownerID, productID, nil
}

func pathID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, NewErrInvalidPathParam(name)
	}
	return uint(v), nil
}
