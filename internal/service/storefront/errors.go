package storefront

import (
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
)

var (
	// ErrUnsupportedStore URL이 알려진 스토어와 일치하지 않습니다. 상품 등록을 거부하는 사용자 대상 에러입니다.
	ErrUnsupportedStore = apperrors.New(apperrors.InvalidInput, "지원하지 않는 스토어입니다")

	// ErrNoPriceFound 페이지는 수신했지만 가격을 추출하지 못했습니다.
	ErrNoPriceFound = apperrors.New(apperrors.ParsingFailed, "페이지에서 가격 정보를 찾을 수 없습니다")

	// ErrParserNotImplemented 스토어는 식별되지만 가격 파서가 아직 구현되지 않았습니다.
	ErrParserNotImplemented = apperrors.New(apperrors.ParsingFailed, "아직 가격 파서가 구현되지 않은 스토어입니다")
)

// NewErrUnsupportedStore 등록 요청된 URL을 포함한 ErrUnsupportedStore를 생성합니다.
func NewErrUnsupportedStore(rawURL string) error {
	return apperrors.Wrapf(ErrUnsupportedStore, apperrors.InvalidInput, "지원하지 않는 스토어의 URL입니다: '%s'", rawURL)
}

func newErrNoPriceFound(store StoreID) error {
	return apperrors.Wrapf(ErrNoPriceFound, apperrors.ParsingFailed, "%s 페이지에서 가격을 추출하지 못했습니다", store)
}

func newErrParserNotImplemented(store StoreID) error {
	return apperrors.Wrapf(ErrParserNotImplemented, apperrors.ParsingFailed, "%s 스토어의 가격 파서가 아직 구현되지 않았습니다", store)
}
