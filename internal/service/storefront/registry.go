// Package storefront 상품 URL의 스토어 판별, 스토어별 가격 파서 레지스트리, 가격 문자열 정규화를 담당합니다.
//
// 새로운 스토어를 지원하려면 Detect 규칙에 도메인을 추가하고 Registry.Register로 파서를 등록하면 됩니다.
// 다른 컴포넌트는 수정할 필요가 없습니다.
package storefront

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
)

const component = "storefront"

// Parser 파싱된 페이지에서 가격을 추출합니다.
//
// 마크업이 예상과 다르면 (0, false)를 반환해야 하며 패닉을 일으켜서는 안 됩니다.
type Parser interface {
	ParsePrice(doc *goquery.Document) (float64, bool)
}

// ParserFunc 일반 함수를 Parser로 사용할 수 있게 하는 어댑터입니다.
type ParserFunc func(doc *goquery.Document) (float64, bool)

func (f ParserFunc) ParsePrice(doc *goquery.Document) (float64, bool) {
	return f(doc)
}

// SelectorParser CSS 셀렉터와 일치하는 첫 번째 요소의 텍스트를 가격으로 해석합니다.
// 0원은 가격이 없는 것으로 간주합니다.
type SelectorParser struct {
	Selector string
}

func (p SelectorParser) ParsePrice(doc *goquery.Document) (float64, bool) {
	sel := doc.Find(p.Selector).First()
	if sel.Length() == 0 {
		return 0, false
	}

	price, ok := NormalizePrice(sel.Text())
	if !ok || price <= 0 {
		return 0, false
	}

	return price, true
}

// notImplemented 스토어는 식별되지만 아직 파싱 로직이 없는 경우의 자리표시자입니다. 항상 가격 없음을 반환합니다.
type notImplemented struct{}

func (notImplemented) ParsePrice(*goquery.Document) (float64, bool) {
	return 0, false
}

// NotImplemented 아직 지원하지 않는 스토어용 파서를 반환합니다.
func NotImplemented() Parser {
	return notImplemented{}
}

// Registry 스토어 식별자와 파서의 대응표입니다.
type Registry struct {
	mu      sync.RWMutex
	parsers map[StoreID]Parser
}

// NewRegistry 비어 있는 레지스트리를 생성합니다.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[StoreID]Parser),
	}
}

// NewDefaultRegistry 기본 제공 파서가 등록된 레지스트리를 생성합니다.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(BigGeek, SelectorParser{Selector: ".total-prod-price"})
	r.Register(Ozon, NotImplemented())
	r.Register(Wildberries, NotImplemented())
	r.Register(YandexMarket, NotImplemented())
	r.Register(MegaMarket, NotImplemented())

	return r
}

// Register 스토어의 파서를 등록합니다. 이미 등록된 경우 교체합니다.
func (r *Registry) Register(id StoreID, p Parser) {
	if p == nil {
		panic(fmt.Sprintf("storefront: %s 스토어에 nil 파서를 등록할 수 없습니다", id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[id] = p
}

// Lookup 스토어에 등록된 파서를 반환합니다.
func (r *Registry) Lookup(id StoreID) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[id]
	return p, ok
}

// Supports 스토어에 실제로 동작하는 파서가 등록되어 있는지 확인합니다.
func (r *Registry) Supports(id StoreID) bool {
	p, ok := r.Lookup(id)
	if !ok {
		return false
	}

	_, stub := p.(notImplemented)
	return !stub
}

// Extract 페이지 내용에서 가격을 추출합니다. 어떤 실패든 (0, false)로 귀결됩니다.
func (r *Registry) Extract(id StoreID, content string) (float64, bool) {
	price, err := r.Parse(id, content)
	if err != nil {
		return 0, false
	}
	return price, true
}

// Parse 페이지 내용에서 가격을 추출하고, 실패 원인을 에러로 구분하여 반환합니다.
//
//   - 등록되지 않은 스토어: ErrUnsupportedStore
//   - 자리표시자 파서: ErrParserNotImplemented
//   - 가격 요소 없음, 해석 불가, 파서 패닉: ErrNoPriceFound
func (r *Registry) Parse(id StoreID, content string) (price float64, err error) {
	p, ok := r.Lookup(id)
	if !ok {
		return 0, apperrors.Wrapf(ErrUnsupportedStore, apperrors.InvalidInput, "%s 스토어의 파서가 등록되어 있지 않습니다", id)
	}
	if _, stub := p.(notImplemented); stub {
		return 0, newErrParserNotImplemented(id)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ParsingFailed, "HTML 문서 파싱에 실패했습니다")
	}

	defer func() {
		if rec := recover(); rec != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"store": id,
				"panic": rec,
			}).Error("가격 파서에서 패닉이 발생하여 가격 없음으로 처리합니다")

			price, err = 0, newErrNoPriceFound(id)
		}
	}()

	v, ok := p.ParsePrice(doc)
	if !ok {
		return 0, newErrNoPriceFound(id)
	}

	return v, nil
}
