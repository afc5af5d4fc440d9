package storefront

import (
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		url    string
		want   StoreID
		wantOK bool
	}{
		{"https://biggeek.ru/products/apple-iphone-15", BigGeek, true},
		{"https://www.ozon.ru/product/123/", Ozon, true},
		{"https://www.wildberries.ru/catalog/123", Wildberries, true},
		{"https://global.wb.ru/catalog/123", Wildberries, true},
		{"https://market.yandex.ru/product--x/1", YandexMarket, true},
		{"https://megamarket.ru/catalog/details/1", MegaMarket, true},
		{"HTTPS://WWW.OZON.RU/PRODUCT/1", Ozon, true},
		{"https://example.com/x", "", false},
		{"", "", false},
		{"not a url", "", false},
		// 우선순위: 먼저 선언된 규칙이 이긴다.
		{"https://biggeek.ru/redirect?to=ozon.ru", BigGeek, true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := Detect(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	id, err := Resolve("https://www.wildberries.ru/catalog/123")
	require.NoError(t, err)
	assert.Equal(t, Wildberries, id)

	_, err = Resolve("https://example.com/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedStore)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}

func TestKnownAndAll(t *testing.T) {
	for _, id := range All() {
		assert.True(t, Known(id), id)
	}
	assert.False(t, Known("aliexpress"))
	assert.Len(t, All(), 5)
}

func TestStoreID_DisplayName(t *testing.T) {
	assert.Equal(t, "BigGeek", BigGeek.DisplayName())
	assert.Equal(t, "YandexMarket", YandexMarket.DisplayName())
	assert.Equal(t, "Ozon", Ozon.DisplayName())
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"12 990 ₽", 12990, true},
		{"12 990 ₽", 12990, true},
		{"1 299 990 руб.", 1299990, true},
		{"₽ 7", 7, true},
		{"0", 0, true},
		{"—", 0, false},
		{"", 0, false},
		{"Нет в наличии", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizePrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizePrice_IdempotentOnDigits(t *testing.T) {
	first, ok := NormalizePrice("12 990 ₽")
	require.True(t, ok)

	second, ok := NormalizePrice("12990")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

const bigGeekPage = `<html><body>
<div class="prod-info">
  <span class="total-prod-price">12&nbsp;990&nbsp;₽</span>
  <span class="total-prod-price">99 999 ₽</span>
</div>
</body></html>`

func TestRegistry_Parse(t *testing.T) {
	r := NewDefaultRegistry()

	t.Run("BigGeek 가격 추출", func(t *testing.T) {
		price, err := r.Parse(BigGeek, bigGeekPage)
		require.NoError(t, err)
		assert.InDelta(t, 12990.0, price, 1e-9)
	})

	t.Run("마크업 불일치", func(t *testing.T) {
		_, err := r.Parse(BigGeek, `<html><body><div class="price">12 990</div></body></html>`)
		assert.ErrorIs(t, err, ErrNoPriceFound)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
	})

	t.Run("0원은 가격 없음", func(t *testing.T) {
		_, err := r.Parse(BigGeek, `<span class="total-prod-price">0 ₽</span>`)
		assert.ErrorIs(t, err, ErrNoPriceFound)
	})

	t.Run("빈 페이지", func(t *testing.T) {
		_, err := r.Parse(BigGeek, "")
		assert.ErrorIs(t, err, ErrNoPriceFound)
	})

	t.Run("미구현 스토어", func(t *testing.T) {
		for _, id := range []StoreID{Ozon, Wildberries, YandexMarket, MegaMarket} {
			_, err := r.Parse(id, bigGeekPage)
			assert.ErrorIs(t, err, ErrParserNotImplemented, id)
			assert.False(t, r.Supports(id), id)
		}
	})

	t.Run("등록되지 않은 스토어", func(t *testing.T) {
		_, err := r.Parse("aliexpress", bigGeekPage)
		assert.ErrorIs(t, err, ErrUnsupportedStore)
		assert.False(t, r.Supports("aliexpress"))
	})
}

func TestRegistry_Extract(t *testing.T) {
	r := NewDefaultRegistry()

	price, ok := r.Extract(BigGeek, bigGeekPage)
	assert.True(t, ok)
	assert.InDelta(t, 12990.0, price, 1e-9)

	_, ok = r.Extract(Ozon, bigGeekPage)
	assert.False(t, ok)
}

func TestRegistry_RegisterReplacesParser(t *testing.T) {
	r := NewDefaultRegistry()
	require.False(t, r.Supports(Ozon))

	r.Register(Ozon, SelectorParser{Selector: "[data-widget='webPrice'] span"})
	assert.True(t, r.Supports(Ozon))

	price, err := r.Parse(Ozon, `<div data-widget="webPrice"><span>4 590 ₽</span></div>`)
	require.NoError(t, err)
	assert.InDelta(t, 4590.0, price, 1e-9)

	assert.Panics(t, func() { r.Register(Ozon, nil) })
}

func TestRegistry_ParserPanicIsContained(t *testing.T) {
	r := NewRegistry()
	r.Register(BigGeek, ParserFunc(func(*goquery.Document) (float64, bool) {
		panic(errors.New("unexpected markup"))
	}))

	var price float64
	var err error
	assert.NotPanics(t, func() {
		price, err = r.Parse(BigGeek, bigGeekPage)
	})
	assert.Zero(t, price)
	assert.ErrorIs(t, err, ErrNoPriceFound)
}
