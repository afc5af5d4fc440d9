package validator_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/darkkaiser/price-tracker/internal/pkg/validator"
	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productInput struct {
	Name   string   `validate:"required,max=10" korean:"상품명"`
	URL    string   `validate:"required,http_url" korean:"상품 URL"`
	Target *float64 `validate:"omitempty,gt=0" korean:"목표 가격"`
	Note   string   `validate:"min=2"`
}

func TestGet_Singleton(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*goValidator.Validate, 20)

	wg.Add(len(got))
	for i := range got {
		go func() {
			defer wg.Done()
			got[i] = validator.Get()
		}()
	}
	wg.Wait()

	for _, v := range got[1:] {
		assert.Same(t, got[0], v)
	}
}

func TestStruct_Messages(t *testing.T) {
	zero := 0.0

	tests := []struct {
		name  string
		input productInput
		msg   string
	}{
		{"필수 항목", productInput{URL: "https://biggeek.ru/p/1", Note: "ok"}, "상품명는 필수입니다"},
		{"문자열 최대 길이", productInput{Name: "12345678901", URL: "https://biggeek.ru/p/1", Note: "ok"}, "상품명는 최대 10자까지 입력 가능합니다"},
		{"URL 형식", productInput{Name: "item", URL: "not a url", Note: "ok"}, "상품 URL는 올바른 URL 형식이어야 합니다"},
		{"양수", productInput{Name: "item", URL: "https://biggeek.ru/p/1", Target: &zero, Note: "ok"}, "목표 가격는 0보다 커야 합니다"},
		{"korean 태그 없음", productInput{Name: "item", URL: "https://biggeek.ru/p/1", Note: "x"}, "Note는 최소 2자 이상이어야 합니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Struct(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.msg, validator.FormatValidationError(err))
		})
	}
}

func TestStruct_Valid(t *testing.T) {
	target := 9990.0
	assert.NoError(t, validator.Struct(productInput{Name: "item", URL: "https://biggeek.ru/p/1", Target: &target, Note: "ok"}))
}

func TestFormatValidationError_Other(t *testing.T) {
	assert.Empty(t, validator.FormatValidationError(nil))
	assert.Equal(t, "boom", validator.FormatValidationError(errors.New("boom")))
}
