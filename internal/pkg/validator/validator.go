// Package validator go-playground/validator 인스턴스를 공유하고 검증 에러를 사용자용 메시지로 바꿉니다.
//
// 필드 이름은 `korean` 태그가 있으면 그 값을, 없으면 구조체 필드 이름을 사용합니다.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get 공유 Validate 인스턴스를 반환합니다.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("korean"); name != "" {
				return name
			}
			return fld.Name
		})
	})

	return validate
}

// Struct 구조체를 검증합니다.
func Struct(s any) error {
	return Get().Struct(s)
}

// FormatValidationError 첫 번째 검증 실패 항목을 메시지로 만듭니다.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}

	return formatFieldError(validationErrors[0])
}

func formatFieldError(fe validator.FieldError) string {
	name := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s는 필수입니다", name)
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s는 최소 %s자 이상이어야 합니다", name, fe.Param())
		}
		return fmt.Sprintf("%s는 최소 %s 이상이어야 합니다", name, fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s는 최대 %s자까지 입력 가능합니다", name, fe.Param())
		}
		return fmt.Sprintf("%s는 최대 %s까지 입력 가능합니다", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s는 %s보다 커야 합니다", name, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s는 올바른 URL 형식이어야 합니다", name)
	case "oneof":
		return fmt.Sprintf("%s는 [%s] 중 하나여야 합니다", name, fe.Param())
	default:
		return fmt.Sprintf("%s 검증 실패: %s", name, fe.Tag())
	}
}
