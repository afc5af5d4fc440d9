package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/darkkaiser/price-tracker/internal/service/api/model/response"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"라우트 없음", http.MethodGet, echo.ErrNotFound, http.StatusNotFound, constants.ErrMsgNotFound},
		{"HTTPError 문자열 메시지", http.MethodPost, echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"HTTPError ErrorResponse 메시지", http.MethodPost, NewBadRequestError("잘못된 요청입니다"), http.StatusBadRequest, "잘못된 요청입니다"},
		{"지원하지 않는 스토어", http.MethodPost, storefront.NewErrUnsupportedStore("https://example.com"), http.StatusBadRequest, "지원하지 않는 스토어의 URL입니다: 'https://example.com'"},
		{"상품 없음", http.MethodGet, store.ErrProductNotFound, http.StatusNotFound, "상품을 찾을 수 없습니다"},
		{"충돌", http.MethodPost, apperrors.New(apperrors.Conflict, "이미 실행 중"), http.StatusConflict, "이미 실행 중"},
		{"일시적 사용 불가", http.MethodPost, apperrors.New(apperrors.Unavailable, "db 재시작 중"), http.StatusServiceUnavailable, constants.ErrMsgServiceUnavailable},
		{"시스템 에러는 메시지를 숨긴다", http.MethodGet, apperrors.New(apperrors.System, "dial tcp 10.0.0.1:3306"), http.StatusInternalServerError, constants.ErrMsgInternalServer},
		{"일반 에러", http.MethodGet, errors.New("boom"), http.StatusInternalServerError, constants.ErrMsgInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(tt.method, "/api/v1/users/1/products", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.ResultCode)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestErrorHandler_HeadRequest(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()

	ErrorHandler(errors.New("boom"), e.NewContext(req, rec))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_Committed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, c.String(http.StatusOK, "done"))
	ErrorHandler(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
