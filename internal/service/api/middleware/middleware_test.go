package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/api/auth"
	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func newContext(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAppKey(t *testing.T) {
	mw := RequireAppKey(auth.NewAuthenticator([]string{"valid-key-0123456789"}))

	t.Run("헤더 없음", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/v1/users/1/products", "")
		assert.Equal(t, ErrAppKeyRequired, mw(okHandler)(c))
	})

	t.Run("잘못된 키", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/v1/users/1/products", "")
		c.Request().Header.Set(constants.HeaderAppKey, "wrong")
		assert.Equal(t, ErrAppKeyInvalid, mw(okHandler)(c))
	})

	t.Run("정상", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/v1/users/1/products", "")
		c.Request().Header.Set(constants.HeaderAppKey, "valid-key-0123456789")
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	assert.Panics(t, func() { RequireAppKey(nil) })
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2)(okHandler)

	for i := 0; i < 2; i++ {
		c, _ := newContext(http.MethodGet, "/", "")
		require.NoError(t, h(c))
	}

	c, _ := newContext(http.MethodGet, "/", "")
	assert.Equal(t, ErrRateLimitExceeded, h(c))
	assert.Equal(t, "1", c.Response().Header().Get("Retry-After"))

	assert.Panics(t, func() { RateLimit(0, 1) })
	assert.Panics(t, func() { RateLimit(1, 0) })
}

func TestIPRateLimiter_Eviction(t *testing.T) {
	l := newIPRateLimiter(1, 1)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range maxIPRateLimiters {
		l.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		l.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Len(t, l.limiters, maxIPRateLimiters)

	// 가장 먼저 들어온 10.0.0.0이 밀려난다.
	l.now = func() time.Time { return base.Add(time.Hour) }
	l.allow("192.168.0.1")

	assert.Len(t, l.limiters, maxIPRateLimiters)
	assert.NotContains(t, l.limiters, "10.0.0.0")
	assert.Contains(t, l.limiters, "10.0.0.1")
	assert.Contains(t, l.limiters, "192.168.0.1")
}

func TestRequireJSON(t *testing.T) {
	h := RequireJSON()(okHandler)

	t.Run("본문 없음", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/", "")
		assert.NoError(t, h(c))
	})

	t.Run("JSON", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/", `{"a":1}`)
		c.Request().Header.Set(echo.HeaderContentType, "application/json; charset=utf-8")
		assert.NoError(t, h(c))
	})

	t.Run("폼", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/", `a=1`)
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		assert.Equal(t, ErrUnsupportedMediaType, h(c))
	})
}

func TestPanicRecovery(t *testing.T) {
	t.Run("문자열 패닉", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/", "")
		err := PanicRecovery()(func(echo.Context) error { panic("boom") })(c)

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Internal))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("에러 패닉", func(t *testing.T) {
		cause := errors.New("nil map")
		c, _ := newContext(http.MethodGet, "/", "")
		err := PanicRecovery()(func(echo.Context) error { panic(cause) })(c)

		assert.ErrorIs(t, err, cause)
	})

	t.Run("abort는 다시 던진다", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/", "")
		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			_ = PanicRecovery()(func(echo.Context) error { panic(http.ErrAbortHandler) })(c)
		})
	})
}

func TestHTTPLogger_HandlesError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := HTTPLogger()(func(echo.Context) error { return echo.ErrNotFound })(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_maskSensitiveQueryParams(t *testing.T) {
	masked := maskSensitiveQueryParams("/api/v1/check?app_key=secret-app-key-123&page=2")
	assert.NotContains(t, masked, "secret-app-key-123")
	assert.Contains(t, masked, "page=2")

	assert.Equal(t, "/health", maskSensitiveQueryParams("/health"))
	assert.Equal(t, "/%zz", maskSensitiveQueryParams("/%zz"))
}
