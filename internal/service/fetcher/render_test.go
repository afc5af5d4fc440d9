package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const productURL = "https://biggeek.ru/products/apple-iphone-15"

func renderConfig(endpoint string) config.RenderConfig {
	return config.RenderConfig{
		Kind:        config.RenderKindProxy,
		Endpoint:    endpoint,
		APIKey:      "super-secret-key",
		CountryCode: "RU",
		Timeout:     time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	}
}

func TestRenderProxy_FetchPage_BuildsRequest(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><span class="total-prod-price">12 990 ₽</span></body></html>`))
	}))
	defer srv.Close()

	page, err := fetcher.NewRenderProxy(renderConfig(srv.URL)).FetchPage(context.Background(), productURL)

	require.NoError(t, err)
	assert.Contains(t, page, "12 990 ₽")

	q := got.Load().(url.Values)
	assert.Equal(t, "super-secret-key", q.Get("api_key"))
	assert.Equal(t, productURL, q.Get("url"))
	assert.Equal(t, "true", q.Get("render"))
	assert.Equal(t, "ru", q.Get("country_code"))
}

func TestRenderProxy_FetchPage_DecodesCharset(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Цена: 4 500 руб.")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write([]byte("<html><body>" + encoded + "</body></html>"))
	}))
	defer srv.Close()

	page, err := fetcher.NewRenderProxy(renderConfig(srv.URL)).FetchPage(context.Background(), productURL)

	require.NoError(t, err)
	assert.Contains(t, page, "Цена: 4 500 руб.")
}

func TestRenderProxy_FetchPage_Errors(t *testing.T) {
	t.Run("2xx 이외의 응답은 FetchError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := fetcher.NewRenderProxy(renderConfig(srv.URL)).FetchPage(context.Background(), productURL)

		var fetchErr *fetcher.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, productURL, fetchErr.URL)
		assert.False(t, fetchErr.Temporary())
		assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
		assert.NotContains(t, err.Error(), "super-secret-key")
	})

	t.Run("시간 초과는 Timeout으로 분류된다", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := renderConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		cfg.MaxRetries = 0

		_, err := fetcher.NewRenderProxy(cfg).FetchPage(context.Background(), productURL)

		var fetchErr *fetcher.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.True(t, apperrors.Is(err, apperrors.Timeout), "error: %v", err)
		assert.True(t, fetchErr.Temporary())
		assert.NotContains(t, err.Error(), "super-secret-key")
	})

	t.Run("연결 실패는 Unavailable이며 API 키가 노출되지 않는다", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := srv.URL
		srv.Close()

		cfg := renderConfig(endpoint)
		cfg.MaxRetries = 1

		_, err := fetcher.NewRenderProxy(cfg).FetchPage(context.Background(), productURL)

		var fetchErr *fetcher.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.True(t, apperrors.Is(err, apperrors.Unavailable), "error: %v", err)
		assert.NotContains(t, err.Error(), "super-secret-key")
	})

	t.Run("본문 크기 초과", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		}))
		defer srv.Close()

		cfg := renderConfig(srv.URL)
		cfg.MaxBodyBytes = 1024

		_, err := fetcher.NewRenderProxy(cfg).FetchPage(context.Background(), productURL)

		require.Error(t, err)
		assert.ErrorIs(t, err, fetcher.ErrResponseBodyTooLarge)
	})
}

func TestNew(t *testing.T) {
	t.Run("proxy", func(t *testing.T) {
		f, err := fetcher.New(renderConfig("https://api.scraperapi.com"))
		require.NoError(t, err)
		assert.IsType(t, &fetcher.RenderProxy{}, f)
	})

	t.Run("proxy without api key", func(t *testing.T) {
		cfg := renderConfig("https://api.scraperapi.com")
		cfg.APIKey = ""

		_, err := fetcher.New(cfg)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("chromedp", func(t *testing.T) {
		f, err := fetcher.New(config.RenderConfig{Kind: config.RenderKindChromedp})
		require.NoError(t, err)
		assert.IsType(t, &fetcher.HeadlessRenderer{}, f)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := fetcher.New(config.RenderConfig{Kind: "selenium"})
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}
