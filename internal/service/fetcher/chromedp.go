package fetcher

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
)

const defaultRenderTimeout = 60 * time.Second

// HeadlessRenderer 로컬 헤드리스 Chrome으로 페이지를 렌더링합니다.
//
// 렌더링 서비스 없이 개발 환경에서 동작을 확인할 때 사용합니다. 요청마다 새 브라우저 탭을 엽니다.
type HeadlessRenderer struct {
	allocOpts []chromedp.ExecAllocatorOption
	timeout   time.Duration
}

var _ PageFetcher = (*HeadlessRenderer)(nil)

func NewHeadlessRenderer(cfg config.RenderConfig) *HeadlessRenderer {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.UserAgent(defaultUserAgent),
		chromedp.Flag("lang", "ru-RU"),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	return &HeadlessRenderer{
		allocOpts: opts,
		timeout:   timeout,
	}
}

func (r *HeadlessRenderer) FetchPage(ctx context.Context, rawURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	start := time.Now()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		// 탭 컨텍스트의 시간 초과는 DeadlineExceeded로 분류된다.
		if tabCtx.Err() != nil && ctx.Err() == nil {
			err = apperrors.Wrap(tabCtx.Err(), apperrors.Timeout, "페이지 렌더링 시간이 초과되었습니다")
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"url":      redactRawURL(rawURL),
			"duration": time.Since(start).String(),
			"error":    err.Error(),
		}).Warn("헤드리스 브라우저 렌더링 실패")

		return "", newFetchError(rawURL, err)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url":      redactRawURL(rawURL),
		"duration": time.Since(start).String(),
		"bytes":    len(html),
	}).Debug("헤드리스 브라우저 렌더링 완료")

	return html, nil
}
