package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"golang.org/x/sync/errgroup"
)

// result 상품 하나를 확인한 결과
type result int

const (
	resultUpdated result = iota
	resultSkipped
	resultFailed
)

func (r result) String() string {
	switch r {
	case resultUpdated:
		return "updated"
	case resultSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Summary 폴링 사이클 한 번의 결과
type Summary struct {
	Total    int
	Updated  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// runCycle 전체 상품 목록을 불러와 제한된 동시성으로 확인합니다.
//
// 상품 목록 조회에 실패하면 사이클을 중단하고 에러를 반환합니다. 개별 상품의 실패는 집계만 합니다.
func (t *Tracker) runCycle(ctx context.Context) (Summary, error) {
	startedAt := time.Now()

	products, err := t.repo.ListAllTrackedProducts(ctx)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("추적 상품 목록을 불러오지 못해 가격 확인 사이클을 중단합니다")
		return Summary{}, apperrors.Wrap(err, apperrors.System, "추적 상품 목록 조회에 실패했습니다")
	}

	var updated, skipped, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(t.cfg.Concurrency)

	for i, p := range products {
		if ctx.Err() != nil {
			// 종료 중이면 남은 상품은 다음 사이클로 미룬다.
			skipped.Add(int64(len(products) - i))
			break
		}

		g.Go(func() error {
			switch t.checkProduct(ctx, p) {
			case resultUpdated:
				updated.Add(1)
			case resultSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		Total:    len(products),
		Updated:  int(updated.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(startedAt),
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"total":       summary.Total,
		"updated":     summary.Updated,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"duration_ms": summary.Duration.Milliseconds(),
	}).Info("가격 확인 사이클 완료")

	return summary, nil
}

// checkProduct 상품 하나의 가격을 가져와 저장하고 알림을 처리합니다.
func (t *Tracker) checkProduct(ctx context.Context, p store.TrackedProduct) result {
	fields := applog.Fields{
		"product_id": p.ID,
		"store":      p.Store,
	}

	if !t.parser.Supports(p.Store) {
		applog.WithComponentAndFields(component, fields).Debug("아직 지원하지 않는 스토어의 상품이므로 건너뜁니다")
		return resultSkipped
	}

	content, err := t.fetcher.FetchPage(ctx, p.URL)
	if err != nil {
		if ctx.Err() != nil {
			return resultSkipped
		}
		fields["error"] = err
		applog.WithComponentAndFields(component, fields).Warn("상품 페이지를 가져오지 못했습니다")
		return resultFailed
	}

	price, err := t.parser.Parse(p.Store, content)
	if err != nil {
		fields["error"] = err
		applog.WithComponentAndFields(component, fields).Warn("상품 페이지에서 가격을 찾지 못했습니다")
		return resultFailed
	}

	// 종료 중에 끝난 결과는 저장하지 않는다.
	if ctx.Err() != nil {
		return resultSkipped
	}

	t.productLocks.Lock(p.ID)
	obs, err := t.repo.RecordObservation(ctx, p.ID, p.URL, price, t.now())
	t.productLocks.Unlock(p.ID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			applog.WithComponentAndFields(component, fields).Info("확인 중에 삭제된 상품입니다")
			return resultSkipped
		}
		if errors.Is(err, store.ErrProductChanged) {
			applog.WithComponentAndFields(component, fields).Info("확인 중에 URL이 변경된 상품입니다. 다음 확인에서 새 URL의 가격을 가져옵니다")
			return resultSkipped
		}
		if ctx.Err() != nil {
			return resultSkipped
		}
		fields["error"] = err
		applog.WithComponentAndFields(component, fields).Error("가격 기록 저장에 실패했습니다")
		return resultFailed
	}

	fields["price"] = price
	if obs.PreviousPrice != nil {
		fields["previous_price"] = *obs.PreviousPrice
	}

	// 이미 저장된 가격에 대한 알림이므로 종료 신호와 무관하게 처리한다.
	outcome, err := t.notifier.Dispatch(context.WithoutCancel(ctx), obs)
	fields["alert"] = outcome
	if err != nil {
		fields["error"] = err
		applog.WithComponentAndFields(component, fields).Error("가격 하락 알림 처리에 실패했습니다")
	} else {
		applog.WithComponentAndFields(component, fields).Info("상품 가격 갱신 완료")
	}

	return resultUpdated
}
