// Package tracker 추적 중인 상품의 가격을 주기적으로 확인합니다.
//
// 한 번의 사이클은 전체 상품을 불러온 뒤 상품마다 Fetch → Parse → 저장 → 알림 순서로 처리합니다.
// 상품 단위 작업은 제한된 개수의 고루틴에서 동시에 실행되며, 같은 상품에 대한 저장은 KeyedMutex로 직렬화됩니다.
// 한 상품의 실패는 사이클 전체를 중단시키지 않습니다.
package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	"github.com/darkkaiser/price-tracker/internal/service/alert"
	"github.com/darkkaiser/price-tracker/internal/service/fetcher"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	"github.com/darkkaiser/price-tracker/pkg/concurrency"
	"github.com/darkkaiser/price-tracker/pkg/cronx"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/robfig/cron/v3"
)

const component = "tracker"

// checkQueueSize 개별 상품 확인(상품 등록 직후의 첫 확인) 요청 대기열 크기
const checkQueueSize = 64

// Repository 트래커가 사용하는 저장소 기능입니다.
type Repository interface {
	ListAllTrackedProducts(ctx context.Context) ([]store.TrackedProduct, error)
	RecordObservation(ctx context.Context, productID uint, fetchedURL string, price float64, observedAt time.Time) (*store.Observation, error)
}

// PriceParser 스토어별 가격 추출기입니다. *storefront.Registry가 구현합니다.
type PriceParser interface {
	Supports(id storefront.StoreID) bool
	Parse(id storefront.StoreID, content string) (float64, error)
}

// Notifier 저장이 끝난 관측 결과로 가격 하락 알림을 처리합니다. *alert.Dispatcher가 구현합니다.
type Notifier interface {
	Dispatch(ctx context.Context, obs *store.Observation) (alert.Outcome, error)
}

// Tracker 가격 폴링 스케줄러
type Tracker struct {
	cfg config.SchedulerConfig

	repo     Repository
	fetcher  fetcher.PageFetcher
	parser   PriceParser
	notifier Notifier

	// productLocks 같은 상품의 가격 갱신을 직렬화한다. 페이지를 가져오는 동안에는 잡지 않는다.
	productLocks *concurrency.KeyedMutex[uint]

	// inCycle cron 실행과 TriggerNow가 겹치지 않도록 하는 플래그
	inCycle atomic.Bool

	checks chan store.TrackedProduct

	now func() time.Time

	cron *cron.Cron

	// serviceCtx 실행 중인 서비스의 생명주기 컨텍스트. TriggerNow로 시작된 사이클도 이 컨텍스트를 따른다.
	serviceCtx context.Context
	background sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Tracker를 생성합니다.
func NewService(cfg config.SchedulerConfig, repo Repository, f fetcher.PageFetcher, parser PriceParser, notifier Notifier) *Tracker {
	if repo == nil {
		panic("Tracker: Repository는 필수입니다")
	}
	if f == nil {
		panic("Tracker: PageFetcher는 필수입니다")
	}
	if parser == nil {
		panic("Tracker: PriceParser는 필수입니다")
	}
	if notifier == nil {
		panic("Tracker: Notifier는 필수입니다")
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return &Tracker{
		cfg: cfg,

		repo:     repo,
		fetcher:  f,
		parser:   parser,
		notifier: notifier,

		productLocks: concurrency.NewKeyedMutex[uint](),

		checks: make(chan store.TrackedProduct, checkQueueSize),

		now: time.Now,
	}
}

// Start cron 엔진에 폴링 사이클을 등록하고 개별 상품 확인 워커를 시작합니다.
//
// serviceStopCtx가 취소되면 새 작업을 받지 않고, 실행 중인 사이클이 정리될 때까지 기다린 뒤 serviceStopWG.Done()을 호출합니다.
func (t *Tracker) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	t.runningMu.Lock()
	defer t.runningMu.Unlock()

	applog.WithComponent(component).Info("가격 트래커 시작중...")

	if t.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("가격 트래커가 이미 시작됨!!!")
		return nil
	}

	cronLogger := cron.VerbosePrintfLogger(applog.StandardLogger())
	c := cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	if _, err := c.AddFunc(t.cfg.TimeSpec, func() { t.runScheduledCycle(serviceStopCtx) }); err != nil {
		defer serviceStopWG.Done()
		return err
	}

	t.cron = c
	t.serviceCtx = serviceStopCtx
	t.running = true

	t.cron.Start()

	t.background.Add(1)
	go t.checkWorker(serviceStopCtx)

	if t.cfg.RunOnStart {
		t.background.Add(1)
		go func() {
			defer t.background.Done()
			t.runScheduledCycle(serviceStopCtx)
		}()
	}

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		t.stop()
	}()

	applog.WithComponentAndFields(component, applog.Fields{
		"time_spec":    t.cfg.TimeSpec,
		"concurrency":  t.cfg.Concurrency,
		"run_on_start": t.cfg.RunOnStart,
	}).Info("가격 트래커 시작됨")

	return nil
}

func (t *Tracker) stop() {
	applog.WithComponent(component).Info("가격 트래커 중지중...")

	// cron.Stop은 실행 중인 작업이 끝날 때까지 기다리는 컨텍스트를 반환한다.
	<-t.cron.Stop().Done()

	t.runningMu.Lock()
	t.running = false
	t.runningMu.Unlock()

	t.background.Wait()

	applog.WithComponent(component).Info("가격 트래커 중지됨")
}

// TriggerNow 폴링 사이클을 즉시 백그라운드에서 시작합니다.
//
// 이미 사이클이 실행 중이면 ErrCycleInProgress를 반환합니다.
func (t *Tracker) TriggerNow() error {
	t.runningMu.Lock()
	defer t.runningMu.Unlock()

	if !t.running {
		return ErrNotRunning
	}
	if !t.inCycle.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}

	ctx := t.serviceCtx

	t.background.Add(1)
	go func() {
		defer t.background.Done()
		defer t.inCycle.Store(false)

		applog.WithComponent(component).Info("수동 요청으로 가격 확인 사이클을 시작합니다")
		t.runCycle(ctx)
	}()

	return nil
}

// Submit 상품 하나의 가격 확인을 요청합니다. 결과를 기다리지 않습니다.
func (t *Tracker) Submit(p store.TrackedProduct) error {
	t.runningMu.Lock()
	defer t.runningMu.Unlock()

	if !t.running {
		return ErrNotRunning
	}

	select {
	case t.checks <- p:
		return nil
	default:
		return ErrCheckQueueFull
	}
}

func (t *Tracker) checkWorker(ctx context.Context) {
	defer t.background.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case p := <-t.checks:
			res := t.checkProduct(ctx, p)
			applog.WithComponentAndFields(component, applog.Fields{
				"product_id": p.ID,
				"result":     res,
			}).Debug("개별 상품 가격 확인 완료")
		}
	}
}

// runScheduledCycle 예약된 실행입니다. 다른 사이클이 실행 중이면 건너뜁니다.
func (t *Tracker) runScheduledCycle(ctx context.Context) {
	if !t.inCycle.CompareAndSwap(false, true) {
		applog.WithComponent(component).Warn("이전 가격 확인 사이클이 아직 실행 중이므로 이번 실행은 건너뜁니다")
		return
	}
	defer t.inCycle.Store(false)

	t.runCycle(ctx)
}

// RunCycle 폴링 사이클을 한 번 실행하고 결과를 반환합니다. 다른 사이클이 실행 중이면 ErrCycleInProgress를 반환합니다.
func (t *Tracker) RunCycle(ctx context.Context) (Summary, error) {
	if !t.inCycle.CompareAndSwap(false, true) {
		return Summary{}, ErrCycleInProgress
	}
	defer t.inCycle.Store(false)

	return t.runCycle(ctx)
}
