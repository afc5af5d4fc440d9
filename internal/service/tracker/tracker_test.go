package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	"github.com/darkkaiser/price-tracker/internal/service/alert"
	"github.com/darkkaiser/price-tracker/internal/service/fetcher"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	"github.com/darkkaiser/price-tracker/internal/service/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const pricePage = `<html><body><div class="total-prod-price">12 990 ₽</div></body></html>`

// =============================================================================
// Fakes
// =============================================================================

type fakeRepo struct {
	mu sync.Mutex

	products []store.TrackedProduct
	listErr  error
	missing  map[uint]bool

	nextPointID uint
	current     map[uint]*float64
	recorded    []uint
}

func newFakeRepo(products ...store.TrackedProduct) *fakeRepo {
	return &fakeRepo{
		products: products,
		missing:  make(map[uint]bool),
		current:  make(map[uint]*float64),
	}
}

func (r *fakeRepo) ListAllTrackedProducts(context.Context) ([]store.TrackedProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]store.TrackedProduct(nil), r.products...), nil
}

func (r *fakeRepo) RecordObservation(_ context.Context, productID uint, fetchedURL string, price float64, observedAt time.Time) (*store.Observation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.missing[productID] {
		return nil, store.ErrProductNotFound
	}

	var product store.TrackedProduct
	for _, p := range r.products {
		if p.ID == productID {
			product = p
		}
	}
	if product.URL != fetchedURL {
		return nil, store.ErrProductChanged
	}

	prev := r.current[productID]
	r.current[productID] = &price
	r.recorded = append(r.recorded, productID)
	r.nextPointID++

	product.CurrentPrice = &price
	return &store.Observation{
		Product:       product,
		PreviousPrice: prev,
		Point:         store.PricePoint{ID: r.nextPointID, ProductID: productID, Price: price, ObservedAt: observedAt},
	}, nil
}

func (r *fakeRepo) recordedIDs() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.recorded...)
}

type fakeNotifier struct {
	mu           sync.Mutex
	observations []*store.Observation
	notified     chan uint
	err          error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan uint, 16)}
}

func (n *fakeNotifier) Dispatch(_ context.Context, obs *store.Observation) (alert.Outcome, error) {
	n.mu.Lock()
	n.observations = append(n.observations, obs)
	n.mu.Unlock()

	n.notified <- obs.Product.ID
	if n.err != nil {
		return alert.OutcomeFailed, n.err
	}
	return alert.OutcomeSkipped, nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.observations)
}

func staticPage(content string) fetcher.PageFetcher {
	return fetcher.PageFetcherFunc(func(context.Context, string) (string, error) {
		return content, nil
	})
}

func product(id uint, s storefront.StoreID) store.TrackedProduct {
	return store.TrackedProduct{ID: id, OwnerID: 1, Name: "item", URL: "https://example/" + string(s), Store: s}
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{TimeSpec: "@every 1h", Concurrency: 2}
}

func waitNotified(t *testing.T, n *fakeNotifier) uint {
	t.Helper()

	select {
	case id := <-n.notified:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("알림 처리가 호출되지 않았습니다")
		return 0
	}
}

// =============================================================================
// 생성자
// =============================================================================

func TestNewService_Panics(t *testing.T) {
	repo := newFakeRepo()
	f := staticPage("")
	reg := storefront.NewDefaultRegistry()
	n := newFakeNotifier()

	assert.PanicsWithValue(t, "Tracker: Repository는 필수입니다", func() { NewService(testConfig(), nil, f, reg, n) })
	assert.PanicsWithValue(t, "Tracker: PageFetcher는 필수입니다", func() { NewService(testConfig(), repo, nil, reg, n) })
	assert.PanicsWithValue(t, "Tracker: PriceParser는 필수입니다", func() { NewService(testConfig(), repo, f, nil, n) })
	assert.PanicsWithValue(t, "Tracker: Notifier는 필수입니다", func() { NewService(testConfig(), repo, f, reg, nil) })
}

func TestNewService_MinimumConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.Concurrency = 0

	tr := NewService(cfg, newFakeRepo(), staticPage(""), storefront.NewDefaultRegistry(), newFakeNotifier())

	assert.Equal(t, 1, tr.cfg.Concurrency)
}

// =============================================================================
// 사이클
// =============================================================================

func TestRunCycle_MixedResults(t *testing.T) {
	repo := newFakeRepo(
		product(1, storefront.BigGeek),
		product(2, storefront.Ozon), // 자리표시자 파서
		product(3, storefront.BigGeek),
	)

	// 3번 상품은 페이지를 가져오지 못한다.
	repo.products[2].URL = "https://example/broken"
	f := fetcher.PageFetcherFunc(func(_ context.Context, rawURL string) (string, error) {
		if rawURL == "https://example/broken" {
			return "", errors.New("connection refused")
		}
		return pricePage, nil
	})

	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, f, storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	assert.Equal(t, []uint{1}, repo.recordedIDs())
	require.Equal(t, 1, n.count())
	assert.Equal(t, 12990.0, n.observations[0].Point.Price)
	assert.Nil(t, n.observations[0].PreviousPrice)
}

func TestRunCycle_PreviousPricePassedToNotifier(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	_, err := tr.RunCycle(context.Background())
	require.NoError(t, err)
	_, err = tr.RunCycle(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, n.count())
	require.NotNil(t, n.observations[1].PreviousPrice)
	assert.Equal(t, 12990.0, *n.observations[1].PreviousPrice)
}

func TestRunCycle_ParseFailureIsCounted(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage("<html><body>품절</body></html>"), storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, repo.recordedIDs())
	assert.Zero(t, n.count())
}

func TestRunCycle_ListFailureAbortsCycle(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	repo.listErr = errors.New("db down")
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	_, err := tr.RunCycle(context.Background())

	require.Error(t, err)
	assert.Zero(t, n.count())
}

func TestRunCycle_DeletedProductIsSkipped(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	repo.missing[1] = true
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, n.count())
}

func TestRunCycle_NotifierErrorDoesNotFailProduct(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	n := newFakeNotifier()
	n.err = errors.New("telegram down")
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []uint{1}, repo.recordedIDs())
}

func TestRunCycle_CanceledContextCommitsNothing(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek), product(2, storefront.BigGeek))
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := tr.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Empty(t, repo.recordedIDs())
}

func TestRunCycle_CancelDuringFetchDiscardsResult(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	n := newFakeNotifier()

	ctx, cancel := context.WithCancel(context.Background())
	f := fetcher.PageFetcherFunc(func(context.Context, string) (string, error) {
		// 페이지를 받은 직후 종료 신호가 도착한 상황
		cancel()
		return pricePage, nil
	})
	tr := NewService(testConfig(), repo, f, storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, repo.recordedIDs())
}

func TestRunCycle_RejectsOverlap(t *testing.T) {
	tr := NewService(testConfig(), newFakeRepo(), staticPage(""), storefront.NewDefaultRegistry(), newFakeNotifier())
	tr.inCycle.Store(true)

	_, err := tr.RunCycle(context.Background())

	assert.ErrorIs(t, err, ErrCycleInProgress)
}

func TestRunCycle_BoundedConcurrency(t *testing.T) {
	var products []store.TrackedProduct
	for i := 1; i <= 8; i++ {
		products = append(products, product(uint(i), storefront.BigGeek))
	}
	repo := newFakeRepo(products...)

	var inFlight, peak atomic.Int32
	f := fetcher.PageFetcherFunc(func(context.Context, string) (string, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return pricePage, nil
	})

	n := newFakeNotifier()
	n.notified = make(chan uint, len(products))
	tr := NewService(testConfig(), repo, f, storefront.NewDefaultRegistry(), n)

	summary, err := tr.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, summary.Updated)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

// =============================================================================
// 서비스 생명주기
// =============================================================================

func TestTracker_SubmitAndTrigger(t *testing.T) {
	repo := newFakeRepo(product(1, storefront.BigGeek))
	n := newFakeNotifier()
	tr := NewService(testConfig(), repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	assert.ErrorIs(t, tr.Submit(repo.products[0]), ErrNotRunning)
	assert.ErrorIs(t, tr.TriggerNow(), ErrNotRunning)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, tr.Start(ctx, wg))

	require.NoError(t, tr.Submit(repo.products[0]))
	assert.Equal(t, uint(1), waitNotified(t, n))

	require.NoError(t, tr.TriggerNow())
	assert.Equal(t, uint(1), waitNotified(t, n))

	cancel()
	wg.Wait()

	assert.Len(t, repo.recordedIDs(), 2)
	assert.ErrorIs(t, tr.Submit(repo.products[0]), ErrNotRunning)
}

func TestTracker_RunOnStart(t *testing.T) {
	repo := newFakeRepo(product(7, storefront.BigGeek))
	n := newFakeNotifier()
	cfg := testConfig()
	cfg.RunOnStart = true
	tr := NewService(cfg, repo, staticPage(pricePage), storefront.NewDefaultRegistry(), n)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, tr.Start(ctx, wg))

	assert.Equal(t, uint(7), waitNotified(t, n))

	cancel()
	wg.Wait()
}

func TestTracker_InvalidTimeSpec(t *testing.T) {
	cfg := testConfig()
	cfg.TimeSpec = "every hour"
	tr := NewService(cfg, newFakeRepo(), staticPage(""), storefront.NewDefaultRegistry(), newFakeNotifier())

	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.Error(t, tr.Start(context.Background(), wg))
	wg.Wait()
}

func TestTracker_StartTwice(t *testing.T) {
	tr := NewService(testConfig(), newFakeRepo(), staticPage(""), storefront.NewDefaultRegistry(), newFakeNotifier())

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(2)
	require.NoError(t, tr.Start(ctx, wg))
	require.NoError(t, tr.Start(ctx, wg))

	cancel()
	wg.Wait()
}
