package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/darkkaiser/price-tracker/internal/service/api/constants"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// maxIPRateLimiters 메모리에 유지하는 IP별 limiter 최대 개수. 초과하면 가장 오래 요청이 없던 IP를 제거한다.
const maxIPRateLimiters = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter

	limit rate.Limit
	burst int

	now func() time.Time
}

func newIPRateLimiter(requestsPerSecond, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// allow ip의 토큰을 하나 소비합니다. 거부되면 다음 토큰까지 남은 시간을 함께 반환합니다.
func (i *ipRateLimiter) allow(ip string) (bool, time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	cl := i.getLimiter(ip)
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// getLimiter i.mu를 잡은 상태에서 호출해야 합니다.
func (i *ipRateLimiter) getLimiter(ip string) *clientLimiter {
	if cl, ok := i.limiters[ip]; ok {
		return cl
	}

	if len(i.limiters) >= maxIPRateLimiters {
		i.evictOldest()
	}

	cl := &clientLimiter{limiter: rate.NewLimiter(i.limit, i.burst), lastSeen: i.now()}
	i.limiters[ip] = cl
	return cl
}

func (i *ipRateLimiter) evictOldest() {
	var oldestIP string
	var oldest time.Time
	for ip, cl := range i.limiters {
		if oldestIP == "" || cl.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, cl.lastSeen
		}
	}
	delete(i.limiters, oldestIP)
}

// RateLimit IP별 요청 빈도를 제한합니다. 초과하면 429와 Retry-After 헤더(초)를 반환합니다.
func RateLimit(requestsPerSecond, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		panic(fmt.Sprintf("RateLimit: requestsPerSecond는 양수여야 합니다 (현재값: %d)", requestsPerSecond))
	}
	if burst <= 0 {
		panic(fmt.Sprintf("RateLimit: burst는 양수여야 합니다 (현재값: %d)", burst))
	}

	limiter := newIPRateLimiter(requestsPerSecond, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			ok, wait := limiter.allow(ip)
			if !ok {
				retryAfter := max(int(wait.Seconds()+0.999), 1)

				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"remote_ip":   ip,
					"path":        c.Request().URL.Path,
					"method":      c.Request().Method,
					"retry_after": retryAfter,
				}).Warn("요청 차단: 속도 제한을 초과하였습니다")

				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return ErrRateLimitExceeded
			}

			return next(c)
		}
	}
}
