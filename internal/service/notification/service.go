// Package notification 가격 하락 알림을 텔레그램으로 비동기 발송합니다.
//
// Send는 메시지를 큐에 넣기만 하고 즉시 반환하며, 별도의 워커 고루틴이 속도 제한을 지키면서
// 순서대로 발송합니다. 봇 토큰이 설정되지 않은 경우 메시지는 로그로만 남습니다.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"github.com/darkkaiser/price-tracker/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Service 텔레그램 알림 발송 서비스
type Service struct {
	client client // nil이면 로그로만 남긴다

	limiter    *rate.Limiter
	retryDelay time.Duration

	queue chan *request

	// closed 종료 이후의 Send를 거부하기 위한 플래그. Send와 워커의 Drain 시작이 겹치지 않도록 mu로 보호한다.
	closed bool
	mu     sync.Mutex

	running   bool
	runningMu sync.Mutex
}

// NewService 설정값으로 알림 서비스를 생성합니다. 봇 토큰이 없으면 로그 전용으로 동작합니다.
func NewService(cfg config.TelegramConfig) (*Service, error) {
	if !cfg.Enabled() {
		applog.WithComponent(component).Warn("텔레그램 봇 토큰이 설정되지 않아 가격 하락 알림은 로그로만 남습니다")
		return newService(nil, cfg, defaultRetryDelay), nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다 (token: %s)", strutil.Mask(cfg.BotToken))
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot_username": bot.Self.UserName,
	}).Info("텔레그램 봇 연결 완료")

	return newService(bot, cfg, defaultRetryDelay), nil
}

func newService(c client, cfg config.TelegramConfig, retryDelay time.Duration) *Service {
	queueSize := max(cfg.QueueSize, 1)

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Service{
		client:     c,
		limiter:    rate.NewLimiter(limit, max(cfg.RateBurst, 1)),
		retryDelay: retryDelay,
		queue:      make(chan *request, queueSize),
	}
}

// Start 발송 워커를 시작합니다. serviceStopCtx가 취소되면 큐에 남은 메시지를 처리한 뒤 종료합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("알림 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("알림 서비스가 이미 시작됨!!!")
		return nil
	}

	s.running = true

	go s.run(serviceStopCtx, serviceStopWG)

	applog.WithComponent(component).Info("알림 서비스 시작됨")

	return nil
}

// Send 메시지를 발송 큐에 넣습니다. 실제 발송 결과는 기다리지 않습니다.
//
// 큐가 가득 차면 메시지를 버리고 ErrQueueFull을 반환합니다.
func (s *Service) Send(ctx context.Context, chatID int64, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	select {
	case s.queue <- &request{chatID: chatID, message: message}:
		return nil
	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id":        chatID,
			"queue_size":     cap(s.queue),
			"message_length": len(message),
		}).Warn("알림 발송 대기열이 가득 차서 메시지를 버립니다")
		return ErrQueueFull
	}
}

func (s *Service) run(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	for {
		select {
		case req := <-s.queue:
			// 종료 신호가 와도 이미 꺼낸 메시지는 끝까지 발송한다.
			s.process(context.WithoutCancel(serviceStopCtx), req)

		case <-serviceStopCtx.Done():
			applog.WithComponent(component).Info("알림 서비스 중지중...")

			s.drain()

			s.runningMu.Lock()
			s.running = false
			s.runningMu.Unlock()

			applog.WithComponent(component).Info("알림 서비스 중지됨")
			return
		}
	}
}

// drain 더 이상 메시지를 받지 않도록 한 뒤, 큐에 남은 메시지를 제한 시간 안에서 발송합니다.
func (s *Service) drain() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for {
		select {
		case req := <-s.queue:
			if ctx.Err() != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"remaining": len(s.queue) + 1,
				}).Warn("종료 제한 시간을 초과하여 남은 알림을 버립니다")
				return
			}
			s.process(ctx, req)

		default:
			return
		}
	}
}

// process 메시지 한 건을 발송합니다. 개별 메시지의 패닉이 워커를 멈추지 않도록 격리합니다.
func (s *Service) process(ctx context.Context, req *request) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": req.chatID,
				"panic":   r,
			}).Error("알림 발송 중 패닉이 발생하여 해당 메시지를 건너뜁니다")
		}
	}()

	if s.client == nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id": req.chatID,
			"message": req.message,
		}).Info("텔레그램 미설정: 알림 메시지를 로그로 남깁니다")
		return
	}

	s.sendMessage(ctx, req.chatID, req.message)
}
