package notification

import (
	"time"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const component = "notification"

const (
	// messageMaxLength 텔레그램 메시지 한 건의 최대 바이트 수.
	// 공식 제한(4096)보다 작게 잡아 HTML 태그 오버헤드를 흡수한다.
	messageMaxLength = 3900

	// maxSendAttempts 메시지 한 건당 최대 발송 시도 횟수
	maxSendAttempts = 3

	defaultRetryDelay = 1 * time.Second

	// shutdownTimeout 종료 시 큐에 남은 메시지를 처리하는 최대 시간
	shutdownTimeout = 30 * time.Second
)

var (
	// ErrQueueFull 발송 큐가 가득 차서 메시지를 버렸습니다.
	ErrQueueFull = apperrors.New(apperrors.Unavailable, "알림 발송 대기열이 가득 찼습니다")

	// ErrClosed 서비스가 종료되어 더 이상 메시지를 받지 않습니다.
	ErrClosed = apperrors.New(apperrors.Unavailable, "알림 발송 서비스가 종료되었습니다")
)

// client 텔레그램 봇 API 중 발송에 필요한 부분입니다. *tgbotapi.BotAPI가 구현합니다.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// request 발송 큐에 쌓이는 메시지
type request struct {
	chatID  int64
	message string
}
