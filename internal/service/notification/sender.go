package notification

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	applog "github.com/darkkaiser/price-tracker/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendMessage 메시지를 messageMaxLength 이하의 조각으로 나누어 순서대로 발송합니다.
//
// 가능한 한 줄 단위로 나누고, 한 줄이 제한보다 길면 UTF-8 문자 경계에서 자릅니다.
// 중간 조각의 발송이 실패하면 나머지는 보내지 않습니다.
func (s *Service) sendMessage(ctx context.Context, chatID int64, message string) {
	for _, chunk := range splitMessage(message, messageMaxLength) {
		if ctx.Err() != nil {
			return
		}
		if err := s.sendChunk(ctx, chatID, chunk, true); err != nil {
			return
		}
	}
}

func splitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var chunks []string
	var sb strings.Builder

	flush := func() {
		if sb.Len() > 0 {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
	}

	for line := range strings.SplitSeq(message, "\n") {
		needed := len(line)
		if sb.Len() > 0 {
			needed++
		}

		if sb.Len()+needed > limit {
			flush()

			for len(line) > limit {
				var chunk string
				chunk, line = safeSplit(line, limit)
				chunks = append(chunks, chunk)
			}
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	flush()

	return chunks
}

// safeSplit 문자열을 limit 바이트 이내의 UTF-8 문자 경계에서 나눕니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	i := limit
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	if i == 0 {
		return s[:limit], s[limit:]
	}

	return s[:i], s[i:]
}

// sendChunk 메시지 한 조각을 발송합니다.
//
//   - 속도 제한(rate.Limiter)을 통과한 뒤 발송한다.
//   - 5xx, 429, 네트워크 오류는 최대 maxSendAttempts회까지 재시도한다. 429는 retry_after를 따른다.
//   - HTML 파싱 오류(400)는 PlainText로 한 번 더 보낸다.
//   - 그 외 4xx는 재시도하지 않는다.
func (s *Service) sendChunk(ctx context.Context, chatID int64, message string, useHTML bool) error {
	msg := tgbotapi.NewMessage(chatID, message)
	msg.DisableWebPagePreview = true
	if useHTML {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := s.client.Send(msg)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id":        chatID,
				"attempt":        attempt,
				"mode":           formatParseMode(msg.ParseMode),
				"message_length": len(message),
			}).Info("텔레그램 메시지 발송 성공")
			return nil
		}

		lastErr = err
		code, retryAfter := parseTelegramError(err)

		fields := applog.Fields{
			"chat_id": chatID,
			"attempt": attempt,
			"code":    code,
			"mode":    formatParseMode(msg.ParseMode),
			"error":   err.Error(),
		}

		if useHTML && code == http.StatusBadRequest {
			applog.WithComponentAndFields(component, fields).Warn("HTML 파싱 오류로 PlainText 모드로 다시 발송합니다")
			return s.sendChunk(ctx, chatID, message, false)
		}

		if !shouldRetry(code) {
			applog.WithComponentAndFields(component, fields).Error("재시도할 수 없는 텔레그램 API 오류입니다")
			return err
		}

		if attempt == maxSendAttempts {
			break
		}

		applog.WithComponentAndFields(component, fields).Warn("텔레그램 메시지 발송 실패, 재시도합니다")

		timer := time.NewTimer(s.delayForRetry(retryAfter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"chat_id":        chatID,
		"max_attempts":   maxSendAttempts,
		"message_length": len(message),
		"error":          lastErr.Error(),
	}).Error("텔레그램 메시지 발송 최종 실패")

	return lastErr
}

// shouldRetry 4xx는 429를 제외하고 재시도하지 않는다. 코드가 없는 네트워크 오류는 재시도한다.
func shouldRetry(code int) bool {
	if code >= 400 && code < 500 {
		return code == http.StatusTooManyRequests
	}
	return true
}

func (s *Service) delayForRetry(retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	return s.retryDelay
}

func formatParseMode(mode string) string {
	if mode == tgbotapi.ModeHTML {
		return "HTML"
	}
	return "PlainText"
}

// parseTelegramError 텔레그램 API 오류에서 상태 코드와 retry_after(초)를 꺼냅니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.RetryAfter
	}

	var apiErrVal tgbotapi.Error
	if errors.As(err, &apiErrVal) {
		return apiErrVal.Code, apiErrVal.RetryAfter
	}

	return 0, 0
}
