// Package alert 새로 관측된 가격을 이전 가격 및 목표 가격과 비교하여 가격 하락 알림을 발송합니다.
//
// 알림은 가격 기록(PricePoint) 단위로 최대 한 번만 발송됩니다. 발송 권한은 저장소의
// ClaimAlert로 먼저 획득하므로, 같은 관측에 대해 Dispatch가 재호출되어도 중복 발송되지 않습니다.
// 발송 실패는 기록만 하며 이미 저장된 가격 갱신에는 영향을 주지 않습니다.
package alert

import (
	"context"
	"errors"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/darkkaiser/price-tracker/internal/service/store"
	applog "github.com/darkkaiser/price-tracker/pkg/log"
)

const component = "alert"

// Repository Dispatcher가 사용하는 저장소 기능입니다.
type Repository interface {
	ClaimAlert(ctx context.Context, productID, pricePointID uint) (bool, error)
	ReleaseAlert(ctx context.Context, productID, pricePointID uint) error
	FindChannel(ctx context.Context, ownerID uint) (*store.NotificationChannel, error)
}

// Sender 알림 채널입니다. 구현체는 메시지를 비동기로 전달해야 합니다.
type Sender interface {
	Send(ctx context.Context, chatID int64, message string) error
}

// Outcome Dispatch 결과
type Outcome int

const (
	// OutcomeSkipped 정책상 알릴 대상이 아닙니다.
	OutcomeSkipped Outcome = iota

	// OutcomeNoChannel 사용자에게 연결된 알림 채널이 없습니다.
	OutcomeNoChannel

	// OutcomeDuplicate 같은 관측에 대한 알림이 이미 발송되었습니다.
	OutcomeDuplicate

	// OutcomeSent 알림을 발송 큐에 넣었습니다.
	OutcomeSent

	// OutcomeFailed 발송 권한은 획득했지만 발송 요청에 실패했습니다. 재발송하지 않습니다.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoChannel:
		return "no_channel"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher 가격 하락 알림 발송기
type Dispatcher struct {
	rule   Rule
	repo   Repository
	sender Sender
}

func NewDispatcher(rule Rule, repo Repository, sender Sender) *Dispatcher {
	if repo == nil {
		panic("Dispatcher: Repository는 필수입니다")
	}
	if sender == nil {
		panic("Dispatcher: Sender는 필수입니다")
	}

	return &Dispatcher{
		rule:   rule,
		repo:   repo,
		sender: sender,
	}
}

// Dispatch 저장이 끝난 관측 결과로 알림 여부를 결정하고 발송합니다.
//
// 에러는 기록 목적으로만 반환되며, 호출자는 이를 이유로 가격 갱신을 되돌려서는 안 됩니다.
func (d *Dispatcher) Dispatch(ctx context.Context, obs *store.Observation) (Outcome, error) {
	p := obs.Product
	current := obs.Point.Price

	if !d.rule.ShouldNotify(obs.PreviousPrice, current, p.TargetPrice) {
		return OutcomeSkipped, nil
	}

	fields := applog.Fields{
		"product_id":     p.ID,
		"owner_id":       p.OwnerID,
		"price_point_id": obs.Point.ID,
		"previous_price": *obs.PreviousPrice,
		"current_price":  current,
		"policy":         d.rule.Policy,
	}

	ch, err := d.repo.FindChannel(ctx, p.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrChannelNotFound) {
			applog.WithComponentAndFields(component, fields).Info("알림 채널이 연결되지 않아 가격 하락 알림을 건너뜁니다")
			return OutcomeNoChannel, nil
		}
		return OutcomeSkipped, err
	}

	claimed, err := d.repo.ClaimAlert(ctx, p.ID, obs.Point.ID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if !claimed {
		applog.WithComponentAndFields(component, fields).Debug("이미 발송된 가격 하락 알림입니다")
		return OutcomeDuplicate, nil
	}

	msg := RenderMessage(p.Name, p.Store.DisplayName(), p.URL, *obs.PreviousPrice, current)
	if err := d.sender.Send(ctx, ch.ChatID, msg); err != nil {
		applog.WithComponentAndFields(component, fields).WithError(err).Warn("가격 하락 알림 발송 요청에 실패했습니다")

		// 큐에 들어가지 못한 알림은 선점을 해제하여 재처리될 수 있게 한다.
		if relErr := d.repo.ReleaseAlert(context.WithoutCancel(ctx), p.ID, obs.Point.ID); relErr != nil {
			applog.WithComponentAndFields(component, fields).WithError(relErr).Error("가격 하락 알림 선점 해제에 실패했습니다")
		}

		return OutcomeFailed, apperrors.Wrap(err, apperrors.ExecutionFailed, "가격 하락 알림 발송에 실패했습니다")
	}

	applog.WithComponentAndFields(component, fields).Info("가격 하락 알림을 발송했습니다")

	return OutcomeSent, nil
}
