package alert

import (
	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
)

// Policy 가격 하락 알림을 보낼 조건입니다.
type Policy string

const (
	// PolicyAnyDrop 이전 가격보다 낮아지면 알립니다. 목표 가격은 무시합니다.
	PolicyAnyDrop Policy = "any_drop"

	// PolicyTargetFloor 이전 가격보다 낮아졌고, 목표 가격이 설정된 경우 그 이하일 때 알립니다.
	PolicyTargetFloor Policy = "target_floor"

	// PolicyTargetOnly 목표 가격이 설정되어 있고 그 이하로 떨어졌을 때만 알립니다.
	PolicyTargetOnly Policy = "target_only"
)

// Rule 알림 정책과 최소 하락 폭입니다.
type Rule struct {
	Policy Policy

	// 이전 가격 대비 최소 하락률(%)과 최소 하락 금액. 0이면 제한이 없습니다.
	MinDropPercent float64
	MinDropAmount  float64
}

// NewRule 설정값으로 Rule을 생성합니다. 정책이 비어 있으면 PolicyTargetFloor입니다.
func NewRule(cfg config.AlertConfig) (Rule, error) {
	p := Policy(cfg.Policy)
	switch p {
	case "":
		p = PolicyTargetFloor
	case PolicyAnyDrop, PolicyTargetFloor, PolicyTargetOnly:
	default:
		return Rule{}, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 알림 정책입니다: %s", cfg.Policy)
	}

	return Rule{
		Policy:         p,
		MinDropPercent: cfg.MinDropPercent,
		MinDropAmount:  cfg.MinDropAmount,
	}, nil
}

// ShouldNotify 이전 가격, 새 가격, 목표 가격으로 알림 여부를 결정합니다.
//
// 이전 가격이 없으면(첫 관측) 비교 대상이 없으므로 알리지 않습니다.
func (r Rule) ShouldNotify(previous *float64, current float64, target *float64) bool {
	if previous == nil || *previous <= 0 || current >= *previous {
		return false
	}

	drop := *previous - current
	if r.MinDropAmount > 0 && drop < r.MinDropAmount {
		return false
	}
	if r.MinDropPercent > 0 && drop*100/(*previous) < r.MinDropPercent {
		return false
	}

	switch r.Policy {
	case PolicyAnyDrop:
		return true
	case PolicyTargetOnly:
		return target != nil && current <= *target
	default:
		return target == nil || current <= *target
	}
}
