package tracker

import apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"

var (
	// ErrCycleInProgress 이전 폴링 사이클이 아직 실행 중입니다.
	ErrCycleInProgress = apperrors.New(apperrors.Conflict, "가격 확인 사이클이 이미 실행 중입니다")

	// ErrNotRunning 트래커가 시작되지 않았거나 이미 종료되었습니다.
	ErrNotRunning = apperrors.New(apperrors.Unavailable, "가격 트래커가 실행 중이 아닙니다")

	// ErrCheckQueueFull 개별 상품 확인 요청 대기열이 가득 찼습니다.
	ErrCheckQueueFull = apperrors.New(apperrors.Unavailable, "상품 가격 확인 대기열이 가득 찼습니다")
)
