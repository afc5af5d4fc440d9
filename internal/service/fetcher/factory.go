package fetcher

import (
	"github.com/darkkaiser/price-tracker/internal/config"
	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
)

// New 설정된 렌더링 방식에 맞는 PageFetcher를 생성합니다.
func New(cfg config.RenderConfig) (PageFetcher, error) {
	switch cfg.Kind {
	case config.RenderKindProxy, "":
		if cfg.Endpoint == "" || cfg.APIKey == "" {
			return nil, apperrors.New(apperrors.InvalidInput, "렌더링 서비스의 endpoint와 api_key는 필수입니다")
		}
		return NewRenderProxy(cfg), nil

	case config.RenderKindChromedp:
		return NewHeadlessRenderer(cfg), nil

	default:
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 렌더링 방식입니다: %s", cfg.Kind)
	}
}
