// Package cronx robfig/cron 파서 구성을 한 곳에서 관리합니다.
package cronx

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// StandardParser 초 단위 필드를 포함한 6필드 표현식과 "@every 1h" 같은 디스크립터를 모두 해석하는 파서를 반환합니다.
//
//	"0 */30 * * * *"   // 30분마다
//	"@every 1h"        // 1시간마다
//	"@hourly"          // 매 정시
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Validate 표현식이 StandardParser로 해석 가능한지 검사합니다.
func Validate(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("cron 표현식이 비어 있습니다")
	}

	if _, err := StandardParser().Parse(spec); err != nil {
		return fmt.Errorf("잘못된 cron 표현식(%s): %w", spec, err)
	}

	return nil
}
