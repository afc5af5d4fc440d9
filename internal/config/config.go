// Package config 애플리케이션 설정을 로드하고 검증합니다.
//
// 설정은 다음 순서로 병합되며 뒤의 값이 앞의 값을 덮어씁니다.
//
//  1. 코드에 정의된 기본값 (Default)
//  2. JSON 설정 파일 (price-tracker.json)
//  3. PRICE_TRACKER_ 접두사의 환경 변수 (예: PRICE_TRACKER_RENDER__API_KEY → render.api_key)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/price-tracker/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션 이름 (로그 파일명, 배너 등에 사용)
	AppName = "price-tracker"

	// DefaultFilename 기본 설정 파일명
	DefaultFilename = AppName + ".json"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사
	EnvPrefix = "PRICE_TRACKER_"
)

// Default 모든 항목이 기본값으로 채워진 설정을 반환합니다.
func Default() AppConfig {
	return AppConfig{
		Log: LogConfig{
			Dir:    "logs",
			MaxAge: 30,
		},
		Render: RenderConfig{
			Kind:         RenderKindProxy,
			Endpoint:     "https://api.scraperapi.com",
			CountryCode:  "ru",
			Timeout:      60 * time.Second,
			MaxRetries:   2,
			RetryDelay:   2 * time.Second,
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "price-tracker.db",
		},
		Scheduler: SchedulerConfig{
			TimeSpec:    "@every 1h",
			Concurrency: 4,
		},
		Alert: AlertConfig{
			Policy: "target_floor",
		},
		Telegram: TelegramConfig{
			QueueSize: 100,
			RateLimit: 1,
			RateBurst: 5,
		},
		API: APIConfig{
			ListenPort: 2443,
		},
	}
}

// Load 기본 설정 파일을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 설정 파일과 환경 변수를 병합하여 로드하고 검증합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "기본 설정 로드에 실패했습니다")
	}

	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			TagName:          "json",
			Result:           &appConfig,
		},
	}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

// envKeyToPath PRICE_TRACKER_SCHEDULER__TIME_SPEC → scheduler.time_spec
func envKeyToPath(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func (c *AppConfig) validate() error {
	v := newValidator()

	sections := []struct {
		name string
		s    any
	}{
		{"log", &c.Log},
		{"render", &c.Render},
		{"database", &c.Database},
		{"scheduler", &c.Scheduler},
		{"alert", &c.Alert},
		{"telegram", &c.Telegram},
		{"api", &c.API},
	}
	for _, sec := range sections {
		if err := checkStruct(v, sec.s, sec.name); err != nil {
			return err
		}
	}

	if c.Render.Timeout <= 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("render.timeout은 0보다 커야 합니다: %s", c.Render.Timeout))
	}
	if c.Render.RetryDelay < 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("render.retry_delay는 음수일 수 없습니다: %s", c.Render.RetryDelay))
	}

	return nil
}

// Warnings 동작에는 문제가 없지만 운영 시 주의가 필요한 설정 항목을 반환합니다.
func (c *AppConfig) Warnings() []string {
	var warnings []string

	if !c.Telegram.Enabled() {
		warnings = append(warnings, "telegram.bot_token이 설정되지 않아 가격 하락 알림이 로그로만 기록됩니다")
	}
	if c.Database.Driver == DriverSQLite && c.Scheduler.Concurrency > 1 {
		warnings = append(warnings, "SQLite 사용 시 동시 쓰기가 직렬화되므로 scheduler.concurrency를 높여도 효과가 제한됩니다")
	}
	if c.Render.Kind == RenderKindProxy && !strings.HasPrefix(c.Render.Endpoint, "https://") {
		warnings = append(warnings, "render.endpoint가 HTTPS가 아니므로 API 키가 평문으로 전송됩니다")
	}

	return warnings
}
