package config

import (
	"time"
)

// AppConfig 애플리케이션 전체 설정입니다.
type AppConfig struct {
	Debug bool `json:"debug"`

	Log       LogConfig       `json:"log"`
	Render    RenderConfig    `json:"render"`
	Database  DatabaseConfig  `json:"database"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Alert     AlertConfig     `json:"alert"`
	Telegram  TelegramConfig  `json:"telegram"`
	API       APIConfig       `json:"api"`
}

// LogConfig 로그 파일 설정
type LogConfig struct {
	Dir    string `json:"dir"`
	MaxAge int    `json:"max_age" validate:"min=0"`
}

// 페이지 렌더링 방식
const (
	RenderKindProxy    = "proxy"    // 원격 렌더링 서비스(ScraperAPI 호환)
	RenderKindChromedp = "chromedp" // 로컬 헤드리스 Chrome
)

// RenderConfig 상품 페이지를 가져오는 렌더러 설정
type RenderConfig struct {
	Kind        string `json:"kind" validate:"oneof=proxy chromedp"`
	Endpoint    string `json:"endpoint" validate:"required_if=Kind proxy,omitempty,url"`
	APIKey      string `json:"api_key" validate:"required_if=Kind proxy"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2,alpha"`

	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries" validate:"min=0,max=10"`
	RetryDelay   time.Duration `json:"retry_delay"`
	MaxBodyBytes int64         `json:"max_body_bytes" validate:"min=0"`

	// chromedp 전용: Chrome 실행 파일 경로 (비어 있으면 자동 탐색)
	ChromePath string `json:"chrome_path"`
}

// 지원하는 DB 드라이버
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DatabaseConfig 가격 추적 저장소 설정
type DatabaseConfig struct {
	Driver string `json:"driver" validate:"oneof=mysql sqlite"`
	DSN    string `json:"dsn" validate:"required"`
}

// SchedulerConfig 가격 수집 주기 설정
type SchedulerConfig struct {
	TimeSpec    string `json:"time_spec" validate:"cron_spec"`
	Concurrency int    `json:"concurrency" validate:"min=1,max=64"`
	RunOnStart  bool   `json:"run_on_start"`
}

// AlertConfig 가격 하락 알림 정책 설정
type AlertConfig struct {
	Policy         string  `json:"policy" validate:"oneof=any_drop target_floor target_only"`
	MinDropPercent float64 `json:"min_drop_percent" validate:"min=0,max=100"`
	MinDropAmount  float64 `json:"min_drop_amount" validate:"min=0"`
}

// TelegramConfig 알림 발송용 텔레그램 봇 설정. BotToken이 비어 있으면 알림은 로그로만 남습니다.
type TelegramConfig struct {
	BotToken  string  `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	QueueSize int     `json:"queue_size" validate:"min=1"`
	RateLimit float64 `json:"rate_limit" validate:"gt=0"`
	RateBurst int     `json:"rate_burst" validate:"min=1"`
}

// Enabled 텔레그램 발송이 설정되었는지 여부
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// APIConfig 상품 관리 HTTP API 설정
type APIConfig struct {
	ListenPort   int      `json:"listen_port" validate:"min=1,max=65535"`
	AppKeys      []string `json:"app_keys" validate:"min=1,dive,min=16"`
	AllowOrigins []string `json:"allow_origins"`
}
