package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	applog "github.com/darkkaiser/price-tracker/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger gorm의 로그를 애플리케이션 로거로 전달합니다.
//
// 레벨은 애플리케이션 로거의 레벨을 그대로 따르며, 쿼리는 DEBUG 레벨에서만 기록됩니다.
type gormLogger struct {
	slowThreshold time.Duration
}

var _ logger.Interface = (*gormLogger)(nil)

func newGormLogger(slowThreshold time.Duration) *gormLogger {
	return &gormLogger{slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	applog.WithComponent(component).Infof(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	applog.WithComponent(component).Warnf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	applog.WithComponent(component).Errorf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		applog.WithComponentAndFields(component, applog.Fields{
			"sql":      sql,
			"rows":     rows,
			"duration": elapsed.String(),
			"error":    err.Error(),
		}).Warn("쿼리 실행 실패")

	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		applog.WithComponentAndFields(component, applog.Fields{
			"sql":       sql,
			"rows":      rows,
			"duration":  elapsed.String(),
			"threshold": fmt.Sprint(l.slowThreshold),
		}).Warn("느린 쿼리")

	case applog.GetLevel() >= applog.DebugLevel:
		sql, rows := fc()
		applog.WithComponentAndFields(component, applog.Fields{
			"sql":      sql,
			"rows":     rows,
			"duration": elapsed.String(),
		}).Debug("쿼리 실행")
	}
}
