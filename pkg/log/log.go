// Package log logrus 기반의 전역 로깅 파사드입니다.
//
// 모든 패키지는 자신의 컴포넌트 이름과 함께 구조화된 필드로 로그를 남깁니다.
//
//	applog.WithComponentAndFields("tracker", applog.Fields{
//	    "product_id": p.ID,
//	}).Info("가격 갱신 완료")
package log

import (
	"github.com/sirupsen/logrus"
)

// componentKey 컴포넌트 이름이 기록되는 필드 키
const componentKey = "component"

// StandardLogger 전역 logrus 로거를 반환합니다.
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}

// WithComponent 컴포넌트 필드가 설정된 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField(componentKey, component)
}

// WithComponentAndFields 컴포넌트 필드와 추가 필드가 설정된 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	return logrus.WithField(componentKey, component).WithFields(fields)
}

// WithFields 컴포넌트 없이 필드만 설정된 Entry를 반환합니다.
func WithFields(fields Fields) *Entry {
	return logrus.WithFields(fields)
}

// SetLevel 전역 로그 레벨을 변경합니다.
func SetLevel(level Level) {
	logrus.SetLevel(level)
}

// GetLevel 현재 전역 로그 레벨을 반환합니다.
func GetLevel() Level {
	return logrus.GetLevel()
}

func Info(args ...any) {
	logrus.Info(args...)
}

func Warn(args ...any) {
	logrus.Warn(args...)
}

func Error(args ...any) {
	logrus.Error(args...)
}

func Fatal(args ...any) {
	logrus.Fatal(args...)
}
