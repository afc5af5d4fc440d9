package log

import (
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// discardFormatter 기본 출력(io.Discard)용 포맷터입니다. 실제 포맷팅은 hook에서 한 번만 수행합니다.
type discardFormatter struct{}

func (discardFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}

func newTextFormatter(callerPathPrefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
			fn := frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if callerPathPrefix != "" {
				if rest, ok := strings.CutPrefix(fn, callerPathPrefix); ok {
					fn = "..." + rest
				}
			}
			return fn, ""
		},
	}
}
