package log

import (
	"errors"
	"io"
	"sync/atomic"
)

// closer hook을 먼저 닫은 뒤 로그 파일들을 정리합니다. 여러 번 호출해도 안전합니다.
type closer struct {
	files []io.Closer
	hook  *hook

	closed atomic.Bool
}

func (c *closer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	if c.hook != nil {
		_ = c.hook.Close()
	}

	var errs error
	for _, f := range c.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
