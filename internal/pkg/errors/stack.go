package errors

import (
	"path/filepath"
	"runtime"
)

// runtime.Callers, captureStack, 공개 생성 함수(New/Wrap 등) 3단계를 건너뛰어야 호출자의 위치가 첫 프레임이 됩니다.
const defaultCallerSkip = 3

// maxStackFrames 에러 하나당 기록하는 최대 프레임 수
const maxStackFrames = 5

// StackFrame 호출 스택의 한 지점입니다.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

func captureStack(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]StackFrame, 0, n)
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{
			File:     filepath.Base(f.File),
			Line:     f.Line,
			Function: f.Function,
		})
		if !more {
			break
		}
	}

	return stack
}
