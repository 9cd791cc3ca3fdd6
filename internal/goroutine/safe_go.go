package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ivanzorin/wedding-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic. Упавшая горутина обработки
// звонка не должна ронять весь воркер.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("panic в горутине: %v\n%s", r, debug.Stack())
		}
	}
}
