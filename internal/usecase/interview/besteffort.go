package interview

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// BestEffort is a non-blocking side task. Its failure is logged and dropped;
// the caller that launched it never sees an error.
type BestEffort[T any] struct {
	done  chan struct{}
	value T
	ok    bool
}

func launchBestEffort[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) *BestEffort[T] {
	b := &BestEffort[T]{done: make(chan struct{})}

	go func() {
		defer close(b.done)

		v, err := fn(ctx)
		if err != nil {
			ctxzap.Warn(ctx, "best-effort task failed", zap.String("task", name), zap.Error(err))
			return
		}
		b.value, b.ok = v, true
	}()

	return b
}

// Done is closed when the task has finished, successfully or not
func (b *BestEffort[T]) Done() <-chan struct{} {
	return b.done
}

// Result returns the value and true only after a successful completion. It does not block.
func (b *BestEffort[T]) Result() (T, bool) {
	select {
	case <-b.done:
		return b.value, b.ok
	default:
		var zero T
		return zero, false
	}
}

// Wait blocks until the task finishes
func (b *BestEffort[T]) Wait() (T, bool) {
	<-b.done
	return b.value, b.ok
}
