// Package slots bounds how many model generations run at once.
//
// A Limiter hands out slots; the release func it returns must be called
// exactly once when the generation finishes. LocalLimiter bounds a single
// process. RedisLimiter bounds every replica that points at the same
// inference backend.
package slots

import (
	"context"
	"sync"
)

type Limiter interface {
	Acquire(ctx context.Context) (func(), error)
}

// LocalLimiter is a counting semaphore. A size of 1 serializes generations.
type LocalLimiter struct {
	sem chan struct{}
}

// NewLocalLimiter returns a limiter with size slots. size <= 0 means unbounded.
func NewLocalLimiter(size int) *LocalLimiter {
	if size <= 0 {
		return &LocalLimiter{}
	}
	return &LocalLimiter{sem: make(chan struct{}, size)}
}

func (l *LocalLimiter) Acquire(ctx context.Context) (func(), error) {
	if l.sem == nil {
		return func() {}, nil
	}
	select {
	case l.sem <- struct{}{}:
		return onceRelease(func() { <-l.sem }), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size reports the slot count, 0 when unbounded.
func (l *LocalLimiter) Size() int {
	return cap(l.sem)
}

func onceRelease(fn func()) func() {
	var once sync.Once
	return func() { once.Do(fn) }
}
