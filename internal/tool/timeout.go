package tool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by RunWithTimeout when fn does not finish in time.
var ErrTimeout = errors.New("tool execution timed out")

type outcome struct {
	payload string
	err     error
}

// RunWithTimeout runs fn in its own goroutine and waits at most timeout for
// it. On timeout the goroutine is abandoned: its context is cancelled and its
// result discarded. A panic in fn is returned as an error.
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		payload, err := fn(runCtx)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case o := <-done:
		return o.payload, o.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrTimeout
	}
}
