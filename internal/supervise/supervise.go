// Package supervise keeps long-running tasks alive for the lifetime of a
// context, restarting them when they return or panic.
package supervise

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultOptions() Options {
	return Options{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// Run restarts task until ctx is done. A run that lasts longer than
// MaxInterval resets the backoff.
func Run(ctx context.Context, logger *zap.Logger, name string, options Options, task Task) {
	logger = logger.With(zap.String("task", name))

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = options.InitialInterval
	retry.MaxInterval = options.MaxInterval

	for {
		startedAt := time.Now()
		err := runOnce(ctx, task)

		if ctx.Err() != nil {
			logger.Info("task stopped")

			return
		}

		if time.Since(startedAt) > options.MaxInterval {
			retry.Reset()
		}

		delay := retry.NextBackOff()
		logger.Error("task exited, restarting",
			zap.Error(err),
			zap.Duration("delay", delay))

		if !wait(ctx, delay) {
			logger.Info("task stopped")

			return
		}
	}
}

func runOnce(ctx context.Context, task Task) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v\n%s", recovered, debug.Stack())
		}
	}()

	err = task(ctx)
	if err == nil {
		err = errors.New("task returned without error")
	}

	return err
}

func wait(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
