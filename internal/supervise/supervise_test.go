package supervise

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func fastOptions() Options {
	return Options{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestRun_RestartsFailingTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan struct{})

	go func() {
		defer close(done)
		Run(ctx, zaptest.NewLogger(t), "flaky", fastOptions(), func(ctx context.Context) error {
			switch runs.Add(1) {
			case 1:
				return errors.New("upstream dropped")
			case 2:
				panic("boom")
			default:
				<-ctx.Done()
				return ctx.Err()
			}
		})
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 3 }, time.Second, time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop")
	}

	assert.Equal(t, int32(3), runs.Load())
}

func TestRun_StopsWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, zaptest.NewLogger(t), "slow", Options{InitialInterval: time.Hour, MaxInterval: time.Hour}, func(context.Context) error {
			return errors.New("failed")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("supervisor did not stop while waiting to restart")
	}
}
