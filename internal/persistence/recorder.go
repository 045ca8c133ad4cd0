package persistence

import (
	"context"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"go.uber.org/zap"
)

const saveTimeout = 5 * time.Second

type Subscriber interface {
	Subscribe() *broadcaster.Subscription
}

// Recorder journals every message it sees on the hub. The journal is an
// audit trail and is never replayed into the game.
type Recorder struct {
	logger *zap.Logger
	hub    Subscriber
	engine Engine
}

func NewRecorder(logger *zap.Logger, hub Subscriber, engine Engine) *Recorder {
	return &Recorder{
		logger: logger,
		hub:    hub,
		engine: engine,
	}
}

func (r *Recorder) Run(ctx context.Context) error {
	subscription := r.hub.Subscribe()
	defer subscription.Close()

	r.logger.Info("journal recorder subscribed", zap.String("subscriptionId", subscription.Id))

	for message := range subscription.Messages(ctx) {
		if lagged := subscription.TakeLagged(); lagged > 0 {
			r.logger.Warn("journal recorder lagging, messages not journaled", zap.Uint64("dropped", lagged))
		}

		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		_, err := r.engine.Save(saveCtx, message)
		cancel()

		if err != nil {
			r.logger.Error("failed to journal message",
				zap.Stringer("message", message),
				zap.Error(err))
		}
	}

	return ctx.Err()
}
