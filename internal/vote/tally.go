package vote

import (
	"context"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/goevery/votechess/internal/game"
	"go.uber.org/zap"
)

const SubtypeVoteTally = "VOTE_TALLY"

type Hub interface {
	Publish(message broadcaster.Message)
	Subscribe() *broadcaster.Subscription
}

// Tally collects VOTE messages over fixed windows and, at the end of each
// window that saw a vote, asks the game machine to play the winner.
type Tally struct {
	logger *zap.Logger
	hub    Hub
	window time.Duration
}

func NewTally(logger *zap.Logger, hub Hub, window time.Duration) *Tally {
	return &Tally{
		logger: logger,
		hub:    hub,
		window: window,
	}
}

func (t *Tally) Run(ctx context.Context) error {
	subscription := t.hub.Subscribe()
	defer subscription.Close()

	ticker := time.NewTicker(t.window)
	defer ticker.Stop()

	ballot := NewBallot()

	t.logger.Info("vote tally started", zap.Duration("window", t.window))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-subscription.Ready():
			if lagged := subscription.TakeLagged(); lagged > 0 {
				t.logger.Warn("vote tally lagging, votes dropped", zap.Uint64("dropped", lagged))
			}

			for {
				message, ok := subscription.TryNext()
				if !ok {
					break
				}

				if message.MessageType == broadcaster.MessageTypeVote {
					ballot.Add(message.Value)
				}
			}

		case <-ticker.C:
			t.CloseWindow(ballot)
		}
	}
}

// CloseWindow publishes the outcome of ballot, if any, and resets it.
func (t *Tally) CloseWindow(ballot *Ballot) {
	defer ballot.Reset()

	winner, count, ok := ballot.Winner()
	if !ok {
		return
	}

	t.logger.Info("vote window closed",
		zap.String("winner", winner),
		zap.Int("votes", count),
		zap.Int("total", ballot.Total()))

	t.hub.Publish(broadcaster.NewCommand(game.SubtypeMakeMove, winner))
	t.hub.Publish(broadcaster.NewResult(SubtypeVoteTally, winner))
}
