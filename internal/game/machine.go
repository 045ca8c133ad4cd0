package game

import (
	"context"
	"strings"

	"github.com/goevery/votechess/internal/broadcaster"
	"go.uber.org/zap"
)

type Hub interface {
	Publish(message broadcaster.Message)
	Subscribe() *broadcaster.Subscription
}

// Machine owns the single game position. It is only reachable through the
// hub: it consumes COMMAND messages one at a time and answers with RESULT
// messages.
type Machine struct {
	logger *zap.Logger
	hub    Hub

	// board is only touched from Handle, which Run calls sequentially.
	board Board
}

func NewMachine(logger *zap.Logger, hub Hub, board Board) *Machine {
	return &Machine{
		logger: logger,
		hub:    hub,
		board:  board,
	}
}

// Run subscribes to the hub and handles every delivered message until ctx is
// done. The position survives across calls, so a restarted Run resumes the
// same game.
func (m *Machine) Run(ctx context.Context) error {
	subscription := m.hub.Subscribe()
	defer subscription.Close()

	m.logger.Info("game machine subscribed", zap.String("subscriptionId", subscription.Id))

	for message := range subscription.Messages(ctx) {
		if lagged := subscription.TakeLagged(); lagged > 0 {
			m.logger.Warn("game machine lagging, messages dropped", zap.Uint64("dropped", lagged))
		}

		m.Handle(message)
	}

	return ctx.Err()
}

func (m *Machine) Handle(message broadcaster.Message) {
	command, ok := ParseCommand(message)
	if !ok {
		return
	}

	m.logger.Debug("game command received", zap.Stringer("message", message))

	switch command := command.(type) {
	case GetBoard:
		m.publish(command.Subtype(), m.board.String())
	case GetAvailableMoves:
		m.publish(command.Subtype(), "["+strings.Join(m.board.LegalMoves(), ",")+"]")
	case MakeMove:
		next, err := m.board.Play(command.Move)
		if err != nil {
			m.logger.Error("invalid move", zap.String("move", command.Move), zap.Error(err))

			return
		}

		m.board = next
		m.publish(command.Subtype(), ResultSuccess)
	case Unrecognized:
		m.logger.Error("unrecognised command subtype", zap.String("subtype", command.Name))
	}
}

func (m *Machine) publish(subtype string, value string) {
	result := broadcaster.NewResult(subtype, value)

	m.logger.Info("publishing result", zap.Stringer("message", result))

	m.hub.Publish(result)
}
