package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newMachine(t *testing.T) (*Machine, *broadcaster.Hub, *broadcaster.Subscription) {
	t.Helper()

	hub := broadcaster.NewHub(zaptest.NewLogger(t), 64)
	results := hub.Subscribe()
	t.Cleanup(results.Close)

	return NewMachine(zaptest.NewLogger(t), hub, NewChessBoard()), hub, results
}

func nextResult(t *testing.T, subscription *broadcaster.Subscription) broadcaster.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		message, err := subscription.Next(ctx)
		require.NoError(t, err)

		if message.MessageType == broadcaster.MessageTypeResult {
			return message
		}
	}
}

func TestMachine_MakeMoveRoundTrip(t *testing.T) {
	machine, _, results := newMachine(t)

	machine.Handle(broadcaster.NewCommand(SubtypeMakeMove, "e4"))
	assert.Equal(t, broadcaster.NewResult(SubtypeMakeMove, ResultSuccess), nextResult(t, results))

	machine.Handle(broadcaster.NewCommand(SubtypeGetBoard, ""))
	board := nextResult(t, results)
	assert.Equal(t, SubtypeGetBoard, board.MessageSubtype)
	assert.True(t, strings.HasPrefix(board.Value, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b"), board.Value)

	// Black cannot play e4, so nothing is published and the board stays put.
	machine.Handle(broadcaster.NewCommand(SubtypeMakeMove, "e4"))
	assert.Equal(t, 0, results.Pending())

	machine.Handle(broadcaster.NewCommand(SubtypeGetBoard, ""))
	assert.Equal(t, board, nextResult(t, results))
}

func TestMachine_GetAvailableMoves(t *testing.T) {
	t.Run("starting position", func(t *testing.T) {
		machine, _, results := newMachine(t)

		machine.Handle(broadcaster.NewCommand(SubtypeGetAvailableMoves, ""))
		result := nextResult(t, results)

		require.True(t, strings.HasPrefix(result.Value, "["))
		require.True(t, strings.HasSuffix(result.Value, "]"))

		moves := strings.Split(strings.Trim(result.Value, "[]"), ",")
		assert.Len(t, moves, 20)
		assert.ElementsMatch(t, NewChessBoard().LegalMoves(), moves)
	})

	t.Run("no legal moves", func(t *testing.T) {
		hub := broadcaster.NewHub(zaptest.NewLogger(t), 8)
		results := hub.Subscribe()
		defer results.Close()

		board, err := ChessBoardFromFEN(foolsMateFEN)
		require.NoError(t, err)

		machine := NewMachine(zaptest.NewLogger(t), hub, board)
		machine.Handle(broadcaster.NewCommand(SubtypeGetAvailableMoves, ""))

		assert.Equal(t, broadcaster.NewResult(SubtypeGetAvailableMoves, "[]"), nextResult(t, results))
	})
}

func TestMachine_IgnoresAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	hub := broadcaster.NewHub(zaptest.NewLogger(t), 8)
	results := hub.Subscribe()
	defer results.Close()

	machine := NewMachine(zap.New(core), hub, NewChessBoard())

	machine.Handle(broadcaster.NewVote("rook_to_a4"))
	machine.Handle(broadcaster.NewResult(SubtypeGetBoard, "whatever"))
	machine.Handle(broadcaster.NewCommand("RESIGN", ""))
	machine.Handle(broadcaster.NewCommand(SubtypeMakeMove, "Ke2"))

	assert.Equal(t, 0, results.Pending())
	assert.Equal(t, 1, logs.FilterMessage("unrecognised command subtype").Len())
	assert.Equal(t, 1, logs.FilterMessage("invalid move").Len())
}

func TestMachine_Run(t *testing.T) {
	machine, hub, results := newMachine(t)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.ErrorIs(t, machine.Run(ctx), context.Canceled)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish(broadcaster.NewCommand(SubtypeMakeMove, "d4"))
	hub.Publish(broadcaster.NewCommand(SubtypeMakeMove, "d5"))
	hub.Publish(broadcaster.NewCommand(SubtypeGetBoard, ""))

	assert.Equal(t, ResultSuccess, nextResult(t, results).Value)
	assert.Equal(t, ResultSuccess, nextResult(t, results).Value)
	assert.True(t, strings.HasPrefix(nextResult(t, results).Value, "rnbqkbnr/ppp1pppp/8/3p4/3P4/8/PPP1PPPP/RNBQKBNR w"))

	cancel()
	wg.Wait()

	assert.Equal(t, 1, hub.Subscribers())

	// The position outlives the subscription.
	machine.Handle(broadcaster.NewCommand(SubtypeMakeMove, "c4"))
	assert.Equal(t, ResultSuccess, nextResult(t, results).Value)
}
