package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

func TestChessBoard_LegalMoves(t *testing.T) {
	t.Run("starting position", func(t *testing.T) {
		moves := NewChessBoard().LegalMoves()

		assert.ElementsMatch(t, []string{
			"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4", "d2d3", "d2d4",
			"e2e3", "e2e4", "f2f3", "f2f4", "g2g3", "g2g4", "h2h3", "h2h4",
			"b1a3", "b1c3", "g1f3", "g1h3",
		}, moves)
	})

	t.Run("checkmated position", func(t *testing.T) {
		board, err := ChessBoardFromFEN(foolsMateFEN)
		require.NoError(t, err)

		assert.Empty(t, board.LegalMoves())
	})
}

func TestChessBoard_Play(t *testing.T) {
	start := NewChessBoard()

	t.Run("algebraic notation", func(t *testing.T) {
		next, err := start.Play("e4")
		require.NoError(t, err)

		assert.Contains(t, next.String(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b")
		assert.Contains(t, start.String(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w")
	})

	t.Run("uci notation", func(t *testing.T) {
		next, err := start.Play("g1f3")
		require.NoError(t, err)

		assert.Contains(t, next.String(), "RNBQKB1R b")
	})

	t.Run("illegal move", func(t *testing.T) {
		next, err := start.Play("e4")
		require.NoError(t, err)

		_, err = next.Play("e4")
		assert.ErrorIs(t, err, ErrIllegalMove)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, move := range []string{"", "   ", "rook_to_a4", "e9"} {
			_, err := start.Play(move)
			assert.ErrorIs(t, err, ErrIllegalMove, move)
		}
	})
}

func TestChessBoardFromFEN_Invalid(t *testing.T) {
	_, err := ChessBoardFromFEN("not a fen")

	assert.Error(t, err)
}
