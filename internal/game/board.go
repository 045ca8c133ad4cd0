package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goevery/votechess/internal/ierr"
	"github.com/notnil/chess"
)

var ErrIllegalMove = errors.New("illegal move")

// Board is an immutable game position together with the rules that act on it.
type Board interface {
	// String renders the position canonically.
	String() string
	LegalMoves() []string
	// Play returns the position after move, or an error wrapping
	// ErrIllegalMove when move is not legal here.
	Play(move string) (Board, error)
}

// ChessBoard renders positions as FEN and lists moves in UCI notation.
// Play accepts standard algebraic notation, falling back to UCI.
type ChessBoard struct {
	position *chess.Position
}

func NewChessBoard() ChessBoard {
	return ChessBoard{position: chess.StartingPosition()}
}

func ChessBoardFromFEN(fen string) (ChessBoard, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return ChessBoard{}, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("invalid fen: %w", err))
	}

	return ChessBoard{position: chess.NewGame(option).Position()}, nil
}

func (b ChessBoard) String() string {
	return b.position.String()
}

func (b ChessBoard) LegalMoves() []string {
	validMoves := b.position.ValidMoves()

	moves := make([]string, 0, len(validMoves))
	for _, move := range validMoves {
		moves = append(moves, move.String())
	}

	return moves
}

func (b ChessBoard) Play(move string) (Board, error) {
	move = strings.TrimSpace(move)
	if move == "" {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("%w: empty move", ErrIllegalMove))
	}

	decoded, err := chess.AlgebraicNotation{}.Decode(b.position, move)
	if err != nil {
		decoded = b.findUCI(move)
	}

	if decoded == nil {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("%w: %q", ErrIllegalMove, move))
	}

	return ChessBoard{position: b.position.Update(decoded)}, nil
}

func (b ChessBoard) findUCI(move string) *chess.Move {
	for _, candidate := range b.position.ValidMoves() {
		if candidate.String() == move {
			return candidate
		}
	}

	return nil
}
