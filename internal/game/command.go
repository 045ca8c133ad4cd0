package game

import "github.com/goevery/votechess/internal/broadcaster"

const (
	SubtypeGetBoard          = "GET_BOARD"
	SubtypeGetAvailableMoves = "GET_AVAILABLE_MOVES"
	SubtypeMakeMove          = "MAKE_MOVE"

	ResultSuccess = "SUCCESS"
)

// Command is the closed set of requests the machine understands, decoded
// from a COMMAND message.
type Command interface {
	Subtype() string
}

type GetBoard struct{}

type GetAvailableMoves struct{}

type MakeMove struct {
	Move string
}

// Unrecognized carries a COMMAND subtype the machine does not handle.
type Unrecognized struct {
	Name string
}

func (GetBoard) Subtype() string          { return SubtypeGetBoard }
func (GetAvailableMoves) Subtype() string { return SubtypeGetAvailableMoves }
func (MakeMove) Subtype() string          { return SubtypeMakeMove }
func (c Unrecognized) Subtype() string    { return c.Name }

// ParseCommand returns false for messages that are not commands.
func ParseCommand(message broadcaster.Message) (Command, bool) {
	if message.MessageType != broadcaster.MessageTypeCommand {
		return nil, false
	}

	switch message.MessageSubtype {
	case SubtypeGetBoard:
		return GetBoard{}, true
	case SubtypeGetAvailableMoves:
		return GetAvailableMoves{}, true
	case SubtypeMakeMove:
		return MakeMove{Move: message.Value}, true
	default:
		return Unrecognized{Name: message.MessageSubtype}, true
	}
}
