package game

import (
	"testing"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		message broadcaster.Message
		command Command
	}{
		{broadcaster.NewCommand("GET_BOARD", ""), GetBoard{}},
		{broadcaster.NewCommand("GET_AVAILABLE_MOVES", "ignored"), GetAvailableMoves{}},
		{broadcaster.NewCommand("MAKE_MOVE", "Nf3"), MakeMove{Move: "Nf3"}},
		{broadcaster.NewCommand("RESIGN", ""), Unrecognized{Name: "RESIGN"}},
	}

	for _, c := range cases {
		command, ok := ParseCommand(c.message)

		assert.True(t, ok)
		assert.Equal(t, c.command, command)
		assert.Equal(t, c.message.MessageSubtype, command.Subtype())
	}

	for _, message := range []broadcaster.Message{
		broadcaster.NewVote("e4"),
		broadcaster.NewResult("GET_BOARD", "x"),
	} {
		_, ok := ParseCommand(message)
		assert.False(t, ok)
	}
}
