package handler

import (
	"testing"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type sessionCount int

func (c sessionCount) Sessions() int {
	return int(c)
}

func TestStatsHandler_Handle(t *testing.T) {
	hub := broadcaster.NewHub(zaptest.NewLogger(t), 4)
	subscription := hub.Subscribe()
	defer subscription.Close()

	hub.Publish(broadcaster.NewVote("e4"))
	hub.Publish(broadcaster.NewVote("d4"))

	stats := NewStatsHandler(sessionCount(3), hub).Handle()

	assert.Equal(t, 3, stats.ConnectedClients)
	assert.Equal(t, 1, stats.Subscriptions)
	assert.Equal(t, uint64(2), stats.Published)
	assert.False(t, stats.Timestamp.IsZero())
}
