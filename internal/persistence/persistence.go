package persistence

import (
	"context"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// Record is a journaled hub message.
type Record struct {
	Id         string    `json:"id"`
	CreateTime time.Time `json:"createTime"`

	broadcaster.Message
}

type ListRequest struct {
	// MessageType filters by type when set.
	MessageType broadcaster.MessageType
	// AfterId returns only records saved after this one when set.
	AfterId string
	Limit   int
}

func (r ListRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return DefaultListLimit
	}

	return min(r.Limit, MaxListLimit)
}

type Engine interface {
	Setup(ctx context.Context) error
	Save(ctx context.Context, message broadcaster.Message) (Record, error)
	List(ctx context.Context, request ListRequest) ([]Record, error)
}
