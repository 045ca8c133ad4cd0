package handler

import (
	"context"

	"github.com/goevery/votechess/internal/broadcaster"
)

type Publisher interface {
	Publish(message broadcaster.Message)
}

type PublishHandlerInterface interface {
	Handle(ctx context.Context, frame []byte) (broadcaster.Message, error)
}

// PublishHandler decodes a raw envelope and, if it is well formed, publishes
// it onto the hub. It is shared by websocket sessions and the REST endpoint.
type PublishHandler struct {
	publisher Publisher
}

func NewPublishHandler(publisher Publisher) *PublishHandler {
	return &PublishHandler{
		publisher,
	}
}

func (h *PublishHandler) Handle(ctx context.Context, frame []byte) (broadcaster.Message, error) {
	message, err := broadcaster.DecodeMessage(frame)
	if err != nil {
		return broadcaster.Message{}, err
	}

	if err := ctx.Err(); err != nil {
		return broadcaster.Message{}, err
	}

	h.publisher.Publish(message)

	return message, nil
}
