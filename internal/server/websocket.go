package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/goevery/votechess/internal/handler"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader

	hub            Subscriber
	publishHandler handler.PublishHandlerInterface
	options        SessionOptions
	readLimit      int64

	sessions atomic.Int64
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	hub Subscriber,
	publishHandler handler.PublishHandlerInterface,
	options SessionOptions,
	readLimit int64,
) *WebSocketServer {
	return &WebSocketServer{
		logger:         logger,
		upgrader:       upgrader,
		hub:            hub,
		publishHandler: publishHandler,
		options:        options.withDefaults(),
		readLimit:      readLimit,
	}
}

// Register mounts the websocket endpoint. Sessions live until the client
// goes away or ctx is done.
func (s *WebSocketServer) Register(ctx context.Context, router *mux.Router) {
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		if s.readLimit > 0 {
			conn.SetReadLimit(s.readLimit)
		}

		session := NewSession(s.logger, conn, s.hub, s.publishHandler, s.options)

		connected := s.sessions.Add(1)
		s.logger.Info("websocket connection established",
			zap.String("sessionId", session.Id),
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Int64("sessions", connected))

		err = session.Run(ctx)

		remaining := s.sessions.Add(-1)
		fields := []zap.Field{
			zap.String("sessionId", session.Id),
			zap.Int64("sessions", remaining),
		}
		if err != nil && !errors.Is(err, ErrClosedByClient) && !errors.Is(err, context.Canceled) {
			fields = append(fields, zap.Error(err))
		}

		s.logger.Info("websocket connection closed", fields...)
	}).Methods(http.MethodGet)
}

// Sessions returns the number of live sessions.
func (s *WebSocketServer) Sessions() int {
	return int(s.sessions.Load())
}
