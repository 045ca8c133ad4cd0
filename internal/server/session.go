package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/goevery/votechess/internal/handler"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrClosedByClient = errors.New("session closed by client")

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Subscriber interface {
	Subscribe() *broadcaster.Subscription
}

type SessionOptions struct {
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
}

func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		HeartbeatInterval: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// withDefaults replaces non-positive durations with their defaults.
func (o SessionOptions) withDefaults() SessionOptions {
	defaults := DefaultSessionOptions()

	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = defaults.HeartbeatInterval
	}

	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaults.WriteTimeout
	}

	return o
}

// Session bridges one client connection and the hub. Its outbound loop
// forwards hub messages and heartbeats to the client; its inbound loop
// republishes client messages onto the hub. When either loop stops, both do.
type Session struct {
	Id string

	logger         *zap.Logger
	conn           Conn
	subscription   *broadcaster.Subscription
	publishHandler handler.PublishHandlerInterface
	options        SessionOptions
}

// NewSession subscribes immediately, so the client receives everything
// published from this point on.
func NewSession(
	logger *zap.Logger,
	conn Conn,
	hub Subscriber,
	publishHandler handler.PublishHandlerInterface,
	options SessionOptions,
) *Session {
	id := gonanoid.Must()
	subscription := hub.Subscribe()

	return &Session{
		Id:             id,
		logger:         logger.With(zap.String("sessionId", id), zap.String("subscriptionId", subscription.Id)),
		conn:           conn,
		subscription:   subscription,
		publishHandler: publishHandler,
		options:        options.withDefaults(),
	}
}

// Run blocks until the session terminates and returns the reason. The
// subscription is released and the connection closed before it returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.subscription.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.outbound(ctx)
	})

	group.Go(func() error {
		return s.inbound(ctx)
	})

	group.Go(func() error {
		<-ctx.Done()
		_ = s.conn.Close()

		return nil
	})

	return group.Wait()
}

func (s *Session) outbound(ctx context.Context) error {
	heartbeat := time.NewTicker(s.options.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-heartbeat.C:
			deadline := time.Now().Add(s.options.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				s.logger.Warn("failed to send ping, closing session", zap.Error(err))

				return fmt.Errorf("ping: %w", err)
			}

		case <-s.subscription.Ready():
			if err := s.flush(); err != nil {
				s.logger.Warn("failed to send message, closing session", zap.Error(err))

				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func (s *Session) flush() error {
	if lagged := s.subscription.TakeLagged(); lagged > 0 {
		s.logger.Warn("session lagging, messages dropped", zap.Uint64("dropped", lagged))
	}

	for {
		message, ok := s.subscription.TryNext()
		if !ok {
			return nil
		}

		data, err := message.Encode()
		if err != nil {
			s.logger.Error("failed to encode message", zap.Error(err))

			continue
		}

		if err := s.conn.SetWriteDeadline(time.Now().Add(s.options.WriteTimeout)); err != nil {
			return err
		}

		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
}

func (s *Session) inbound(ctx context.Context) error {
	for {
		messageType, frame, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				s.logger.Info("websocket session closed", zap.Int("code", closeErr.Code), zap.String("reason", closeErr.Text))

				return fmt.Errorf("%w: %d", ErrClosedByClient, closeErr.Code)
			}

			return fmt.Errorf("read: %w", err)
		}

		if messageType != websocket.TextMessage {
			s.logger.Debug("ignoring non-text frame", zap.Int("messageType", messageType))

			continue
		}

		message, err := s.publishHandler.Handle(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			s.logger.Error("invalid message",
				zap.ByteString("frame", frame),
				zap.Error(err))

			continue
		}

		s.logger.Info("got message", zap.Stringer("message", message))
	}
}
