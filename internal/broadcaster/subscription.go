package broadcaster

import (
	"context"
	"errors"
	"iter"
	"sync"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

// Subscription is one consumer's view of the hub. Its backlog is a ring
// buffer; when full, the oldest pending message is overwritten.
type Subscription struct {
	Id string

	hub *Hub

	mu        sync.Mutex
	buffer    []Message
	head      int
	size      int
	lagged    uint64
	closed    bool
	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(id string, hub *Hub, capacity int) *Subscription {
	return &Subscription{
		Id:     id,
		hub:    hub,
		buffer: make([]Message, capacity),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push appends message, overwriting the oldest pending one when full.
func (s *Subscription) push(message Message) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return
	}

	capacity := len(s.buffer)
	if s.size == capacity {
		s.head = (s.head + 1) % capacity
		s.size--
		s.lagged++
	}

	s.buffer[(s.head+s.size)%capacity] = message
	s.size++

	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after a push. A receive does not guarantee a message is
// pending: drain with TryNext until it reports false.
func (s *Subscription) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) TryNext() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size == 0 {
		return Message{}, false
	}

	message := s.buffer[s.head]
	s.buffer[s.head] = Message{}
	s.head = (s.head + 1) % len(s.buffer)
	s.size--

	return message, true
}

// Next blocks until a message is available, ctx is done or the subscription
// is closed.
func (s *Subscription) Next(ctx context.Context) (Message, error) {
	for {
		if message, ok := s.TryNext(); ok {
			return message, nil
		}

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-s.done:
			return Message{}, ErrSubscriptionClosed
		case <-s.ready:
		}
	}
}

// Messages yields every message delivered to the subscription until ctx is
// done or the subscription is closed.
func (s *Subscription) Messages(ctx context.Context) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			message, err := s.Next(ctx)
			if err != nil {
				return
			}

			if !yield(message) {
				return
			}
		}
	}
}

// TakeLagged returns how many messages were dropped since the previous call.
func (s *Subscription) TakeLagged() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	lagged := s.lagged
	s.lagged = 0

	return lagged
}

// Pending returns the number of buffered messages.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.size
}

// Close releases the backlog and detaches from the hub. It is safe to call
// more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s.Id)

		s.mu.Lock()
		s.closed = true
		s.buffer = nil
		s.head = 0
		s.size = 0
		s.mu.Unlock()

		close(s.done)
	})
}
