package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/scheduler"
)

// MessageBus is the single-process in-memory bus connecting channel
// adapters to the agent runtime: inbound messages flow channel→agent,
// outbound messages flow agent→channel, and Event broadcasts flow to any
// subscriber (the HTTP SSE surface, a CLI watcher). Grounded on the
// teacher's internal/gateway broadcast idiom (registerClient/
// unregisterClient over a mutex-guarded map), generalized from a
// multi-client WebSocket fanout down to a single-process queue plus
// subscriber map — there is exactly one agent process on the other end
// of the outbound queue instead of many browser tabs.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	mu          sync.RWMutex
	subscribers map[string]EventHandler
}

// NewMessageBus builds a MessageBus with the given queue depth for the
// inbound/outbound channels. A depth of 0 makes both channels
// unbuffered, which is fine for tests but risks a slow consumer
// blocking a channel adapter's goroutine in production.
func NewMessageBus(queueDepth int) *MessageBus {
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &MessageBus{
		inbound:     make(chan InboundMessage, queueDepth),
		outbound:    make(chan OutboundMessage, queueDepth),
		subscribers: make(map[string]EventHandler),
	}
}

// PublishInbound enqueues msg for the agent runtime's consume loop. It
// takes no context: if the queue is full, the call blocks until a slot
// frees, matching a bounded channel's natural backpressure, and it has no
// timeout — callers needing a non-blocking send should select on a
// context themselves before calling this.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inbound <- msg
}

// ConsumeInbound blocks until a message is available or ctx is done.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-b.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound enqueues msg for channels.Manager's dispatch loop.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// SubscribeOutbound blocks until an outbound message is available or ctx
// is done.
func (b *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-b.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// Subscribe registers handler under id to receive every future Broadcast.
// A duplicate id silently replaces the prior handler, matching the
// teacher's registerClient-overwrites-on-reconnect behavior.
func (b *MessageBus) Subscribe(id string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[id] = handler
}

// Unsubscribe removes id's handler, if any.
func (b *MessageBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Broadcast fans event out to every current subscriber. Handlers run
// synchronously on the caller's goroutine in registration order — any
// handler wanting to avoid blocking the publisher dispatches its own
// goroutine internally.
func (b *MessageBus) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.subscribers {
		h(event)
	}
}

// PublishDelivery satisfies scheduler.DeliveryPublisher: a fired cron
// job's result is pushed onto the same outbound queue a channel adapter
// pulls from, identical to a live chat reply — the cron runner has no
// more direct a route to a channel's API than an interactive turn does.
func (b *MessageBus) PublishDelivery(ctx context.Context, d scheduler.Delivery, content string) error {
	if d.Mode != scheduler.DeliverChannel {
		return nil
	}
	if d.Channel == "" || d.Target == "" {
		return fmt.Errorf("bus: delivery missing channel or target")
	}
	b.PublishOutbound(OutboundMessage{Channel: d.Channel, ChatID: d.Target, Content: content})
	return nil
}

var _ MessageRouter = (*MessageBus)(nil)
var _ EventPublisher = (*MessageBus)(nil)
var _ scheduler.DeliveryPublisher = (*MessageBus)(nil)
