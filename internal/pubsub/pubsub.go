package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple: a topic plus the raw frame bytes, so the
// transport can publish without knowing who consumes.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.message.received").
	Topic string
	// Payload contains the raw message data, usually a JSON frame as it
	// arrived off the wire.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context (e.g., timestamps).
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages
	// with the handler. It returns once the subscription is active;
	// delivery happens in the background.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
