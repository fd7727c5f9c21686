package mq

import "context"

// Publisher is the outbound side of the message queue. Repair events leave
// the engine through this interface, so the broker implementation stays
// swappable.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Close()
}
