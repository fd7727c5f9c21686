package noop

import (
	"context"

	"github.com/chanreadmin/billingbackend/internal/mq"
)

// Publisher implements mq.Publisher without a broker. Development mode and
// tests run repair passes against it so no RabbitMQ instance is required.
type Publisher struct{}

// NewPublisher creates a new NoOp Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	return nil
}

func (p *Publisher) Close() {}

var _ mq.Publisher = (*Publisher)(nil)
