package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/models"
)

// RepairEventTopic is the routing key repair events are published under.
type RepairEventTopic string

// RepairEventPublisher creates outbox messages for completed repair passes.
// The message is written in the same transaction as the repair, so downstream
// consumers only ever see events for repairs that actually committed.
type RepairEventPublisher struct {
	outboxRepo repository.OutboxRepository
	topic      RepairEventTopic
}

// NewRepairEventPublisher creates a new RepairEventPublisher.
func NewRepairEventPublisher(outboxRepo repository.OutboxRepository, topic RepairEventTopic) *RepairEventPublisher {
	return &RepairEventPublisher{
		outboxRepo: outboxRepo,
		topic:      topic,
	}
}

// PublishRepairEvent records one repair pass as an outbox message.
func (p *RepairEventPublisher) PublishRepairEvent(ctx context.Context, action string, scope string, tallies map[string]interface{}) error {
	payload := map[string]interface{}{
		"action":      action,
		"scope":       scope,
		"tallies":     tallies,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal repair event payload: %w", err)
	}

	outboxMsg := &models.OutboxMessage{
		ID:        primitive.NewObjectID(),
		Topic:     string(p.topic),
		Payload:   string(payloadBytes),
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := p.outboxRepo.Create(ctx, outboxMsg); err != nil {
		return fmt.Errorf("failed to create repair event outbox message: %w", err)
	}
	return nil
}
