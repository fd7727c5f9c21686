package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one repair pass: what ran, who (or what) ran it, and the
// resulting tallies. Failing to write one never fails the repair itself.
type AuditLog struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty"`
	Actor      string                 `bson:"actor"`
	Action     string                 `bson:"action"`
	EntityType string                 `bson:"entity_type"`
	EntityKey  string                 `bson:"entity_key,omitempty"`
	Changes    map[string]interface{} `bson:"changes"`
	Reason     string                 `bson:"reason,omitempty"`
	Timestamp  time.Time              `bson:"timestamp"`
}
