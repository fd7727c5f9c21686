package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/dao/fields"
	"github.com/chanreadmin/billingbackend/internal/models"
)

func NewOutboxDAO(db *mongo.Database, logger *zap.Logger) *OutboxDAO {
	return &OutboxDAO{
		outboxCollection: db.Collection(CollectionOutbox),
		logger:           logger.Named("OutboxDAO"),
	}
}

type OutboxDAO struct {
	outboxCollection *mongo.Collection
	logger           *zap.Logger
}

func (d *OutboxDAO) Create(ctx context.Context, message *models.OutboxMessage) error {
	_, err := d.outboxCollection.InsertOne(ctx, message)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err))
		return err
	}
	return nil
}

// ClaimAndFetchEvents uses a three-phase approach to atomically claim a batch
// of pending events: find candidate IDs, claim them with an optimistic status
// filter, then fetch the claimed documents.
func (d *OutboxDAO) ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	// Phase 1: find candidate IDs only, oldest first.
	findOptions := options.Find().
		SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{fields.FieldObjectId: 1})

	filter := bson.M{fields.FieldStatus: models.OutboxStatusPending}
	cursor, err := d.outboxCollection.Find(ctx, filter, findOptions)
	if err != nil {
		d.logger.Error("ClaimAndFetchEvents: phase 1 Find failed", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		d.logger.Error("ClaimAndFetchEvents: phase 1 decode failed", zap.Error(err))
		return nil, err
	}
	if len(results) == 0 {
		return []*models.OutboxMessage{}, nil
	}

	ids := make([]primitive.ObjectID, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}

	// Phase 2: claim. The status filter is the optimistic lock against a
	// concurrent worker claiming the same batch.
	claimID := primitive.NewObjectID()
	updateFilter := bson.M{
		fields.FieldObjectId: bson.M{"$in": ids},
		fields.FieldStatus:   models.OutboxStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			fields.FieldStatus:    models.OutboxStatusProcessing,
			"claim_id":            claimID,
			fields.FieldUpdatedAt: time.Now(),
		},
	}
	updateResult, err := d.outboxCollection.UpdateMany(ctx, updateFilter, update)
	if err != nil {
		d.logger.Error("ClaimAndFetchEvents: phase 2 UpdateMany failed", zap.Error(err))
		return nil, err
	}
	if updateResult.ModifiedCount == 0 {
		// Another worker got here first. Not an error.
		return []*models.OutboxMessage{}, nil
	}

	// Phase 3: fetch the documents this claim actually won.
	claimedCursor, err := d.outboxCollection.Find(ctx, bson.M{"claim_id": claimID})
	if err != nil {
		d.logger.Error("ClaimAndFetchEvents: phase 3 Find failed", zap.Error(err))
		return nil, err
	}

	var claimedMessages []*models.OutboxMessage
	if err = claimedCursor.All(ctx, &claimedMessages); err != nil {
		d.logger.Error("ClaimAndFetchEvents: phase 3 decode failed", zap.Error(err))
		return nil, err
	}
	return claimedMessages, nil
}

func (d *OutboxDAO) MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			fields.FieldStatus: models.OutboxStatusProcessed,
			"processed_at":     time.Now(),
		},
	}
	_, err := d.outboxCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: id}, update)
	return err
}

func (d *OutboxDAO) IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error {
	update := bson.M{
		"$set": bson.M{
			fields.FieldStatus: models.OutboxStatusPending, // reset for retry
			"error":            errorMessage,
		},
		"$inc": bson.M{"retries": 1},
	}
	_, err := d.outboxCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: id}, update)
	return err
}
