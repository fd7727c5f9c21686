package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/models"
)

func NewAuditLogDAO(db *mongo.Database, logger *zap.Logger) *AuditLogDAO {
	return &AuditLogDAO{
		collection: db.Collection(CollectionAuditLogs),
		logger:     logger.Named("AuditLogDAO"),
	}
}

type AuditLogDAO struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func (d *AuditLogDAO) Create(ctx context.Context, log *models.AuditLog) error {
	_, err := d.collection.InsertOne(ctx, log)
	if err != nil {
		// Logged but not returned: losing an audit entry must not roll back
		// the repair it describes.
		d.logger.Error("Create: InsertOne failed", zap.Error(err))
	}
	return nil
}
