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
	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/models"
)

func NewReceiptDAO(db *mongo.Database, logger *zap.Logger) *ReceiptDAO {
	return &ReceiptDAO{
		receiptsCollection: db.Collection(CollectionReceipts),
		logger:             logger.Named("ReceiptDAO"),
	}
}

type ReceiptDAO struct {
	receiptsCollection *mongo.Collection
	logger             *zap.Logger
}

// ListReceipts returns the full receipt ledger ordered by receipt date.
func (d *ReceiptDAO) ListReceipts(ctx context.Context) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	findOptions := options.Find().SetSort(bson.D{{Key: fields.FieldDate, Value: 1}})
	cursor, err := d.receiptsCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		d.logger.Error("ListReceipts: Find failed", zap.Error(err))
		return nil, err
	}
	if err := cursor.All(ctx, &receipts); err != nil {
		d.logger.Error("ListReceipts: cursor.All failed", zap.Error(err))
		return nil, err
	}
	return receipts, nil
}

// GetReceiptsByBillNumber returns every receipt referencing the given bill
// number, whether or not that bill still exists.
func (d *ReceiptDAO) GetReceiptsByBillNumber(ctx context.Context, billNumber string) ([]*models.Receipt, error) {
	var receipts []*models.Receipt
	findOptions := options.Find().SetSort(bson.D{{Key: fields.FieldDate, Value: 1}})
	cursor, err := d.receiptsCollection.Find(ctx, bson.M{fields.FieldBillNumber: billNumber}, findOptions)
	if err != nil {
		d.logger.Error("GetReceiptsByBillNumber: Find failed", zap.Error(err), zap.String("billNumber", billNumber))
		return nil, err
	}
	if err := cursor.All(ctx, &receipts); err != nil {
		d.logger.Error("GetReceiptsByBillNumber: cursor.All failed", zap.Error(err), zap.String("billNumber", billNumber))
		return nil, err
	}
	return receipts, nil
}

// CreateReceipt inserts a single receipt. A unique index on receipt_number
// turns generator collisions into mongo duplicate-key errors, which callers
// treat as retryable.
func (d *ReceiptDAO) CreateReceipt(ctx context.Context, receipt *models.Receipt) (primitive.ObjectID, error) {
	res, err := d.receiptsCollection.InsertOne(ctx, receipt)
	if err != nil {
		d.logger.Error("CreateReceipt: InsertOne failed", zap.Error(err), zap.String("receiptNumber", receipt.ReceiptNumber))
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateReceipt updates a single receipt using functional options. Only the
// whitelisted fields can be set; updated_at is stamped on every write.
func (d *ReceiptDAO) UpdateReceipt(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
	updateData := repository.NewUpdateOptions()
	for _, opt := range opts {
		opt(updateData)
	}

	if len(updateData.SetFields) == 0 {
		return nil // Nothing to do.
	}
	updateData.SetFields[fields.FieldUpdatedAt] = time.Now()

	res, err := d.receiptsCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: id}, bson.M{"$set": updateData.SetFields})
	if err != nil {
		d.logger.Error("UpdateReceipt: UpdateOne failed", zap.Error(err), zap.Stringer("id", id))
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique receipt_number index and the bill_number
// lookup index. Called once at startup.
func (d *ReceiptDAO) EnsureIndexes(ctx context.Context) error {
	_, err := d.receiptsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fields.FieldReceiptNumber, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: fields.FieldBillNumber, Value: 1}},
		},
	})
	if err != nil {
		d.logger.Error("EnsureIndexes: CreateMany failed", zap.Error(err))
	}
	return err
}
