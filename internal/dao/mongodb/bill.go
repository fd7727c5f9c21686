package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/dao/fields"
	"github.com/chanreadmin/billingbackend/internal/models"
)

func NewBillDAO(db *mongo.Database, logger *zap.Logger) *BillDAO {
	return &BillDAO{
		billsCollection: db.Collection(CollectionBills),
		logger:          logger.Named("BillDAO"),
	}
}

type BillDAO struct {
	billsCollection *mongo.Collection
	logger          *zap.Logger
}

// ListBills returns the full bill ledger ordered by bill date. When called with
// a session context the read shares the transaction's snapshot, so the
// classification is made against the same state the repair writes into.
func (d *BillDAO) ListBills(ctx context.Context) ([]*models.Bill, error) {
	var bills []*models.Bill
	findOptions := options.Find().SetSort(bson.D{{Key: fields.FieldDate, Value: 1}})
	cursor, err := d.billsCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		d.logger.Error("ListBills: Find failed", zap.Error(err))
		return nil, err
	}
	if err := cursor.All(ctx, &bills); err != nil {
		d.logger.Error("ListBills: cursor.All failed", zap.Error(err))
		return nil, err
	}
	return bills, nil
}

// GetBillByNumber retrieves a single bill by its external bill number.
func (d *BillDAO) GetBillByNumber(ctx context.Context, billNumber string) (*models.Bill, error) {
	var bill models.Bill
	err := d.billsCollection.FindOne(ctx, bson.M{fields.FieldBillNumber: billNumber}).Decode(&bill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		d.logger.Error("GetBillByNumber: FindOne failed", zap.Error(err), zap.String("billNumber", billNumber))
		return nil, err
	}
	return &bill, nil
}
