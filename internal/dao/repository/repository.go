package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chanreadmin/billingbackend/internal/models"
)

// BillRepository is the read-only snapshot loader for the bill ledger.
// The engine never writes bills.
type BillRepository interface {
	ListBills(ctx context.Context) ([]*models.Bill, error)
	GetBillByNumber(ctx context.Context, billNumber string) (*models.Bill, error)
}

// ReceiptRepository loads and mutates the receipt ledger. Mutations are limited
// to creating receipts and updating fields in place; receipts are never deleted.
type ReceiptRepository interface {
	ListReceipts(ctx context.Context) ([]*models.Receipt, error)
	GetReceiptsByBillNumber(ctx context.Context, billNumber string) ([]*models.Receipt, error)
	CreateReceipt(ctx context.Context, receipt *models.Receipt) (primitive.ObjectID, error)
	UpdateReceipt(ctx context.Context, id primitive.ObjectID, opts ...UpdateOption) error
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type OutboxRepository interface {
	Create(ctx context.Context, message *models.OutboxMessage) error
	ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error
	IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error
}
