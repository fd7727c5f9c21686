package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Receipt documents a bill-related event (creation, payment, cancellation).
// BillNumber is a foreign key by value only; nothing at the storage layer
// guarantees it resolves, which is exactly why the reconciliation engine
// exists. BillingID is a secondary reference to the owning bill's _id.
type Receipt struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	ReceiptNumber string               `bson:"receipt_number"`
	BillNumber    string               `bson:"bill_number"`
	BillingID     primitive.ObjectID   `bson:"billing_id,omitempty"`
	Type          string               `bson:"type"`
	Amount        primitive.Decimal128 `bson:"amount"`
	PaymentMethod *PaymentInfo         `bson:"payment_method,omitempty"`
	NewStatus     string               `bson:"new_status,omitempty"`
	Remarks       string               `bson:"remarks,omitempty"`
	CreatedBy     string               `bson:"created_by,omitempty"`
	Date          time.Time            `bson:"date"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}
