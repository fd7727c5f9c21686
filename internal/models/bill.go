package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bill is one entry of the bill ledger: an amount owed or paid, identified by
// its external bill number. Bills are created and mutated by the billing
// subsystem; the reconciliation engine only reads them.
type Bill struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	BillNumber string             `bson:"bill_number"`
	Payment    *PaymentInfo       `bson:"payment"`
	Status     string             `bson:"status"`
	Date       time.Time          `bson:"date"`
	CreatedBy  string             `bson:"created_by,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// PaymentInfo records how a bill was settled. Paid is the authoritative amount
// a creation receipt must mirror.
type PaymentInfo struct {
	Paid       primitive.Decimal128 `bson:"paid"`
	Type       string               `bson:"type"`
	CardNumber string               `bson:"card_number,omitempty"`
	UTRNumber  string               `bson:"utr_number,omitempty"`
}
