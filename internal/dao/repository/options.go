package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chanreadmin/billingbackend/internal/dao/fields"
)

// UpdateOptions holds the fields for a MongoDB update operation, used with the
// functional options pattern. Exposing only whitelisted setters keeps repair
// writes surgical: an amount fix touches the amount and nothing else.
type UpdateOptions struct {
	SetFields bson.M
}

// NewUpdateOptions creates a new instance of UpdateOptions.
func NewUpdateOptions() *UpdateOptions {
	return &UpdateOptions{
		SetFields: bson.M{},
	}
}

// UpdateOption defines a function that can modify the UpdateOptions.
type UpdateOption func(*UpdateOptions)

// WithAmount is an option to set a receipt's amount field.
func WithAmount(amount primitive.Decimal128) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldReceiptAmount] = amount
	}
}

// WithRemarks is an option to set a receipt's remarks field.
func WithRemarks(remarks string) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldReceiptRemarks] = remarks
	}
}

// WithNewStatus is an option to set a receipt's recorded bill status.
func WithNewStatus(status string) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldReceiptNewStatus] = status
	}
}
