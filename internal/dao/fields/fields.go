package fields

const (
	FieldObjectId  = "_id"
	FieldCreatedAt = "created_at"
	FieldCreatedBy = "created_by"
	FieldUpdatedAt = "updated_at"
	FieldStatus    = "status"
	FieldDate      = "date"

	FieldBillNumber  = "bill_number"
	FieldBillPayment = "payment"

	FieldReceiptNumber        = "receipt_number"
	FieldReceiptBillingID     = "billing_id"
	FieldReceiptType          = "type"
	FieldReceiptAmount        = "amount"
	FieldReceiptPaymentMethod = "payment_method"
	FieldReceiptNewStatus     = "new_status"
	FieldReceiptRemarks       = "remarks"
)
