package constants

const (
	ReceiptTypeCreation     = "creation"
	ReceiptTypePayment      = "payment"
	ReceiptTypeCancellation = "cancellation"
)

// ReceiptRemarksAutoRepair tags receipts synthesized by the repair engine so
// they are distinguishable from receipts written by the billing subsystem.
const ReceiptRemarksAutoRepair = "auto-generated by ledger reconciliation"

const (
	RepairActionCreateMissing  = "CREATE_MISSING_RECEIPTS"
	RepairActionFixZeroAmounts = "FIX_ZERO_AMOUNT_RECEIPTS"
	RepairActionFixBill        = "FIX_BILL_RECEIPTS"
)
