package dto

// CreateMissingResult is the tally returned by the create-missing repair mode.
type CreateMissingResult struct {
	CreatedCount      int              `json:"createdCount"`
	TotalBillsChecked int              `json:"totalBillsChecked"`
	CreatedReceipts   []ReceiptSummary `json:"createdReceipts,omitempty"`
}

// FixedReceipt records one in-place amount correction.
type FixedReceipt struct {
	ReceiptNumber string `json:"receiptNumber"`
	BillNumber    string `json:"billNumber"`
	OldAmount     string `json:"oldAmount"`
	NewAmount     string `json:"newAmount"`
	Type          string `json:"type"`
}

// SkippedReceipt records a receipt the fix pass examined but could not
// correct, with a stable machine-readable reason so manual-review tooling can
// be built against it.
type SkippedReceipt struct {
	ReceiptNumber string `json:"receiptNumber"`
	BillNumber    string `json:"billNumber"`
	Type          string `json:"type"`
	Reason        string `json:"reason"`
}

// FixAmountsResult is the tally returned by the fix-amounts repair modes.
type FixAmountsResult struct {
	Fixed        []FixedReceipt   `json:"fixed"`
	Skipped      []SkippedReceipt `json:"skipped,omitempty"`
	TotalChecked int              `json:"totalChecked"`
}
