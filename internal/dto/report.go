package dto

import (
	"time"

	"github.com/chanreadmin/billingbackend/internal/models"
)

// BillSummary carries enough of a bill for a human or downstream tool to decide
// remediation without re-querying the ledger.
type BillSummary struct {
	BillNumber  string    `json:"billNumber"`
	AmountPaid  string    `json:"amountPaid"`
	PaymentType string    `json:"paymentType,omitempty"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// ReceiptSummary is the report rendering of a receipt. Amounts are rendered as
// strings to keep the JSON envelope independent of the storage decimal type.
type ReceiptSummary struct {
	ReceiptNumber string    `json:"receiptNumber"`
	BillNumber    string    `json:"billNumber"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Date          time.Time `json:"date"`
}

// DuplicateGroup lists every creation receipt of a bill that has more than one.
// Detection only: choosing which receipt survives is a manual decision.
type DuplicateGroup struct {
	BillNumber     string   `json:"billNumber"`
	Count          int      `json:"count"`
	ReceiptNumbers []string `json:"receiptNumbers"`
}

// AuditReport is the read-only output of a full reconciliation pass.
type AuditReport struct {
	TotalBills           int              `json:"totalBills"`
	TotalReceipts        int              `json:"totalReceipts"`
	BillsWithoutReceipts []BillSummary    `json:"billsWithoutReceipts"`
	ZeroAmountReceipts   []ReceiptSummary `json:"zeroAmountReceipts"`
	DuplicateReceipts    []DuplicateGroup `json:"duplicateReceipts"`
	OrphanedReceipts     []ReceiptSummary `json:"orphanedReceipts"`
	GeneratedAt          time.Time        `json:"generatedAt"`
}

// NewBillSummary renders a bill for the audit report.
func NewBillSummary(bill *models.Bill) BillSummary {
	s := BillSummary{
		BillNumber: bill.BillNumber,
		Status:     bill.Status,
		Date:       bill.Date,
		CreatedBy:  bill.CreatedBy,
	}
	if bill.Payment != nil {
		s.AmountPaid = bill.Payment.Paid.String()
		s.PaymentType = bill.Payment.Type
	}
	return s
}

// NewReceiptSummary renders a receipt for the audit report.
func NewReceiptSummary(receipt *models.Receipt) ReceiptSummary {
	return ReceiptSummary{
		ReceiptNumber: receipt.ReceiptNumber,
		BillNumber:    receipt.BillNumber,
		Type:          receipt.Type,
		Amount:        receipt.Amount.String(),
		Date:          receipt.Date,
	}
}
