package logic

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chanreadmin/billingbackend/internal/constants"
	"github.com/chanreadmin/billingbackend/internal/dto"
	"github.com/chanreadmin/billingbackend/internal/helper"
	"github.com/chanreadmin/billingbackend/internal/models"
)

// The analyzer is a set of pure functions over two ledger snapshots. It never
// touches storage, so the audit report and every repair mode share the exact
// same classification rules and those rules stay testable without a database.

// ReceiptIndex is a multi-valued index of receipts keyed by bill number.
type ReceiptIndex map[string][]*models.Receipt

// BuildReceiptIndex indexes receipts by bill number so classification avoids
// rescanning the receipt snapshot per bill.
func BuildReceiptIndex(receipts []*models.Receipt) ReceiptIndex {
	idx := make(ReceiptIndex, len(receipts))
	for _, r := range receipts {
		idx[r.BillNumber] = append(idx[r.BillNumber], r)
	}
	return idx
}

// ClassifyMissing returns, in bill order, every bill with a positive paid
// amount and no receipt at all. These are the candidates for creation-receipt
// synthesis.
func ClassifyMissing(bills []*models.Bill, idx ReceiptIndex) []*models.Bill {
	var missing []*models.Bill
	for _, b := range bills {
		if b.Payment == nil || !helper.Decimal128IsPositive(b.Payment.Paid) {
			continue
		}
		if len(idx[b.BillNumber]) == 0 {
			missing = append(missing, b)
		}
	}
	return missing
}

// ClassifyZeroAmount returns every receipt whose amount is not strictly
// positive. Unparseable amounts classify as zero rather than as money.
func ClassifyZeroAmount(receipts []*models.Receipt) []*models.Receipt {
	var zero []*models.Receipt
	for _, r := range receipts {
		if !helper.Decimal128IsPositive(r.Amount) {
			zero = append(zero, r)
		}
	}
	return zero
}

// CorrectionOutcome is the stable signal ComputeCorrectAmount returns so that
// skipped receipts are surfaced with a reason instead of silently dropped.
type CorrectionOutcome int

const (
	// CorrectionApply means the correct amount should be written.
	CorrectionApply CorrectionOutcome = iota
	// CorrectionAlreadyCorrect means the recorded amount already matches.
	CorrectionAlreadyCorrect
	// CorrectionUnsupportedType means the receipt type has no deterministic
	// correction rule (payment receipts) and needs manual review.
	CorrectionUnsupportedType
	// CorrectionInvalidAmount means the computed correct amount is zero or
	// negative; writing it would replace one invalid state with another.
	CorrectionInvalidAmount
)

func (o CorrectionOutcome) String() string {
	switch o {
	case CorrectionApply:
		return "apply"
	case CorrectionAlreadyCorrect:
		return "already_correct"
	case CorrectionUnsupportedType:
		return "unsupported_type"
	case CorrectionInvalidAmount:
		return "invalid_amount"
	default:
		return "unknown"
	}
}

// ComputeCorrectAmount decides what a receipt's amount should be, given its
// owning bill. Creation and cancellation receipts must mirror the bill's paid
// amount; payment receipts are not automatically correctable. A correction is
// applied only when the correct amount is positive and differs from what is
// recorded.
func ComputeCorrectAmount(receipt *models.Receipt, bill *models.Bill) (primitive.Decimal128, CorrectionOutcome) {
	switch receipt.Type {
	case constants.ReceiptTypeCreation, constants.ReceiptTypeCancellation:
	default:
		return primitive.Decimal128{}, CorrectionUnsupportedType
	}

	if bill.Payment == nil {
		return primitive.Decimal128{}, CorrectionInvalidAmount
	}
	correct := bill.Payment.Paid
	if !helper.Decimal128IsPositive(correct) {
		return primitive.Decimal128{}, CorrectionInvalidAmount
	}
	if helper.Decimal128Equal(correct, receipt.Amount) {
		return correct, CorrectionAlreadyCorrect
	}
	return correct, CorrectionApply
}

// ClassifyDuplicates finds bills referenced by more than one creation receipt
// and returns one group per offending bill, listing every receipt number.
// Detection only: which duplicate survives is a manual decision.
func ClassifyDuplicates(bills []*models.Bill, idx ReceiptIndex) []dto.DuplicateGroup {
	var groups []dto.DuplicateGroup
	for _, b := range bills {
		var creationNumbers []string
		for _, r := range idx[b.BillNumber] {
			if r.Type == constants.ReceiptTypeCreation {
				creationNumbers = append(creationNumbers, r.ReceiptNumber)
			}
		}
		if len(creationNumbers) > 1 {
			groups = append(groups, dto.DuplicateGroup{
				BillNumber:     b.BillNumber,
				Count:          len(creationNumbers),
				ReceiptNumbers: creationNumbers,
			})
		}
	}
	return groups
}

// ClassifyOrphans returns every receipt whose bill number resolves to no bill
// in the snapshot, regardless of the receipt's type or amount.
func ClassifyOrphans(bills []*models.Bill, receipts []*models.Receipt) []*models.Receipt {
	known := make(map[string]struct{}, len(bills))
	for _, b := range bills {
		known[b.BillNumber] = struct{}{}
	}
	var orphans []*models.Receipt
	for _, r := range receipts {
		if _, ok := known[r.BillNumber]; !ok {
			orphans = append(orphans, r)
		}
	}
	return orphans
}
