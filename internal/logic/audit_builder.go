package logic

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chanreadmin/billingbackend/internal/constants"
	"github.com/chanreadmin/billingbackend/internal/dto"
	"github.com/chanreadmin/billingbackend/internal/models"
)

// AuditLogOption defines a function that configures an AuditLog object.
type AuditLogOption func(*models.AuditLog)

// WithReason is an option to add a reason to an audit log.
func WithReason(reason string) AuditLogOption {
	return func(log *models.AuditLog) {
		if reason != "" {
			log.Reason = reason
		}
	}
}

// NewAuditLog is the shared constructor for repair audit entries.
func NewAuditLog(actor, action, entityType, entityKey string, changes map[string]interface{}, opts ...AuditLogOption) *models.AuditLog {
	log := &models.AuditLog{
		ID:         primitive.NewObjectID(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityKey:  entityKey,
		Changes:    changes,
		Timestamp:  time.Now(),
	}
	for _, opt := range opts {
		opt(log)
	}
	return log
}

// buildCreateMissingAuditLog records one create-missing pass with its tallies.
func buildCreateMissingAuditLog(actor string, result *dto.CreateMissingResult) *models.AuditLog {
	created := make([]string, 0, len(result.CreatedReceipts))
	for _, r := range result.CreatedReceipts {
		created = append(created, r.ReceiptNumber)
	}
	return NewAuditLog(actor, constants.RepairActionCreateMissing, "receipt", "", map[string]interface{}{
		"created_count":       result.CreatedCount,
		"total_bills_checked": result.TotalBillsChecked,
		"created_receipts":    created,
	})
}

// buildFixAmountsAuditLog records one fix-amounts pass; entityKey is the bill
// number for single-bill repairs and empty for the full-ledger pass.
func buildFixAmountsAuditLog(actor, action, entityKey string, result *dto.FixAmountsResult) *models.AuditLog {
	fixes := make([]map[string]interface{}, 0, len(result.Fixed))
	for _, f := range result.Fixed {
		fixes = append(fixes, map[string]interface{}{
			"receipt_number": f.ReceiptNumber,
			"bill_number":    f.BillNumber,
			"before":         f.OldAmount,
			"after":          f.NewAmount,
		})
	}
	var opts []AuditLogOption
	if entityKey != "" {
		opts = append(opts, WithReason("operator requested single-bill repair"))
	}
	return NewAuditLog(actor, action, "receipt", entityKey, map[string]interface{}{
		"fixed_count":   len(result.Fixed),
		"skipped_count": len(result.Skipped),
		"total_checked": result.TotalChecked,
		"fixes":         fixes,
	}, opts...)
}
