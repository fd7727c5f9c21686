package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chanreadmin/billingbackend/internal/constants"
	"github.com/chanreadmin/billingbackend/internal/dao/mongodb"
	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/db"
	"github.com/chanreadmin/billingbackend/internal/dto"
	"github.com/chanreadmin/billingbackend/internal/models"
	"github.com/chanreadmin/billingbackend/pkg/receiptno"
)

// Guard scopes. Full-ledger passes hold a ledger-wide scope; single-bill
// repairs contend only on their bill.
const (
	ScopeMissingReceipts = "missing_receipts"
	ScopeZeroAmounts     = "zero_amounts"
)

// ScopeBill returns the guard scope for a single-bill repair.
func ScopeBill(billNumber string) string {
	return "bill:" + billNumber
}

// maxMintAttempts bounds receipt-number re-minting when an insert collides
// with the unique index.
const maxMintAttempts = 3

// RepairGuard serializes repair passes. Acquire fails with
// ErrRepairInProgress when another pass already holds the scope.
type RepairGuard interface {
	Acquire(ctx context.Context, scope string) error
	Release(ctx context.Context, scope string) error
}

// Reconciler is the reconciliation engine surface. The audit report is
// read-only; each repair mode runs under a guard scope and inside one
// transaction, so a pass either commits all of its writes or none.
type Reconciler interface {
	AuditReport(ctx context.Context) (*dto.AuditReport, error)
	CreateMissingReceipts(ctx context.Context, actor string) (*dto.CreateMissingResult, error)
	FixZeroAmountReceipts(ctx context.Context, actor string) (*dto.FixAmountsResult, error)
	FixBillReceipts(ctx context.Context, billNumber string, actor string) (*dto.FixAmountsResult, error)
}

type reconcileLogic struct {
	billRepo       repository.BillRepository
	receiptRepo    repository.ReceiptRepository
	auditRepo      repository.AuditLogRepository
	txnManager     db.TransactionManager
	guard          RepairGuard
	generator      *receiptno.Generator
	eventPublisher *RepairEventPublisher
	logger         *zap.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	billRepo repository.BillRepository,
	receiptRepo repository.ReceiptRepository,
	auditRepo repository.AuditLogRepository,
	txnManager db.TransactionManager,
	guard RepairGuard,
	generator *receiptno.Generator,
	eventPublisher *RepairEventPublisher,
	logger *zap.Logger,
) Reconciler {
	return &reconcileLogic{
		billRepo:       billRepo,
		receiptRepo:    receiptRepo,
		auditRepo:      auditRepo,
		txnManager:     txnManager,
		guard:          guard,
		generator:      generator,
		eventPublisher: eventPublisher,
		logger:         logger.Named("ReconcileLogic"),
	}
}

// AuditReport loads both ledger snapshots concurrently and classifies every
// drift category without writing anything.
func (l *reconcileLogic) AuditReport(ctx context.Context) (*dto.AuditReport, error) {
	var (
		bills    []*models.Bill
		receipts []*models.Receipt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = l.billRepo.ListBills(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		receipts, err = l.receiptRepo.ListReceipts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshots: %w", err)
	}

	idx := BuildReceiptIndex(receipts)
	report := &dto.AuditReport{
		TotalBills:    len(bills),
		TotalReceipts: len(receipts),
		GeneratedAt:   time.Now(),
	}
	for _, b := range ClassifyMissing(bills, idx) {
		report.BillsWithoutReceipts = append(report.BillsWithoutReceipts, dto.NewBillSummary(b))
	}
	for _, r := range ClassifyZeroAmount(receipts) {
		report.ZeroAmountReceipts = append(report.ZeroAmountReceipts, dto.NewReceiptSummary(r))
	}
	report.DuplicateReceipts = ClassifyDuplicates(bills, idx)
	for _, r := range ClassifyOrphans(bills, receipts) {
		report.OrphanedReceipts = append(report.OrphanedReceipts, dto.NewReceiptSummary(r))
	}

	l.logger.Info("audit report generated",
		zap.Int("totalBills", report.TotalBills),
		zap.Int("totalReceipts", report.TotalReceipts),
		zap.Int("billsWithoutReceipts", len(report.BillsWithoutReceipts)),
		zap.Int("zeroAmountReceipts", len(report.ZeroAmountReceipts)),
		zap.Int("duplicateReceipts", len(report.DuplicateReceipts)),
		zap.Int("orphanedReceipts", len(report.OrphanedReceipts)))
	return report, nil
}

// CreateMissingReceipts synthesizes one creation receipt for every paid bill
// that has no receipt at all. The snapshot load, every insert, the audit entry
// and the outbox event share one transaction.
func (l *reconcileLogic) CreateMissingReceipts(ctx context.Context, actor string) (*dto.CreateMissingResult, error) {
	if err := l.guard.Acquire(ctx, ScopeMissingReceipts); err != nil {
		return nil, err
	}
	defer l.release(ctx, ScopeMissingReceipts)

	res, err := l.txnManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		bills, err := l.billRepo.ListBills(sessCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bills: %w", err)
		}
		receipts, err := l.receiptRepo.ListReceipts(sessCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to list receipts: %w", err)
		}

		result := &dto.CreateMissingResult{TotalBillsChecked: len(bills)}
		for _, bill := range ClassifyMissing(bills, BuildReceiptIndex(receipts)) {
			receipt, err := l.synthesizeCreationReceipt(sessCtx, bill, actor)
			if err != nil {
				return nil, err
			}
			result.CreatedCount++
			result.CreatedReceipts = append(result.CreatedReceipts, dto.NewReceiptSummary(receipt))
			l.logger.Info("created missing creation receipt",
				zap.String("billNumber", bill.BillNumber),
				zap.String("receiptNumber", receipt.ReceiptNumber))
		}

		if result.CreatedCount > 0 {
			l.auditRepo.Create(sessCtx, buildCreateMissingAuditLog(actor, result))
			if err := l.publishRepairEvent(sessCtx, constants.RepairActionCreateMissing, "", map[string]interface{}{
				"created_count":       result.CreatedCount,
				"total_bills_checked": result.TotalBillsChecked,
			}); err != nil {
				return nil, err
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*dto.CreateMissingResult), nil
}

// FixZeroAmountReceipts corrects every receipt whose amount is not strictly
// positive, deriving the correct amount from the owning bill. Receipts that
// cannot be corrected are returned as skips with a reason, never written.
func (l *reconcileLogic) FixZeroAmountReceipts(ctx context.Context, actor string) (*dto.FixAmountsResult, error) {
	if err := l.guard.Acquire(ctx, ScopeZeroAmounts); err != nil {
		return nil, err
	}
	defer l.release(ctx, ScopeZeroAmounts)

	res, err := l.txnManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		receipts, err := l.receiptRepo.ListReceipts(sessCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to list receipts: %w", err)
		}

		candidates := ClassifyZeroAmount(receipts)
		result := &dto.FixAmountsResult{TotalChecked: len(candidates)}
		for _, receipt := range candidates {
			bill, err := l.billRepo.GetBillByNumber(sessCtx, receipt.BillNumber)
			if err != nil {
				if errors.Is(err, mongodb.ErrNotFound) {
					result.Skipped = append(result.Skipped, newSkippedReceipt(receipt, "orphaned"))
					continue
				}
				return nil, fmt.Errorf("failed to load bill %s: %w", receipt.BillNumber, err)
			}
			if err := l.applyCorrection(sessCtx, receipt, bill, result); err != nil {
				return nil, err
			}
		}

		if len(result.Fixed) > 0 {
			l.auditRepo.Create(sessCtx, buildFixAmountsAuditLog(actor, constants.RepairActionFixZeroAmounts, "", result))
			if err := l.publishRepairEvent(sessCtx, constants.RepairActionFixZeroAmounts, "", map[string]interface{}{
				"fixed_count":   len(result.Fixed),
				"skipped_count": len(result.Skipped),
			}); err != nil {
				return nil, err
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*dto.FixAmountsResult), nil
}

// FixBillReceipts re-derives the correct amount for every receipt of one bill
// and corrects the ones that are off, zero or not. A missing bill is reported
// as ErrBillNotFound so callers can distinguish it from a failing repair.
func (l *reconcileLogic) FixBillReceipts(ctx context.Context, billNumber string, actor string) (*dto.FixAmountsResult, error) {
	if err := l.guard.Acquire(ctx, ScopeBill(billNumber)); err != nil {
		return nil, err
	}
	defer l.release(ctx, ScopeBill(billNumber))

	res, err := l.txnManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		bill, err := l.billRepo.GetBillByNumber(sessCtx, billNumber)
		if err != nil {
			if errors.Is(err, mongodb.ErrNotFound) {
				return nil, fmt.Errorf("bill %s: %w", billNumber, ErrBillNotFound)
			}
			return nil, fmt.Errorf("failed to load bill %s: %w", billNumber, err)
		}
		receipts, err := l.receiptRepo.GetReceiptsByBillNumber(sessCtx, billNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to load receipts of bill %s: %w", billNumber, err)
		}

		result := &dto.FixAmountsResult{TotalChecked: len(receipts)}
		for _, receipt := range receipts {
			if err := l.applyCorrection(sessCtx, receipt, bill, result); err != nil {
				return nil, err
			}
		}

		if len(result.Fixed) > 0 {
			l.auditRepo.Create(sessCtx, buildFixAmountsAuditLog(actor, constants.RepairActionFixBill, billNumber, result))
			if err := l.publishRepairEvent(sessCtx, constants.RepairActionFixBill, billNumber, map[string]interface{}{
				"fixed_count":   len(result.Fixed),
				"skipped_count": len(result.Skipped),
			}); err != nil {
				return nil, err
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*dto.FixAmountsResult), nil
}

// synthesizeCreationReceipt builds and inserts a creation receipt mirroring
// the bill's payment. A duplicate-key collision on the receipt number is
// retried with a freshly minted number.
func (l *reconcileLogic) synthesizeCreationReceipt(ctx context.Context, bill *models.Bill, actor string) (*models.Receipt, error) {
	now := time.Now()
	receipt := &models.Receipt{
		BillNumber:    bill.BillNumber,
		BillingID:     bill.ID,
		Type:          constants.ReceiptTypeCreation,
		Amount:        bill.Payment.Paid,
		PaymentMethod: bill.Payment,
		NewStatus:     bill.Status,
		Remarks:       constants.ReceiptRemarksAutoRepair,
		CreatedBy:     actor,
		Date:          bill.Date,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for attempt := 1; ; attempt++ {
		number, err := l.generator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to mint receipt number: %w", err)
		}
		receipt.ReceiptNumber = number

		id, err := l.receiptRepo.CreateReceipt(ctx, receipt)
		if err == nil {
			receipt.ID = id
			return receipt, nil
		}
		if !mongo.IsDuplicateKeyError(err) || attempt >= maxMintAttempts {
			return nil, fmt.Errorf("failed to insert receipt for bill %s: %w", bill.BillNumber, err)
		}
		l.logger.Warn("receipt number collision, re-minting",
			zap.String("billNumber", bill.BillNumber),
			zap.String("receiptNumber", number),
			zap.Int("attempt", attempt))
	}
}

// applyCorrection runs the correction decision for one receipt and writes the
// amount when, and only when, the outcome says to.
func (l *reconcileLogic) applyCorrection(ctx context.Context, receipt *models.Receipt, bill *models.Bill, result *dto.FixAmountsResult) error {
	correct, outcome := ComputeCorrectAmount(receipt, bill)
	switch outcome {
	case CorrectionApply:
		oldAmount := receipt.Amount.String()
		if err := l.receiptRepo.UpdateReceipt(ctx, receipt.ID, repository.WithAmount(correct)); err != nil {
			return fmt.Errorf("failed to update receipt %s: %w", receipt.ReceiptNumber, err)
		}
		result.Fixed = append(result.Fixed, dto.FixedReceipt{
			ReceiptNumber: receipt.ReceiptNumber,
			BillNumber:    receipt.BillNumber,
			OldAmount:     oldAmount,
			NewAmount:     correct.String(),
			Type:          receipt.Type,
		})
		l.logger.Info("corrected receipt amount",
			zap.String("receiptNumber", receipt.ReceiptNumber),
			zap.String("billNumber", receipt.BillNumber),
			zap.String("oldAmount", oldAmount),
			zap.String("newAmount", correct.String()))
	case CorrectionAlreadyCorrect:
		// nothing to write
	default:
		result.Skipped = append(result.Skipped, newSkippedReceipt(receipt, outcome.String()))
		l.logger.Warn("receipt not correctable",
			zap.String("receiptNumber", receipt.ReceiptNumber),
			zap.String("billNumber", receipt.BillNumber),
			zap.String("reason", outcome.String()))
	}
	return nil
}

func (l *reconcileLogic) publishRepairEvent(ctx context.Context, action, scope string, tallies map[string]interface{}) error {
	if l.eventPublisher == nil {
		return nil
	}
	return l.eventPublisher.PublishRepairEvent(ctx, action, scope, tallies)
}

// release logs a failed guard release instead of surfacing it; the lock TTL
// is the fallback.
func (l *reconcileLogic) release(ctx context.Context, scope string) {
	if err := l.guard.Release(ctx, scope); err != nil {
		l.logger.Warn("failed to release repair guard", zap.String("scope", scope), zap.Error(err))
	}
}

func newSkippedReceipt(receipt *models.Receipt, reason string) dto.SkippedReceipt {
	return dto.SkippedReceipt{
		ReceiptNumber: receipt.ReceiptNumber,
		BillNumber:    receipt.BillNumber,
		Type:          receipt.Type,
		Reason:        reason,
	}
}
