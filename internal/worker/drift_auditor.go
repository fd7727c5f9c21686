package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/conf"
	"github.com/chanreadmin/billingbackend/internal/logic"
)

// DriftAuditor periodically runs the read-only audit report and logs the
// drift tallies. It never repairs anything; it exists so ledger drift shows
// up in the logs before an operator goes looking for it.
type DriftAuditor struct {
	reconciler logic.Reconciler
	logger     *zap.Logger
	interval   time.Duration
}

// NewDriftAuditor creates a new instance of the drift auditor.
func NewDriftAuditor(reconciler logic.Reconciler, logger *zap.Logger, cfg *conf.WorkerConfig) *DriftAuditor {
	return &DriftAuditor{
		reconciler: reconciler,
		logger:     logger.Named("DriftAuditor"),
		interval:   time.Duration(cfg.DriftAudit.IntervalSeconds) * time.Second,
	}
}

// Start begins the audit loop and blocks until the context is cancelled.
func (a *DriftAuditor) Start(ctx context.Context) {
	a.logger.Info("Drift auditor started", zap.Duration("interval", a.interval))
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runAudit(ctx)
		case <-ctx.Done():
			a.logger.Info("Drift auditor shutting down")
			return
		}
	}
}

func (a *DriftAuditor) runAudit(ctx context.Context) {
	report, err := a.reconciler.AuditReport(ctx)
	if err != nil {
		a.logger.Error("Scheduled audit failed", zap.Error(err))
		return
	}

	drift := len(report.BillsWithoutReceipts) + len(report.ZeroAmountReceipts) +
		len(report.DuplicateReceipts) + len(report.OrphanedReceipts)
	if drift == 0 {
		a.logger.Info("Ledgers reconciled, no drift",
			zap.Int("totalBills", report.TotalBills),
			zap.Int("totalReceipts", report.TotalReceipts))
		return
	}

	a.logger.Warn("Ledger drift detected",
		zap.Int("billsWithoutReceipts", len(report.BillsWithoutReceipts)),
		zap.Int("zeroAmountReceipts", len(report.ZeroAmountReceipts)),
		zap.Int("duplicateReceipts", len(report.DuplicateReceipts)),
		zap.Int("orphanedReceipts", len(report.OrphanedReceipts)))
}

var _ Worker = (*DriftAuditor)(nil)
