package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/logic"
)

// ReconService is the operation surface of the reconciliation engine. It
// validates inputs, delegates to the logic layer and maps results and errors
// to response envelopes.
type ReconService struct {
	reconciler logic.Reconciler
	logger     *zap.Logger
}

func NewReconService(reconciler logic.Reconciler, logger *zap.Logger) *ReconService {
	return &ReconService{
		reconciler: reconciler,
		logger:     logger.Named("ReconService"),
	}
}

func (s *ReconService) AuditReport(ctx context.Context) *Response {
	report, err := s.reconciler.AuditReport(ctx)
	if err != nil {
		s.logger.Error("AuditReport: reconciler failed", zap.Error(err))
		return s.mapError(err)
	}
	return ResponseSuccess("audit report generated", report)
}

func (s *ReconService) CreateMissingReceipts(ctx context.Context, actor string) *Response {
	result, err := s.reconciler.CreateMissingReceipts(ctx, actor)
	if err != nil {
		s.logger.Error("CreateMissingReceipts: reconciler failed", zap.Error(err))
		return s.mapError(err)
	}
	return ResponseSuccess(
		fmt.Sprintf("created %d missing receipts across %d bills", result.CreatedCount, result.TotalBillsChecked),
		result)
}

func (s *ReconService) FixZeroAmountReceipts(ctx context.Context, actor string) *Response {
	result, err := s.reconciler.FixZeroAmountReceipts(ctx, actor)
	if err != nil {
		s.logger.Error("FixZeroAmountReceipts: reconciler failed", zap.Error(err))
		return s.mapError(err)
	}
	return ResponseSuccess(
		fmt.Sprintf("fixed %d of %d zero amount receipts", len(result.Fixed), result.TotalChecked),
		result)
}

func (s *ReconService) FixBillReceipts(ctx context.Context, billNumber string, actor string) *Response {
	if billNumber == "" {
		return ResponseError(CodeInternal, errors.New("bill number is required"))
	}
	result, err := s.reconciler.FixBillReceipts(ctx, billNumber, actor)
	if err != nil {
		s.logger.Error("FixBillReceipts: reconciler failed",
			zap.String("billNumber", billNumber), zap.Error(err))
		return s.mapError(err)
	}
	return ResponseSuccess(
		fmt.Sprintf("fixed %d of %d receipts for bill %s", len(result.Fixed), result.TotalChecked, billNumber),
		result)
}

func (s *ReconService) mapError(err error) *Response {
	switch {
	case errors.Is(err, logic.ErrBillNotFound):
		resp := ResponseError(CodeNotFound, err)
		resp.Message = "bill not found"
		return resp
	case errors.Is(err, logic.ErrRepairInProgress):
		resp := ResponseError(CodeConflict, err)
		resp.Message = "another repair pass is already running"
		return resp
	default:
		resp := ResponseError(CodeInternal, err)
		resp.Message = "operation failed"
		return resp
	}
}
