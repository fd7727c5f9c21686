package logic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/constants"
	"github.com/chanreadmin/billingbackend/internal/dao/fields"
	"github.com/chanreadmin/billingbackend/internal/dao/mongodb"
	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/db"
	"github.com/chanreadmin/billingbackend/internal/models"
	"github.com/chanreadmin/billingbackend/pkg/receiptno"
)

func newTestReconciler(t *testing.T, billRepo *mockBillRepository, receiptRepo *mockReceiptRepository, auditRepo *mockAuditLogRepository, outboxRepo *mockOutboxRepository, guard RepairGuard) Reconciler {
	t.Helper()
	gen, err := receiptno.NewGenerator(1)
	require.NoError(t, err)
	return NewReconciler(
		billRepo,
		receiptRepo,
		auditRepo,
		db.NewNoOpTransactionManager(),
		guard,
		gen,
		NewRepairEventPublisher(outboxRepo, RepairEventTopic("billing.repairs")),
		zap.NewNop(),
	)
}

// updatesAmountTo applies the captured update options and checks the amount
// they would write.
func updatesAmountTo(want string) func(opts []repository.UpdateOption) bool {
	return func(opts []repository.UpdateOption) bool {
		o := repository.NewUpdateOptions()
		for _, opt := range opts {
			opt(o)
		}
		amount, ok := o.SetFields[fields.FieldReceiptAmount].(primitive.Decimal128)
		return ok && amount.String() == want
	}
}

func TestReconcileLogic_AuditReport(t *testing.T) {
	t.Run("ClassifiesAllDriftCategories", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, newMockAuditLogRepository(), newMockOutboxRepository(), &allowAllGuard{})

		b1 := paidBill(t, "B1", "500")
		b3 := paidBill(t, "B3", "400")
		receipts := []*models.Receipt{
			receipt(t, "REC00000001", "B3", constants.ReceiptTypeCreation, "400"),
			receipt(t, "REC00000002", "B3", constants.ReceiptTypeCreation, "0"),
			receipt(t, "REC00000003", "B9", constants.ReceiptTypeCreation, "50"),
		}
		billRepo.On("ListBills", mock.Anything).Return([]*models.Bill{b1, b3}, nil).Once()
		receiptRepo.On("ListReceipts", mock.Anything).Return(receipts, nil).Once()

		report, err := l.AuditReport(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, report.TotalBills)
		assert.Equal(t, 3, report.TotalReceipts)
		require.Len(t, report.BillsWithoutReceipts, 1)
		assert.Equal(t, "B1", report.BillsWithoutReceipts[0].BillNumber)
		require.Len(t, report.ZeroAmountReceipts, 1)
		assert.Equal(t, "REC00000002", report.ZeroAmountReceipts[0].ReceiptNumber)
		require.Len(t, report.DuplicateReceipts, 1)
		assert.Equal(t, "B3", report.DuplicateReceipts[0].BillNumber)
		require.Len(t, report.OrphanedReceipts, 1)
		assert.Equal(t, "REC00000003", report.OrphanedReceipts[0].ReceiptNumber)
		billRepo.AssertExpectations(t)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("LoadFailure", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, newMockAuditLogRepository(), newMockOutboxRepository(), &allowAllGuard{})

		billRepo.On("ListBills", mock.Anything).Return(nil, errors.New("connection reset"))
		receiptRepo.On("ListReceipts", mock.Anything).Return(nil, nil).Maybe()

		_, err := l.AuditReport(context.Background())

		assert.Error(t, err)
	})
}

func TestReconcileLogic_CreateMissingReceipts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, &allowAllGuard{})

		b1 := paidBill(t, "B1", "500")
		b2 := paidBill(t, "B2", "200")
		existing := receipt(t, "REC00000001", "B2", constants.ReceiptTypeCreation, "200")
		billRepo.On("ListBills", mock.Anything).Return([]*models.Bill{b1, b2}, nil).Once()
		receiptRepo.On("ListReceipts", mock.Anything).Return([]*models.Receipt{existing}, nil).Once()

		receiptRepo.On("CreateReceipt", mock.Anything, mock.MatchedBy(func(r *models.Receipt) bool {
			return r.BillNumber == "B1" &&
				r.BillingID == b1.ID &&
				r.Type == constants.ReceiptTypeCreation &&
				r.Amount.String() == "500" &&
				r.Remarks == constants.ReceiptRemarksAutoRepair &&
				strings.HasPrefix(r.ReceiptNumber, "REC") &&
				len(r.ReceiptNumber) == 11
		})).Return(primitive.NewObjectID(), nil).Once()
		auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log *models.AuditLog) bool {
			return log.Action == constants.RepairActionCreateMissing && log.Actor == "ops"
		})).Return(nil).Once()
		outboxRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.OutboxMessage")).Return(nil).Once()

		result, err := l.CreateMissingReceipts(context.Background(), "ops")

		require.NoError(t, err)
		assert.Equal(t, 1, result.CreatedCount)
		assert.Equal(t, 2, result.TotalBillsChecked)
		require.Len(t, result.CreatedReceipts, 1)
		assert.Equal(t, "B1", result.CreatedReceipts[0].BillNumber)
		receiptRepo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("NothingMissingWritesNothing", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, &allowAllGuard{})

		b := paidBill(t, "B1", "100")
		billRepo.On("ListBills", mock.Anything).Return([]*models.Bill{b}, nil).Once()
		receiptRepo.On("ListReceipts", mock.Anything).
			Return([]*models.Receipt{receipt(t, "REC00000001", "B1", constants.ReceiptTypeCreation, "100")}, nil).Once()

		result, err := l.CreateMissingReceipts(context.Background(), "ops")

		require.NoError(t, err)
		assert.Zero(t, result.CreatedCount)
		receiptRepo.AssertNotCalled(t, "CreateReceipt", mock.Anything, mock.Anything)
		auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RemintsOnDuplicateReceiptNumber", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, &allowAllGuard{})

		b := paidBill(t, "B1", "500")
		billRepo.On("ListBills", mock.Anything).Return([]*models.Bill{b}, nil).Once()
		receiptRepo.On("ListReceipts", mock.Anything).Return(nil, nil).Once()

		dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		receiptRepo.On("CreateReceipt", mock.Anything, mock.Anything).Return(primitive.NilObjectID, dupErr).Once()
		receiptRepo.On("CreateReceipt", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil).Once()
		auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		outboxRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		result, err := l.CreateMissingReceipts(context.Background(), "ops")

		require.NoError(t, err)
		assert.Equal(t, 1, result.CreatedCount)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("GuardHeld", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		guard := newMockRepairGuard()
		guard.On("Acquire", mock.Anything, ScopeMissingReceipts).Return(ErrRepairInProgress)
		l := newTestReconciler(t, billRepo, receiptRepo, newMockAuditLogRepository(), newMockOutboxRepository(), guard)

		_, err := l.CreateMissingReceipts(context.Background(), "ops")

		assert.ErrorIs(t, err, ErrRepairInProgress)
		billRepo.AssertNotCalled(t, "ListBills", mock.Anything)
	})
}

func TestReconcileLogic_FixZeroAmountReceipts(t *testing.T) {
	t.Run("FixesAndSkipsWithReasons", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, &allowAllGuard{})

		fixable := receipt(t, "REC00000001", "B1", constants.ReceiptTypeCreation, "0")
		payment := receipt(t, "REC00000002", "B2", constants.ReceiptTypePayment, "0")
		orphan := receipt(t, "REC00000003", "B9", constants.ReceiptTypeCreation, "0")
		healthy := receipt(t, "REC00000004", "B1", constants.ReceiptTypeCreation, "300")
		receiptRepo.On("ListReceipts", mock.Anything).
			Return([]*models.Receipt{fixable, payment, orphan, healthy}, nil).Once()

		billRepo.On("GetBillByNumber", mock.Anything, "B1").Return(paidBill(t, "B1", "300"), nil).Once()
		billRepo.On("GetBillByNumber", mock.Anything, "B2").Return(paidBill(t, "B2", "150"), nil).Once()
		billRepo.On("GetBillByNumber", mock.Anything, "B9").Return(nil, mongodb.ErrNotFound).Once()

		receiptRepo.On("UpdateReceipt", mock.Anything, fixable.ID, mock.MatchedBy(updatesAmountTo("300"))).Return(nil).Once()
		auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log *models.AuditLog) bool {
			return log.Action == constants.RepairActionFixZeroAmounts
		})).Return(nil).Once()
		outboxRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		result, err := l.FixZeroAmountReceipts(context.Background(), "ops")

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalChecked)
		require.Len(t, result.Fixed, 1)
		assert.Equal(t, "REC00000001", result.Fixed[0].ReceiptNumber)
		assert.Equal(t, "0", result.Fixed[0].OldAmount)
		assert.Equal(t, "300", result.Fixed[0].NewAmount)
		require.Len(t, result.Skipped, 2)
		assert.Equal(t, "unsupported_type", result.Skipped[0].Reason)
		assert.Equal(t, "orphaned", result.Skipped[1].Reason)
		billRepo.AssertExpectations(t)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("CleanLedgerWritesNothing", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, &allowAllGuard{})

		receiptRepo.On("ListReceipts", mock.Anything).
			Return([]*models.Receipt{receipt(t, "REC00000001", "B1", constants.ReceiptTypeCreation, "300")}, nil).Once()

		result, err := l.FixZeroAmountReceipts(context.Background(), "ops")

		require.NoError(t, err)
		assert.Zero(t, result.TotalChecked)
		receiptRepo.AssertNotCalled(t, "UpdateReceipt", mock.Anything, mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestReconcileLogic_FixBillReceipts(t *testing.T) {
	t.Run("CorrectsWrongAmounts", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		auditRepo := newMockAuditLogRepository()
		outboxRepo := newMockOutboxRepository()
		guard := newMockRepairGuard()
		guard.On("Acquire", mock.Anything, "bill:B1").Return(nil).Once()
		guard.On("Release", mock.Anything, "bill:B1").Return(nil).Once()
		l := newTestReconciler(t, billRepo, receiptRepo, auditRepo, outboxRepo, guard)

		bill := paidBill(t, "B1", "300")
		wrong := receipt(t, "REC00000001", "B1", constants.ReceiptTypeCreation, "100")
		payment := receipt(t, "REC00000002", "B1", constants.ReceiptTypePayment, "50")
		right := receipt(t, "REC00000003", "B1", constants.ReceiptTypeCancellation, "300")
		billRepo.On("GetBillByNumber", mock.Anything, "B1").Return(bill, nil).Once()
		receiptRepo.On("GetReceiptsByBillNumber", mock.Anything, "B1").
			Return([]*models.Receipt{wrong, payment, right}, nil).Once()

		receiptRepo.On("UpdateReceipt", mock.Anything, wrong.ID, mock.MatchedBy(updatesAmountTo("300"))).Return(nil).Once()
		auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(log *models.AuditLog) bool {
			return log.Action == constants.RepairActionFixBill && log.EntityKey == "B1"
		})).Return(nil).Once()
		outboxRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		result, err := l.FixBillReceipts(context.Background(), "B1", "ops")

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalChecked)
		require.Len(t, result.Fixed, 1)
		assert.Equal(t, "REC00000001", result.Fixed[0].ReceiptNumber)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "unsupported_type", result.Skipped[0].Reason)
		guard.AssertExpectations(t)
		receiptRepo.AssertExpectations(t)
	})

	t.Run("UnknownBill", func(t *testing.T) {
		billRepo := newMockBillRepository()
		receiptRepo := newMockReceiptRepository()
		l := newTestReconciler(t, billRepo, receiptRepo, newMockAuditLogRepository(), newMockOutboxRepository(), &allowAllGuard{})

		billRepo.On("GetBillByNumber", mock.Anything, "B404").Return(nil, mongodb.ErrNotFound).Once()

		_, err := l.FixBillReceipts(context.Background(), "B404", "ops")

		assert.ErrorIs(t, err, ErrBillNotFound)
		receiptRepo.AssertNotCalled(t, "GetReceiptsByBillNumber", mock.Anything, mock.Anything)
	})
}

// --- mocks ---

// allowAllGuard always grants the scope.
type allowAllGuard struct{}

func (g *allowAllGuard) Acquire(ctx context.Context, scope string) error { return nil }
func (g *allowAllGuard) Release(ctx context.Context, scope string) error { return nil }

type mockRepairGuard struct {
	mock.Mock
}

func newMockRepairGuard() *mockRepairGuard {
	return &mockRepairGuard{}
}

func (m *mockRepairGuard) Acquire(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *mockRepairGuard) Release(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

type mockBillRepository struct {
	mock.Mock
}

func newMockBillRepository() *mockBillRepository {
	return &mockBillRepository{}
}

func (m *mockBillRepository) ListBills(ctx context.Context) ([]*models.Bill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *mockBillRepository) GetBillByNumber(ctx context.Context, billNumber string) (*models.Bill, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

type mockReceiptRepository struct {
	mock.Mock
}

func newMockReceiptRepository() *mockReceiptRepository {
	return &mockReceiptRepository{}
}

func (m *mockReceiptRepository) ListReceipts(ctx context.Context) ([]*models.Receipt, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepository) GetReceiptsByBillNumber(ctx context.Context, billNumber string) ([]*models.Receipt, error) {
	args := m.Called(ctx, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Receipt), args.Error(1)
}

func (m *mockReceiptRepository) CreateReceipt(ctx context.Context, receipt *models.Receipt) (primitive.ObjectID, error) {
	args := m.Called(ctx, receipt)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockReceiptRepository) UpdateReceipt(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
	args := m.Called(ctx, id, opts)
	return args.Error(0)
}

type mockAuditLogRepository struct {
	mock.Mock
}

func newMockAuditLogRepository() *mockAuditLogRepository {
	return &mockAuditLogRepository{}
}

func (m *mockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type mockOutboxRepository struct {
	mock.Mock
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{}
}

func (m *mockOutboxRepository) Create(ctx context.Context, message *models.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockOutboxRepository) ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	panic("not implemented")
}

func (m *mockOutboxRepository) MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error {
	panic("not implemented")
}

func (m *mockOutboxRepository) IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error {
	panic("not implemented")
}
