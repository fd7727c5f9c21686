package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/constants"
	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/models"
)

func TestReceiptDAO_CreateReceipt(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	t.Run("insert succeeds returns id", func(t *testing.T) {
		dao := setupReceiptDAOIntegration(t)

		testCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r := buildReceipt("REC00000001", "B1")

		insertedID, err := dao.CreateReceipt(testCtx, r)
		require.NoError(t, err)
		require.False(t, insertedID.IsZero())

		stored, err := dao.GetReceiptsByBillNumber(testCtx, "B1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.Equal(t, "REC00000001", stored[0].ReceiptNumber)
	})

	t.Run("duplicate receipt number returns duplicate key error", func(t *testing.T) {
		dao := setupReceiptDAOIntegration(t)

		testCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		require.NoError(t, dao.EnsureIndexes(testCtx))

		_, err := dao.CreateReceipt(testCtx, buildReceipt("REC00000001", "B1"))
		require.NoError(t, err)

		_, err = dao.CreateReceipt(testCtx, buildReceipt("REC00000001", "B2"))
		require.Error(t, err)
		var writeException mongo.WriteException
		require.True(t, errors.As(err, &writeException))
		require.True(t, mongo.IsDuplicateKeyError(err))
	})
}

func TestReceiptDAO_UpdateReceipt(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	t.Run("sets amount and stamps updated_at", func(t *testing.T) {
		dao := setupReceiptDAOIntegration(t)

		testCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r := buildReceipt("REC00000001", "B1")
		id, err := dao.CreateReceipt(testCtx, r)
		require.NoError(t, err)

		amount, err := primitive.ParseDecimal128("300")
		require.NoError(t, err)
		require.NoError(t, dao.UpdateReceipt(testCtx, id, repository.WithAmount(amount)))

		stored, err := dao.GetReceiptsByBillNumber(testCtx, "B1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.Equal(t, "300", stored[0].Amount.String())
		require.True(t, stored[0].UpdatedAt.After(r.UpdatedAt))
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		dao := setupReceiptDAOIntegration(t)

		testCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		amount, err := primitive.ParseDecimal128("300")
		require.NoError(t, err)
		err = dao.UpdateReceipt(testCtx, primitive.NewObjectID(), repository.WithAmount(amount))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		dao := &ReceiptDAO{}
		require.NoError(t, dao.UpdateReceipt(context.Background(), primitive.NewObjectID()))
	})
}

func buildReceipt(number, billNumber string) *models.Receipt {
	now := time.Now().UTC()
	return &models.Receipt{
		ID:            primitive.NewObjectID(),
		ReceiptNumber: number,
		BillNumber:    billNumber,
		BillingID:     primitive.NewObjectID(),
		Type:          constants.ReceiptTypeCreation,
		Amount:        primitive.NewDecimal128(0, 0),
		Date:          now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func configureDockerDesktop(t *testing.T) {
	t.Helper()

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	socket := filepath.Join(home, ".docker", "run", "docker.sock")
	if info, err := os.Stat(socket); err == nil && !info.IsDir() {
		t.Setenv("DOCKER_HOST", "unix://"+socket)
		t.Setenv("TESTCONTAINERS_DOCKER_SOCKET_OVERRIDE", socket)
	}
}

func setupReceiptDAOIntegration(t *testing.T) *ReceiptDAO {
	t.Helper()

	configureDockerDesktop(t)

	baseCtx := context.Background()
	containerCtx, cancel := context.WithTimeout(baseCtx, 5*time.Minute)
	t.Cleanup(cancel)

	mongoContainer, err := tcMongo.Run(containerCtx, "mongo:7.0.14")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mongoContainer.Terminate(context.Background()))
	})

	connString, err := mongoContainer.ConnectionString(containerCtx)
	require.NoError(t, err)

	client, err := mongo.Connect(containerCtx, options.Client().ApplyURI(connString))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, client.Disconnect(context.Background()))
	})

	dbName := fmt.Sprintf("receiptdao_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)
	t.Cleanup(func() {
		err := db.Drop(context.Background())
		var cmdErr mongo.CommandError
		if err != nil && (!errors.As(err, &cmdErr) || cmdErr.Code != 26) {
			require.NoError(t, err)
		}
	})

	return NewReceiptDAO(db, zap.NewNop())
}
