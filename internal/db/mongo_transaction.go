package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactionManager implements TransactionManager on MongoDB sessions.
type MongoTransactionManager struct {
	client *mongo.Client
}

// NewMongoTransactionManager creates a new MongoTransactionManager.
func NewMongoTransactionManager(client *mongo.Client) TransactionManager {
	return &MongoTransactionManager{client: client}
}

// WithTransaction executes fn inside a MongoDB multi-document transaction.
// The session is ended on every exit path; the driver aborts the transaction
// when fn returns an error, so a repair pass can never half-commit.
func (m *MongoTransactionManager) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (interface{}, error)) (interface{}, error) {
	session, err := m.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	// mongo.SessionContext implements context.Context, so the interface can
	// stay driver-agnostic while the callback still runs on the session.
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		return fn(sessCtx)
	}

	return session.WithTransaction(ctx, callback)
}
