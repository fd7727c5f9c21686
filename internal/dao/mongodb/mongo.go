package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/chanreadmin/billingbackend/internal/conf"
)

// NewMongoDB connects to MongoDB using the application configuration and
// returns the client together with a cleanup function that disconnects it.
func NewMongoDB(cfg *conf.MongodbConfig) (*mongo.Client, func(), error) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=admin", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	if cfg.User == "" {
		uri = fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	cleanup := func() {
		_ = client.Disconnect(context.Background())
	}

	return client, cleanup, nil
}
