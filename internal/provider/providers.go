package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chanreadmin/billingbackend/internal/conf"
	"github.com/chanreadmin/billingbackend/internal/db"
	"github.com/chanreadmin/billingbackend/internal/logic"
)

// --- Type-safe configuration values for dependency injection ---

type AppName string
type AppMode string

// RedisNamespace is a custom type for the Redis key namespace.
type RedisNamespace string

func ProvideAppName(c *conf.AppConfig) AppName {
	return AppName(c.Name)
}

func ProvideAppMode(c *conf.AppConfig) AppMode {
	return AppMode(c.Mode)
}

// --- Providers for application components ---

// ProvideDatabase creates a new database instance from a client and config.
func ProvideDatabase(client *mongo.Client, cfg *conf.MongodbConfig) *mongo.Database {
	return client.Database(cfg.DB)
}

// ProvideMachineID attempts to parse a numeric id from the hostname (e.g., for StatefulSets).
// It defaults to 1 if parsing fails, which is safe for single-instance/dev environments.
func ProvideMachineID() uint16 {
	hostname, err := os.Hostname()
	if err != nil {
		fmt.Printf("WARN: Cannot get hostname, defaulting machine id to 1: %v\n", err)
		return 1
	}

	parts := strings.Split(hostname, "-")
	if len(parts) < 2 {
		fmt.Printf("WARN: Hostname '%s' does not fit 'name-id' format, defaulting machine id to 1\n", hostname)
		return 1
	}

	id, err := strconv.ParseUint(parts[len(parts)-1], 10, 16)
	if err != nil {
		fmt.Printf("WARN: Cannot parse id from hostname '%s', defaulting machine id to 1: %v\n", hostname, err)
		return 1
	}

	return uint16(id)
}

// ProvideRepairEventTopic extracts the repair event topic from the app config.
func ProvideRepairEventTopic(appConfig *conf.AppConfig) logic.RepairEventTopic {
	return logic.RepairEventTopic(appConfig.RabbitMQConfig.RepairEventTopic)
}

// ProvideTransactionManager decides which TransactionManager to use based on the app mode.
func ProvideTransactionManager(mode AppMode, client *mongo.Client) db.TransactionManager {
	if mode == "dev" || mode == "test" {
		// Standalone mongod in dev/test has no replica set, so no sessions.
		return db.NewNoOpTransactionManager()
	}
	return db.NewMongoTransactionManager(client)
}

// ProvideRepairLockTTL provides the repair lock TTL from the config.
func ProvideRepairLockTTL(cfg *conf.RepairConfig) time.Duration {
	return time.Duration(cfg.LockTTLSeconds) * time.Second
}

// ProvideRedisNamespace creates a namespace string for Redis keys.
func ProvideRedisNamespace(cfg *conf.AppConfig) RedisNamespace {
	return RedisNamespace(fmt.Sprintf("%s:%s:", cfg.Name, cfg.Mode))
}

// ProvideRedisClient creates and returns a new Redis client based on the application configuration.
// It also returns a cleanup function to close the connection.
func ProvideRedisClient(cfg *conf.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cleanup := func() {
		client.Close()
	}

	return client, cleanup, nil
}
