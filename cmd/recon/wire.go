//go:build wireinject
// +build wireinject

package main

import (
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/app"
	"github.com/chanreadmin/billingbackend/internal/conf"
	"github.com/chanreadmin/billingbackend/internal/dao/mongodb"
	"github.com/chanreadmin/billingbackend/internal/dao/repository"
	"github.com/chanreadmin/billingbackend/internal/lock"
	"github.com/chanreadmin/billingbackend/internal/logger"
	"github.com/chanreadmin/billingbackend/internal/logic"
	"github.com/chanreadmin/billingbackend/internal/mq"
	"github.com/chanreadmin/billingbackend/internal/mq/noop"
	"github.com/chanreadmin/billingbackend/internal/mq/rabbitmq"
	"github.com/chanreadmin/billingbackend/internal/provider"
	"github.com/chanreadmin/billingbackend/internal/service"
	"github.com/chanreadmin/billingbackend/internal/worker"
	"github.com/chanreadmin/billingbackend/pkg/receiptno"
)

// baseProviders holds everything the reconciliation engine itself needs.
var baseProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "RedisConfig", "RepairConfig"),
	provider.ProvideAppMode,
	logger.NewLogger,
	mongodb.NewMongoDB,
	provider.ProvideDatabase,
	provider.ProvideMachineID,
	provider.ProvideRepairEventTopic,
	provider.ProvideTransactionManager,
	provider.ProvideRedisNamespace,
	provider.ProvideRedisClient,
	provider.ProvideRepairLockTTL,
	receiptno.NewGenerator,
	mongodb.NewBillDAO,
	wire.Bind(new(repository.BillRepository), new(*mongodb.BillDAO)),
	mongodb.NewReceiptDAO,
	wire.Bind(new(repository.ReceiptRepository), new(*mongodb.ReceiptDAO)),
	mongodb.NewAuditLogDAO,
	wire.Bind(new(repository.AuditLogRepository), new(*mongodb.AuditLogDAO)),
	mongodb.NewOutboxDAO,
	wire.Bind(new(repository.OutboxRepository), new(*mongodb.OutboxDAO)),
	provideRepairGuard,
	logic.NewRepairEventPublisher,
	logic.NewReconciler,
)

// provideRepairGuard picks the guard implementation by app mode, mirroring
// the transaction manager choice: dev and test run single-operator.
func provideRepairGuard(mode provider.AppMode, redisClient *redis.Client, ns provider.RedisNamespace, ttl time.Duration, l *zap.Logger) logic.RepairGuard {
	if mode == "dev" || mode == "test" {
		return lock.NewNoOpGuard()
	}
	return lock.NewRedisRepairGuard(redisClient, ns, ttl, l)
}

// provideMQPublisher picks the publisher by app mode and wraps it with a
// cleanup that closes the connection. Dev and test run without a broker.
func provideMQPublisher(mode provider.AppMode, cfg *conf.RabbitMQConfig, l *zap.Logger) (mq.Publisher, func(), error) {
	if mode == "dev" || mode == "test" {
		p := noop.NewPublisher()
		return p, p.Close, nil
	}
	p, err := rabbitmq.NewPublisher(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}

func provideWorkers(outbox *worker.OutboxProcessor, auditor *worker.DriftAuditor) []worker.Worker {
	return []worker.Worker{outbox, auditor}
}

// InitializeReconService builds the operation surface used by the CLI
// commands.
func InitializeReconService(appConfig *conf.AppConfig) (*service.ReconService, func(), error) {
	wire.Build(
		baseProviders,
		service.NewReconService,
	)
	return nil, nil, nil
}

// InitializeReceiptDAO builds just enough of the graph to manage the receipt
// collection's indexes.
func InitializeReceiptDAO(appConfig *conf.AppConfig) (*mongodb.ReceiptDAO, func(), error) {
	wire.Build(
		wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig"),
		provider.ProvideAppMode,
		logger.NewLogger,
		mongodb.NewMongoDB,
		provider.ProvideDatabase,
		mongodb.NewReceiptDAO,
	)
	return nil, nil, nil
}

// InitializeWorkerApp builds the long-running worker process.
func InitializeWorkerApp(appConfig *conf.AppConfig) (*app.App, func(), error) {
	wire.Build(
		baseProviders,
		wire.FieldsOf(new(*conf.AppConfig), "RabbitMQConfig", "WorkerConfig"),
		provideMQPublisher,
		worker.NewOutboxProcessor,
		worker.NewDriftAuditor,
		provideWorkers,
		app.NewApp,
	)
	return nil, nil, nil
}
