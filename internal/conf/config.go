package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Mode            string `mapstructure:"mode"`
	Name            string `mapstructure:"name"`
	Version         string `mapstructure:"version"`
	TimeZone        string `mapstructure:"time_zone"`
	*LogConfig      `mapstructure:"log"`
	*MongodbConfig  `mapstructure:"mongodb"`
	*RedisConfig    `mapstructure:"redis"`
	*RabbitMQConfig `mapstructure:"rabbitmq"`
	*WorkerConfig   `mapstructure:"worker"`
	*RepairConfig   `mapstructure:"repair"`
}

// MongodbConfig holds the MongoDB configuration.
type MongodbConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RedisConfig holds the Redis client configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RabbitMQConfig holds the RabbitMQ configuration.
type RabbitMQConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	User             string `mapstructure:"user"`
	Password         string `mapstructure:"password"`
	RepairEventTopic string `mapstructure:"repair_event_topic"`
}

// WorkerConfig holds all background worker configurations.
type WorkerConfig struct {
	Outbox     OutboxWorkerConfig     `mapstructure:"outbox"`
	DriftAudit DriftAuditWorkerConfig `mapstructure:"drift_audit"`
}

// OutboxWorkerConfig holds the configuration for the outbox polling worker.
type OutboxWorkerConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	BatchSize       int `mapstructure:"batch_size"`
}

// DriftAuditWorkerConfig holds the configuration for the drift audit worker.
type DriftAuditWorkerConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// RepairConfig holds the repair pass configuration.
type RepairConfig struct {
	// LockTTLSeconds bounds how long a crashed repair pass keeps its scope
	// locked.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds"`
}

// NewConfig loads the application configuration from a file.
func NewConfig(confFile string) (*AppConfig, error) {
	// Load .env file. It's okay if it doesn't exist. Errors are ignored.
	// This is mainly for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(confFile)

	// Replace dots in keys with underscores for environment variables (e.g., `mongodb.host` -> `MONGODB_HOST`).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set timezone
	loc, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	time.Local = loc

	return &conf, nil
}
