package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chanreadmin/billingbackend/internal/conf"
	"github.com/chanreadmin/billingbackend/internal/provider"
)

// NewLogger builds the application logger from config. In dev mode it writes
// colored console output to stdout; otherwise it writes JSON to a
// size-rotated file and to stdout. The cleanup flushes buffered entries.
func NewLogger(cfg *conf.LogConfig, mode provider.AppMode) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, err
		}
	}

	var core zapcore.Core
	if mode == "dev" {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			level,
		)
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		})
		encoder := zapcore.NewJSONEncoder(encoderCfg)
		core = zapcore.NewTee(
			zapcore.NewCore(encoder, fileWriter, level),
			zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		)
	}

	l := zap.New(core, zap.AddCaller())
	cleanup := func() {
		_ = l.Sync()
	}
	return l, cleanup, nil
}
