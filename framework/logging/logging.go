// Package logging builds the application's zap logger from config.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/keelframe/keel/framework/config"
)

// New builds a zap logger from the Log section of the application
// config. Format "json" selects the production encoder, anything else
// the console development encoder. An unknown level falls back to info.
func New(cfg config.LogConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zap.Must(zc.Build())
}

// Nop returns a logger that discards everything, useful as a test
// stand-in for the "log" binding.
func Nop() *zap.Logger {
	return zap.NewNop()
}
