// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production JSON logger, or a human-readable development
// logger when env is "development" or "test".
func New(env string) (*zap.Logger, error) {
	if env == "development" || env == "test" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
