package middleware

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
)

// newObservedLogger returns a logger whose entries can be inspected.
func newObservedLogger() (observability.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger, _ := observability.NewLogger(observability.LogConfig{Level: "debug"},
		zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	return logger, logs
}

// fieldValue returns the string or integer value of a logged field.
func fieldValue(entry observer.LoggedEntry, key string) interface{} {
	return entry.ContextMap()[key]
}
