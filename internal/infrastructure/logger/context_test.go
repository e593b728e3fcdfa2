package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_NotSet(t *testing.T) {
	logger := FromContext(context.Background())

	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("test")
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-42")
	enriched.Info("handled")

	assert.Equal(t, "req-42", GetRequestID(ctx))

	logs := recorded.All()
	assert.Len(t, logs, 1)
	assert.Equal(t, "req-42", logs[0].ContextMap()["request_id"])
}

func TestWithCharacter(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, enriched := WithCharacter(context.Background(), zap.New(core), "Hauler Hal")
	enriched.Info("accepted")

	assert.Equal(t, "Hauler Hal", GetCharacter(ctx))

	logs := recorded.All()
	assert.Len(t, logs, 1)
	assert.Equal(t, "Hauler Hal", logs[0].ContextMap()["character"])
}

func TestGetRequestID_NotSet(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	logger := zap.NewNop()

	// Without an active span the logger passes through unchanged.
	assert.Same(t, logger, WithTraceContext(context.Background(), logger))
}
