package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"stderr output", LogConfig{Level: "warn", Format: "json", Output: "stderr"}, false},
		{"bad level", LogConfig{Level: "verbose", Format: "json"}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Debug("debug message", String("key", "value"))
			logger.Info("info message", Int("count", 1))
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)

	plain := logger.WithContext(context.Background())
	assert.Same(t, logger, plain)

	enriched := logger.WithContext(ContextWithRequestID(context.Background(), "req-42"))
	assert.NotSame(t, logger, enriched)
}

func TestGlobalLoggerFallsBackToNop(t *testing.T) {
	SetGlobalLogger(nil)
	assert.NotNil(t, GetGlobalLogger())
	assert.NotNil(t, L())

	logger := NopLogger()
	SetGlobalLogger(logger)
	assert.Equal(t, logger, GetGlobalLogger())
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	logger.Debug("message")
	logger.Info("message")
	logger.Warn("message")
	logger.Error("message")
	assert.NoError(t, logger.Sync())
	assert.NotNil(t, logger.With(String("k", "v")))
	assert.NotNil(t, logger.WithContext(context.Background()))
}
