package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-skydata/internal/logger"
)

func TestNew_ValidLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown", ""} {
		l, err := logger.New(level, false)
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
}

func TestFromZap_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.FromZap(zap.New(core)).With(logger.String("endpoint", "neo"))

	l.Warn("approach field unparseable", logger.Error(errors.New("bad float")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "approach field unparseable", entries[0].Message)
	assert.Equal(t, "neo", entries[0].ContextMap()["endpoint"])
	assert.Equal(t, "bad float", entries[0].ContextMap()["error"])
}

func TestNop_DoesNothing(t *testing.T) {
	l := logger.NewNop()
	l.Info("ignored")
	assert.Same(t, l, l.With(logger.Int("n", 1)))
	assert.NoError(t, l.Sync())
}
