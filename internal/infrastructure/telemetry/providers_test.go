package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/subcontracting/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "subcontracting"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "subcontracting"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("subcontracting"))

	m, err := telemetry.NewSubcontractingMetrics(mp.Meter("subcontracting"))
	require.NoError(t, err)
	m.RecordWorksheetOpened(ctx, "production")
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewLoggerProvider_DisabledBridgeReturnsBase(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{}, logger)
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.Same(t, logger, lp.Bridge(logger, "subcontracting", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewProfiler(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("disabled", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, logger)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
	})

	t.Run("missing address", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ApplicationName: "app"}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown profile type", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:         true,
			ServerAddress:   "http://localhost:4040",
			ApplicationName: "app",
			ProfileTypes:    []string{"cpu", "heap_everything"},
		}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "heap_everything")
	})
}

func TestRegisterDBTracing(t *testing.T) {
	sr := setupTestTracer(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: false}, logger))
	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: true, DBName: "subcontracting"}, logger))

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.NotEmpty(t, sr.Ended())
}
