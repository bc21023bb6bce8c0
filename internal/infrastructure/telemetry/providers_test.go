package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/ryznreal/offers/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_AllDisabled(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), telemetry.Config{ServiceName: "offers"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.False(t, p.LogsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.False(t, p.ZapCore("offers", zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.ForceFlush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProviders_NilIsDisabled(t *testing.T) {
	var p *telemetry.Providers

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_SpanProfilesWrapTracerProvider(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	for _, spanProfiles := range []bool{false, true} {
		p, err := telemetry.Setup(context.Background(), telemetry.Config{
			CollectorEndpoint: "127.0.0.1:1",
			Insecure:          true,
			ServiceName:       "offers",
			TracesEnabled:     true,
			SamplingRatio:     1,
			SpanProfiles:      spanProfiles,
		}, zap.NewNop())
		require.NoError(t, err)

		_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.Equal(t, !spanProfiles, isSDK, "span_profiles=%v", spanProfiles)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = p.Shutdown(ctx)
		cancel()
	}
}
