package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghostlabs/ghost-core/internal/config"
)

func TestSetupDisabledReturnsUsableNoop(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p.Tracer())
	require.NotPanics(t, func() {
		ctx, span := p.StartSpan(context.Background(), "test.span")
		defer span.End()
		_ = ctx
		p.Metrics.IncIngested(context.Background(), 1)
	})
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestSetupEnabledWithoutEndpointErrors(t *testing.T) {
	_, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true})
	require.Error(t, err)
}

func TestSetupEnabledBuildsExportingProvider(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4318",
		Insecure:    true,
		ServiceName: "ghost-engine-test",
	})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	ctx, span := p.StartSpan(context.Background(), "clustering.run")
	span.End()
	_ = ctx

	p.Metrics.IncPatternsFound(context.Background(), 3)
}
