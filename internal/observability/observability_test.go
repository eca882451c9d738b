package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestStartSpan_EndIsNilSafe(t *testing.T) {
	_, span := StartSpan(context.Background(), "ImageStore", "Save")
	span.End(errors.New("disk full"))

	var nilSpan *Span
	nilSpan.End(nil)
	assert.Empty(t, nilSpan.TraceID())
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(UsersDeleted.WithLabelValues("soft"))
	UsersDeleted.WithLabelValues("soft").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(UsersDeleted.WithLabelValues("soft")))
}
