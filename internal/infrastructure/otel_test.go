package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		tracing bool
		metrics bool
		wantErr bool
	}{
		{
			name:    "stdout tracing with prometheus",
			config:  &OTelConfig{ServiceName: "test", TraceExporter: "stdout", MetricExporter: "prometheus", SampleRatio: 1},
			tracing: true,
			metrics: true,
		},
		{
			name:   "everything disabled",
			config: &OTelConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "none"},
		},
		{
			name:    "unknown trace exporter",
			config:  &OTelConfig{ServiceName: "test", TraceExporter: "otlp", MetricExporter: "none"},
			wantErr: true,
		},
		{
			name:    "unknown metric exporter",
			config:  &OTelConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.tracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.metrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.metrics, providers.PrometheusHTTP != nil)
			assert.NotNil(t, providers.Meter, "meter falls back to no-op")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "test", TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 1}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))

	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewReportMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterStateGauges(providers.Meter, func() int { return 3 }, func() int { return 2 }))

	ctx := context.Background()
	metrics.RecordReport(ctx, "analyze", OutcomeSuccess, 10*time.Millisecond, 42)
	metrics.RecordUpload(ctx, 1024, false, 5*time.Millisecond, OutcomeSuccess)
	metrics.RecordExport(ctx, "xlsx", 2048)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "reports_total")
	assert.Contains(t, string(body), "dataset_cache_entries")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestReportMetrics_NilSafe(t *testing.T) {
	var m *ReportMetrics
	ctx := context.Background()
	m.RecordReport(ctx, "analyze", OutcomeEmpty, time.Millisecond, 0)
	m.RecordUpload(ctx, 1, true, 0, OutcomeSuccess)
	m.RecordExport(ctx, "csv", 1)

	noop, err := NewReportMetrics(nil)
	require.NoError(t, err)
	noop.RecordReport(ctx, "export", OutcomeSuccess, time.Millisecond, 10)
	assert.NoError(t, RegisterStateGauges(nil, nil, nil))
}
