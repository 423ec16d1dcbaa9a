package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Report outcomes used as the "outcome" metric attribute
const (
	OutcomeSuccess        = "success"
	OutcomeEmpty          = "empty"
	OutcomeMissingColumns = "missing_columns"
	OutcomeLoadError      = "load_error"
	OutcomeNoDataset      = "no_dataset"
	OutcomeError          = "error"
)

// ReportMetrics holds all application-specific metrics
type ReportMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	UploadsTotal      metric.Int64Counter
	UploadBytes       metric.Int64Counter
	DatasetCacheHits  metric.Int64Counter
	DatasetCacheMiss  metric.Int64Counter
	DatasetParseTime  metric.Float64Histogram
	RowsProcessed     metric.Int64Counter

	// Report metrics
	ReportsTotal     metric.Int64Counter
	PipelineDuration metric.Float64Histogram
	ExportsTotal     metric.Int64Counter
	ExportBytes      metric.Int64Counter
}

// NewReportMetrics creates the application metrics on meter.
// A nil meter yields no-op instruments.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	m := &ReportMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests", ""},
		{&m.UploadsTotal, "dataset_uploads_total", "Total number of workbook uploads", ""},
		{&m.UploadBytes, "dataset_upload_bytes", "Total bytes of uploaded workbooks", "By"},
		{&m.DatasetCacheHits, "dataset_cache_hits_total", "Uploads served from the dataset cache", ""},
		{&m.DatasetCacheMiss, "dataset_cache_misses_total", "Uploads that required parsing", ""},
		{&m.RowsProcessed, "report_rows_processed_total", "Source rows fed into report aggregation", ""},
		{&m.ReportsTotal, "reports_total", "Report analyses by outcome", ""},
		{&m.ExportsTotal, "report_exports_total", "Report exports by format", ""},
		{&m.ExportBytes, "report_export_bytes", "Total bytes of exported reports", "By"},
	}
	for _, c := range counters {
		opts := []metric.Int64CounterOption{metric.WithDescription(c.desc)}
		if c.unit != "" {
			opts = append(opts, metric.WithUnit(c.unit))
		}
		if *c.dst, err = meter.Int64Counter(c.name, opts...); err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
		{&m.DatasetParseTime, "dataset_parse_duration_seconds", "Workbook parse duration in seconds"},
		{&m.PipelineDuration, "report_pipeline_duration_seconds", "Analysis pipeline duration in seconds"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, err
		}
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RegisterStateGauges exposes the dataset cache size and the live session
// count as observable gauges.
func RegisterStateGauges(meter metric.Meter, cachedDatasets, activeSessions func() int) error {
	if meter == nil {
		return nil
	}

	datasets, err := meter.Int64ObservableGauge(
		"dataset_cache_entries",
		metric.WithDescription("Number of parsed datasets held in the cache"),
	)
	if err != nil {
		return err
	}

	sessions, err := meter.Int64ObservableGauge(
		"sessions_active",
		metric.WithDescription("Number of live client sessions"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(datasets, int64(cachedDatasets()))
		o.ObserveInt64(sessions, int64(activeSessions()))
		return nil
	}, datasets, sessions)
	return err
}

// RecordReport records the outcome and duration of one analysis or export
func (m *ReportMetrics) RecordReport(ctx context.Context, operation, outcome string, duration time.Duration, rows int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.ReportsTotal.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, duration.Seconds(), attrs)
	if rows > 0 {
		m.RowsProcessed.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// RecordUpload records one upload and whether the cache served it
func (m *ReportMetrics) RecordUpload(ctx context.Context, size int, cached bool, parse time.Duration, outcome string) {
	if m == nil {
		return
	}

	m.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.UploadBytes.Add(ctx, int64(size))
	if outcome != OutcomeSuccess {
		return
	}
	if cached {
		m.DatasetCacheHits.Add(ctx, 1)
		return
	}
	m.DatasetCacheMiss.Add(ctx, 1)
	m.DatasetParseTime.Record(ctx, parse.Seconds())
}

// RecordExport records one rendered artifact
func (m *ReportMetrics) RecordExport(ctx context.Context, format string, size int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("format", format))
	m.ExportsTotal.Add(ctx, 1, attrs)
	m.ExportBytes.Add(ctx, int64(size), attrs)
}
