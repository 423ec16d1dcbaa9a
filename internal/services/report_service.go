package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coursereport/internal/cache"
	"coursereport/internal/config"
	"coursereport/internal/dataprocessing"
	"coursereport/internal/exporter"
	"coursereport/internal/infrastructure"
	"coursereport/internal/session"
	"coursereport/pkg/contracts/domain"
)

// MaxCourseIDLength bounds the course filter accepted from clients, in
// characters
const MaxCourseIDLength = 128

// CourseIDTooLong reports whether the trimmed id exceeds MaxCourseIDLength
// characters.
func CourseIDTooLong(courseID string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(courseID)) > MaxCourseIDLength
}

// ReportService turns uploaded workbooks into certificate reports.
// Each session works with its own dataset; identical uploads share one
// parsed copy through the dataset cache.
type ReportService struct {
	datasets *cache.DatasetCache
	sessions *session.Store
	cfg      config.ReportConfig
	columns  dataprocessing.Columns
	metrics  *infrastructure.ReportMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(datasets *cache.DatasetCache, sessions *session.Store, cfg config.ReportConfig, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ReportService initialized",
		slog.String("sheet", cfg.Sheet),
		slog.Bool("prune_columns", cfg.PruneColumns))

	return &ReportService{
		datasets: datasets,
		sessions: sessions,
		cfg:      cfg,
		columns:  dataprocessing.DefaultColumns,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.ServiceName + "/services"),
		logger:   logger.With(slog.String("service", "report")),
	}
}

// ReleaseDataset returns a session expiry hook that drops the expired
// session's reference on its cached dataset.
func ReleaseDataset(datasets *cache.DatasetCache) session.ExpireFunc {
	return func(st session.State) {
		if st.DatasetKey != "" {
			datasets.Release(st.DatasetKey)
		}
	}
}

// LoadOptions returns the workbook load options derived from the configuration
func LoadOptions(cfg config.ReportConfig, columns dataprocessing.Columns) dataprocessing.LoadOptions {
	opts := dataprocessing.LoadOptions{Sheet: cfg.Sheet}
	if cfg.PruneColumns {
		opts.Columns = columns.All()
	}
	return opts
}

// Upload parses data and attaches it to the session. An empty sessionID
// starts a new session. The dataset previously attached to the session is
// released.
func (s *ReportService) Upload(ctx context.Context, sessionID, fileName string, data []byte) (*domain.DatasetInfo, error) {
	ctx, span := s.tracer.Start(ctx, "report.upload",
		trace.WithAttributes(
			attribute.String("file.name", fileName),
			attribute.Int("file.size", len(data)),
		))
	defer span.End()

	if sessionID == "" {
		sessionID = session.NewID()
	} else if !session.ValidID(sessionID) {
		return nil, ErrInvalidSession
	}
	ctx = infrastructure.WithSessionID(ctx, sessionID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(data)
	start := time.Now()
	ds, cached, err := s.datasets.Acquire(key, func() (*dataprocessing.Dataset, error) {
		return dataprocessing.Load(data, LoadOptions(s.cfg, s.columns))
	})
	parseTime := time.Since(start)
	if err != nil {
		s.metrics.RecordUpload(ctx, len(data), false, parseTime, outcomeFor(err))
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Upload rejected",
			slog.String("file_name", fileName),
			slog.String("error", err.Error()))
		return nil, err
	}

	if _, err := dataprocessing.ResolveSchema(ds, s.columns); err != nil {
		// no session can use a dataset without the required columns
		s.datasets.Invalidate(key)
		s.metrics.RecordUpload(ctx, len(data), cached, parseTime, outcomeFor(err))
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Upload is missing required columns",
			slog.String("file_name", fileName),
			slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	previous, replaced := s.sessions.Attach(session.State{
		ID:         sessionID,
		DatasetKey: key,
		FileName:   fileName,
		Sheet:      ds.Sheet(),
		Rows:       ds.Len(),
		Columns:    ds.Columns(),
		UploadedAt: now,
	})
	if replaced && previous.DatasetKey != "" {
		s.datasets.Release(previous.DatasetKey)
	}

	s.metrics.RecordUpload(ctx, len(data), cached, parseTime, infrastructure.OutcomeSuccess)
	span.SetAttributes(
		attribute.Bool("dataset.cached", cached),
		attribute.Int("dataset.rows", ds.Len()),
	)

	s.logger.InfoContext(ctx, "Dataset uploaded",
		slog.String("file_name", fileName),
		slog.String("dataset_id", shortKey(key)),
		slog.Int("rows", ds.Len()),
		slog.Bool("cached", cached),
		slog.Duration("parse_time", parseTime))

	return &domain.DatasetInfo{
		SessionID:  sessionID,
		DatasetID:  key,
		FileName:   fileName,
		Sheet:      ds.Sheet(),
		Rows:       ds.Len(),
		Columns:    ds.Columns(),
		Cached:     cached,
		UploadedAt: now,
	}, nil
}

// Analyze builds the report for the session's dataset. An empty courseID
// covers all courses. It returns dataprocessing.ErrEmptyResult when no row
// matches the filter.
func (s *ReportService) Analyze(ctx context.Context, sessionID, courseID string) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "report.analyze")
	defer span.End()

	return s.analyze(ctx, "analyze", sessionID, courseID)
}

// Export builds the report and renders it in the requested format
func (s *ReportService) Export(ctx context.Context, sessionID, courseID string, format domain.ReportFormat) (*domain.Artifact, error) {
	ctx, span := s.tracer.Start(ctx, "report.export",
		trace.WithAttributes(attribute.String("report.format", string(format))))
	defer span.End()

	report, err := s.analyze(ctx, "export", sessionID, courseID)
	if err != nil {
		return nil, err
	}

	artifact, err := exporter.Render(report, format)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("render report: %w", err)
	}

	s.metrics.RecordExport(ctx, string(artifact.Format), len(artifact.Data))
	s.logger.InfoContext(ctx, "Report exported",
		slog.String("file_name", artifact.FileName),
		slog.String("format", string(artifact.Format)),
		slog.Int("size_bytes", len(artifact.Data)))

	return artifact, nil
}

// Reset forgets the session and releases its dataset. Unknown sessions are
// ignored.
func (s *ReportService) Reset(ctx context.Context, sessionID string) error {
	st, ok := s.sessions.Delete(sessionID)
	if !ok {
		return nil
	}
	if st.DatasetKey != "" {
		s.datasets.Release(st.DatasetKey)
	}

	s.logger.InfoContext(infrastructure.WithSessionID(ctx, sessionID), "Session reset",
		slog.String("file_name", st.FileName))
	return nil
}

// Stats reports cache and session usage
func (s *ReportService) Stats() map[string]interface{} {
	return map[string]interface{}{
		"cache":           s.datasets.GetStats(),
		"active_sessions": s.sessions.Len(),
	}
}

func (s *ReportService) analyze(ctx context.Context, operation, sessionID, courseID string) (*domain.Report, error) {
	start := time.Now()
	ctx = infrastructure.WithSessionID(ctx, sessionID)

	courseID = strings.TrimSpace(courseID)
	if CourseIDTooLong(courseID) {
		return nil, fmt.Errorf("%w: course id longer than %d characters", ErrInvalidInput, MaxCourseIDLength)
	}

	ds, st, err := s.dataset(sessionID)
	if err != nil {
		s.metrics.RecordReport(ctx, operation, outcomeFor(err), time.Since(start), 0)
		return nil, err
	}

	report, err := dataprocessing.Analyze(ds, dataprocessing.AnalyzeOptions{
		Columns:  s.columns,
		CourseID: courseID,
		Title:    s.cfg.Title,
	})
	s.metrics.RecordReport(ctx, operation, outcomeFor(err), time.Since(start), ds.Len())
	if err != nil {
		if !errors.Is(err, dataprocessing.ErrEmptyResult) {
			infrastructure.RecordError(ctx, err)
		}
		s.logger.InfoContext(ctx, "Report not produced",
			slog.String("operation", operation),
			slog.String("course_id", courseID),
			slog.String("reason", err.Error()))
		return nil, err
	}
	report.FileName = st.FileName

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("report.course_id", courseID),
		attribute.Int("report.regions", len(report.Regions)),
		attribute.Int("report.rows", report.SourceRows),
	)

	s.logger.InfoContext(ctx, "Report generated",
		slog.String("operation", operation),
		slog.String("course_id", courseID),
		slog.Int("regions", len(report.Regions)),
		slog.Int("rows", report.SourceRows),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

// dataset resolves the dataset attached to a session
func (s *ReportService) dataset(sessionID string) (*dataprocessing.Dataset, session.State, error) {
	if sessionID == "" {
		return nil, session.State{}, ErrNoDataset
	}
	st, ok := s.sessions.Get(sessionID)
	if !ok || st.DatasetKey == "" {
		return nil, session.State{}, ErrNoDataset
	}
	ds, ok := s.datasets.Get(st.DatasetKey)
	if !ok {
		return nil, st, ErrDatasetExpired
	}
	return ds, st, nil
}

// outcomeFor classifies an error for the outcome metric attribute
func outcomeFor(err error) string {
	var loadErr *dataprocessing.LoadError
	var missingErr *dataprocessing.MissingColumnsError

	switch {
	case err == nil:
		return infrastructure.OutcomeSuccess
	case errors.Is(err, dataprocessing.ErrEmptyResult):
		return infrastructure.OutcomeEmpty
	case errors.As(err, &missingErr):
		return infrastructure.OutcomeMissingColumns
	case errors.As(err, &loadErr):
		return infrastructure.OutcomeLoadError
	case errors.Is(err, ErrNoDataset), errors.Is(err, ErrDatasetExpired):
		return infrastructure.OutcomeNoDataset
	default:
		return infrastructure.OutcomeError
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
