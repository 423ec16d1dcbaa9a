package dataprocessing

import (
	"log/slog"
	"strings"
	"time"

	"coursereport/pkg/contracts/domain"
)

// DefaultReportTitle is used when AnalyzeOptions.Title is empty
const DefaultReportTitle = "Отчет по сертификатам"

// AnalyzeOptions parameterizes one analysis run
type AnalyzeOptions struct {
	Columns  Columns
	CourseID string
	Title    string
}

// Analyze runs validation, normalization, filtering and aggregation over ds.
// It returns *MissingColumnsError when required columns are absent and
// ErrEmptyResult when no row matches the course filter. ds is not modified.
func Analyze(ds *Dataset, opts AnalyzeOptions) (*domain.Report, error) {
	schema, err := ResolveSchema(ds, opts.Columns)
	if err != nil {
		return nil, err
	}

	courseID := strings.TrimSpace(opts.CourseID)
	filtered := Filter(NormalizeRegions(ds, schema), schema, courseID)

	slog.Debug("Dataset filtered",
		slog.String("course_id", courseID),
		slog.Int("input_rows", ds.Len()),
		slog.Int("matched_rows", filtered.Len()))

	if filtered.Len() == 0 {
		return nil, ErrEmptyResult
	}

	report, err := Aggregate(filtered, schema)
	if err != nil {
		return nil, err
	}

	report.Title = opts.Title
	if report.Title == "" {
		report.Title = DefaultReportTitle
	}
	report.CourseID = courseID
	report.CourseName = ResolveCourseName(filtered, schema, courseID)
	report.Generated = time.Now()

	return report, nil
}
