package exporter

import (
	"fmt"
	"strings"

	"coursereport/pkg/contracts/domain"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	// allLabel stands in for the course id when the report is not filtered
	allLabel = "all"
)

// FileName returns the suggested download name, report_<course id or all>.<ext>.
// Characters outside [A-Za-z0-9._-] are replaced with '_'.
func FileName(courseID string, format domain.ReportFormat) string {
	id := sanitize(strings.TrimSpace(courseID))
	if id == "" {
		id = allLabel
	}
	return fmt.Sprintf("report_%s.%s", id, format)
}

// ContentType returns the MIME type for a format
func ContentType(format domain.ReportFormat) string {
	if format == domain.ReportFormatCSV {
		return ContentTypeCSV
	}
	return ContentTypeXLSX
}

// Render serializes report in the requested format
func Render(report *domain.Report, format domain.ReportFormat) (*domain.Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case domain.ReportFormatXLSX:
		data, err = ExportXLSX(report)
	case domain.ReportFormatCSV:
		data, err = ExportCSV(report)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &domain.Artifact{
		FileName:    FileName(report.CourseID, format),
		ContentType: ContentType(format),
		Format:      format,
		Data:        data,
	}, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
