package domain

import (
	"time"
)

// Report is the aggregated certificate breakdown for one analysis run
type Report struct {
	Title      string          `json:"title"`
	CourseID   string          `json:"course_id"`
	CourseName string          `json:"course_name"`
	Regions    []RegionSummary `json:"regions"`
	Totals     Totals          `json:"totals"`
	SourceRows int             `json:"source_rows"`
	FileName   string          `json:"file_name,omitempty"`
	Generated  time.Time       `json:"generated_at"`
}

// RegionSummary is one row of the report.
// NoCert is always Total - WithCert.
type RegionSummary struct {
	Region   string `json:"region" csv:"Область"`
	Total    int    `json:"total" csv:"Всего"`
	WithCert int    `json:"with_cert" csv:"С сертификатом"`
	NoCert   int    `json:"no_cert" csv:"Без сертификата"`
}

// Totals holds the grand totals across all regions
type Totals struct {
	Total    int `json:"total"`
	WithCert int `json:"with_cert"`
	NoCert   int `json:"no_cert"`
}

// Filtered reports whether the report was restricted to a single course
func (r *Report) Filtered() bool {
	return r.CourseID != ""
}

// ReportFormat defines the downloadable artifact format
type ReportFormat string

const (
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatCSV  ReportFormat = "csv"
)

// ParseReportFormat maps user input to a known format, defaulting to xlsx
func ParseReportFormat(s string) (ReportFormat, bool) {
	switch ReportFormat(s) {
	case "", ReportFormatXLSX:
		return ReportFormatXLSX, true
	case ReportFormatCSV:
		return ReportFormatCSV, true
	default:
		return "", false
	}
}

// DatasetInfo describes an uploaded dataset attached to a session
type DatasetInfo struct {
	SessionID  string    `json:"session_id"`
	DatasetID  string    `json:"dataset_id"`
	FileName   string    `json:"file_name"`
	Sheet      string    `json:"sheet"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	Cached     bool      `json:"cached"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Artifact is a rendered report ready for download
type Artifact struct {
	FileName    string
	ContentType string
	Format      ReportFormat
	Data        []byte
}
