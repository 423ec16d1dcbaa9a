package http

import (
	"context"

	"coursereport/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the HTTP layer needs
type ReportServiceInterface interface {
	Upload(ctx context.Context, sessionID, fileName string, data []byte) (*domain.DatasetInfo, error)
	Analyze(ctx context.Context, sessionID, courseID string) (*domain.Report, error)
	Export(ctx context.Context, sessionID, courseID string, format domain.ReportFormat) (*domain.Artifact, error)
	Reset(ctx context.Context, sessionID string) error
	Stats() map[string]interface{}
}
