package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"

	"coursereport/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV writes the region table followed by a totals row.
// The output starts with a UTF-8 BOM for Excel compatibility.
func ExportCSV(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	rows := make([]domain.RegionSummary, 0, len(report.Regions)+1)
	rows = append(rows, report.Regions...)
	rows = append(rows, domain.RegionSummary{
		Region:   TotalsLabel,
		Total:    report.Totals.Total,
		WithCert: report.Totals.WithCert,
		NoCert:   report.Totals.NoCert,
	})

	w := csv.NewWriter(&buf)
	if err := csvutil.NewEncoder(w).Encode(rows); err != nil {
		return nil, fmt.Errorf("failed to encode report rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}

	return buf.Bytes(), nil
}

// TargetPath resolves where an artifact named fileName is written for the
// user supplied path. An existing directory, a path ending in a separator
// and a path without an extension all name a directory; the suggested file
// name is joined to them.
func TargetPath(path, fileName string) string {
	if path == "" {
		return fileName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, fileName)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) || filepath.Ext(path) == "" {
		return filepath.Join(path, fileName)
	}
	return path
}

// WriteFile saves an artifact at TargetPath(path), creating parent
// directories, and returns the file written.
func WriteFile(path string, artifact *domain.Artifact) (string, error) {
	path = TargetPath(path, artifact.FileName)

	slog.Info("Writing report file",
		slog.String("file_path", path),
		slog.String("format", string(artifact.Format)),
		slog.Int("bytes", len(artifact.Data)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
