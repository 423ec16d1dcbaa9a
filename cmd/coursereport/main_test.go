package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursereport/internal/dataprocessing"
	"coursereport/internal/services"
	"coursereport/internal/shared/testutil"
	"coursereport/pkg/contracts/domain"
)

var workbookRows = testutil.CourseExportRows

func writeWorkbook(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	return testutil.SaveWorkbook(t, filepath.Join(dir, name), rows)
}

func execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyze_PrintsReport(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "export.xlsx", workbookRows)

	out, _, err := execute("analyze", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Москва")
	assert.Contains(t, out, "Тверь")
	assert.Contains(t, out, dataprocessing.UnspecifiedRegion)
	assert.Contains(t, out, "ИТОГО")
	assert.Contains(t, out, "all courses")
	assert.Contains(t, out, "export.xlsx")
}

func TestAnalyze_DirectoryUsesNewestWorkbook(t *testing.T) {
	dir := t.TempDir()
	old := writeWorkbook(t, dir, "old.xlsx", [][]string{workbookRows[0], {"1", "Old", "Псков", ""}})
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	writeWorkbook(t, dir, "new.xlsx", workbookRows)

	out, _, err := execute("analyze", "--file", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "new.xlsx")
	assert.NotContains(t, out, "Псков")

	_, _, err = execute("analyze", "--file", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestAnalyze_SingleCourse(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "export.xlsx", workbookRows)

	out, _, err := execute("analyze", "--file", path, "--course-id", "52")
	require.NoError(t, err)

	assert.Contains(t, out, "52 (Python)")
	assert.NotContains(t, out, dataprocessing.UnspecifiedRegion)
}

func TestAnalyze_EmptyResult(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "export.xlsx", workbookRows)

	out, _, err := execute("analyze", "--file", path, "--course-id", "999")
	require.NoError(t, err)

	assert.Contains(t, out, "Nothing found")
	assert.NotContains(t, out, "ИТОГО")
}

func TestAnalyze_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "export.xlsx", workbookRows)

	tests := []struct {
		name     string
		args     []string
		wantFile string
		wantHead []byte
	}{
		{
			name:     "csv inferred from extension",
			args:     []string{"--out", filepath.Join(dir, "out", "result.csv")},
			wantFile: filepath.Join(dir, "out", "result.csv"),
			wantHead: []byte("\xEF\xBB\xBF"),
		},
		{
			name:     "suggested name inside directory",
			args:     []string{"--out", dir, "--course-id", "52"},
			wantFile: filepath.Join(dir, "report_52.xlsx"),
			wantHead: []byte("PK"),
		},
		{
			name:     "new directory with trailing slash",
			args:     []string{"--out", filepath.Join(dir, "reports") + "/"},
			wantFile: filepath.Join(dir, "reports", "report_all.xlsx"),
			wantHead: []byte("PK"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(append([]string{"analyze", "--file", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "Saved: ")

			data, err := os.ReadFile(tt.wantFile)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, tt.wantHead))
		})
	}
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeWorkbook(t, dir, "export.xlsx", workbookRows)
	missing := writeWorkbook(t, dir, "missing.xlsx", [][]string{{"courses.id", "Область"}, {"1", "Москва"}})
	garbage := filepath.Join(dir, "garbage.xlsx")
	require.NoError(t, os.WriteFile(garbage, []byte("not a workbook"), 0644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("x"), 0644))

	tests := []struct {
		name      string
		args      []string
		wantCode  int
		wantInErr string
	}{
		{"missing columns", []string{"--file", missing}, exitDataError, "Columns found"},
		{"unreadable workbook", []string{"--file", garbage}, exitDataError, "Cannot read workbook"},
		{"not a workbook extension", []string{"--file", text}, exitUsage, ""},
		{"file does not exist", []string{"--file", filepath.Join(dir, "nope.xlsx")}, exitUsage, ""},
		{"unknown format", []string{"--file", good, "--format", "pdf"}, exitUsage, ""},
		{"output directory is a file", []string{"--file", good, "--out", filepath.Join(good, "report.xlsx")}, exitUsage, ""},
		{"course id too long", []string{"--file", good, "--course-id", strings.Repeat("к", services.MaxCourseIDLength+1)}, exitUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := execute(append([]string{"analyze"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitCode(err))
			if tt.wantInErr != "" {
				assert.Contains(t, errOut, tt.wantInErr)
			}
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag    string
		out     string
		want    domain.ReportFormat
		wantErr bool
	}{
		{"", "", domain.ReportFormatXLSX, false},
		{"", "report.CSV", domain.ReportFormatCSV, false},
		{"xlsx", "report.csv", domain.ReportFormatXLSX, false},
		{"CSV", "", domain.ReportFormatCSV, false},
		{"pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"|"+tt.out, func(t *testing.T) {
			got, err := resolveFormat(tt.flag, tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
	assert.Equal(t, exitDataError, exitCode(&exitError{code: exitDataError, err: errors.New("bad")}))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.0")
}
