package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"coursereport/internal/dataprocessing"
	"coursereport/internal/exporter"
	"coursereport/internal/files"
	"coursereport/internal/services"
	"coursereport/internal/validation"
	"coursereport/pkg/contracts/domain"
)

type analyzeOptions struct {
	file     string
	courseID string
	out      string
	format   string
	sheet    string
	save     bool
}

func newAnalyzeCmd(env *cliEnv) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the region report for a workbook and optionally save it",
		Example: `  coursereport analyze --file export.xlsx
  coursereport analyze -f export.xlsx --course-id 52 --out reports/
  coursereport analyze -f export.xlsx --format csv --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "workbook to analyze, or a directory or glob pattern to use the newest matching workbook (required)")
	cmd.Flags().StringVar(&opts.courseID, "course-id", "", "restrict the report to one course")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the report to this file or directory")
	cmd.Flags().StringVar(&opts.format, "format", "", "report format: xlsx or csv (default from --out extension, else xlsx)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "worksheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "write the report under its suggested name in the current directory")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(ctx context.Context, env *cliEnv, opts *analyzeOptions) error {
	logger := env.logger.With(slog.String("component", "cli"))

	courseID := strings.TrimSpace(opts.courseID)
	if services.CourseIDTooLong(courseID) {
		return &exitError{code: exitUsage, err: fmt.Errorf("course id must be at most %d characters", services.MaxCourseIDLength)}
	}

	format, err := resolveFormat(opts.format, opts.out)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	path, err := files.NewDiscovery("").ResolveWorkbook(opts.file)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	if err := validation.NewFileValidator(logger).ValidateExcelFile(path); err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	columns := dataprocessing.DefaultColumns
	loadOpts := services.LoadOptions(env.cfg.Report, columns)
	if opts.sheet != "" {
		loadOpts.Sheet = opts.sheet
	}

	logger.InfoContext(ctx, "Analyzing workbook",
		slog.String("file", path),
		slog.String("course_id", courseID),
		slog.Int("bytes", len(data)))

	ds, err := dataprocessing.Load(data, loadOpts)
	if err != nil {
		return dataError(env, err)
	}

	report, err := dataprocessing.Analyze(ds, dataprocessing.AnalyzeOptions{
		Columns:  columns,
		CourseID: courseID,
		Title:    env.cfg.Report.Title,
	})
	if errors.Is(err, dataprocessing.ErrEmptyResult) {
		fmt.Fprintln(env.out, noticeStyle.Render(emptyNotice(courseID)))
		return nil
	}
	if err != nil {
		return dataError(env, err)
	}
	report.FileName = filepath.Base(path)

	fmt.Fprintln(env.out, renderReport(report))

	target := opts.out
	if target == "" && opts.save {
		target = "."
	}
	if target == "" {
		return nil
	}

	artifact, err := exporter.Render(report, format)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	target = exporter.TargetPath(target, artifact.FileName)
	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(filepath.Dir(target)); err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	saved, err := exporter.WriteFile(target, artifact)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.out, successStyle.Render("Saved: ")+saved)
	return nil
}

// resolveFormat picks the export format from the flag, then from the
// extension of the output path
func resolveFormat(flag, out string) (domain.ReportFormat, error) {
	if flag == "" {
		if strings.EqualFold(filepath.Ext(out), ".csv") {
			return domain.ReportFormatCSV, nil
		}
		return domain.ReportFormatXLSX, nil
	}
	format, ok := domain.ParseReportFormat(strings.ToLower(flag))
	if !ok {
		return "", fmt.Errorf("unsupported format %q, use xlsx or csv", flag)
	}
	return format, nil
}

// dataError prints the details of a workbook problem and maps it to the
// data error exit code
func dataError(env *cliEnv, err error) error {
	var (
		loadErr    *dataprocessing.LoadError
		missingErr *dataprocessing.MissingColumnsError
	)
	switch {
	case errors.As(err, &missingErr):
		fmt.Fprintln(env.errOut, errorStyle.Render("Missing required columns: ")+strings.Join(missingErr.Missing, ", "))
		fmt.Fprintln(env.errOut, mutedStyle.Render("Columns found: ")+strings.Join(missingErr.Found, ", "))
		return &exitError{code: exitDataError, err: err}
	case errors.As(err, &loadErr):
		fmt.Fprintln(env.errOut, errorStyle.Render("Cannot read workbook: ")+loadErr.Reason)
		return &exitError{code: exitDataError, err: err}
	default:
		return err
	}
}

func emptyNotice(courseID string) string {
	if courseID == "" {
		return "Nothing found: the workbook has no data rows."
	}
	return fmt.Sprintf("Nothing found for course %q.", courseID)
}
