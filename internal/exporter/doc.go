// Package exporter renders an aggregated report into downloadable artifacts.
//
// Two formats are supported:
//
// XLSX: a standalone workbook with a title block, the region table and a
// bold totals row, built with excelize.
//
// CSV: the region table plus a totals row, UTF-8 with a BOM so Excel detects
// the encoding.
//
// Example usage:
//
//	artifact, err := exporter.Render(report, domain.ReportFormatXLSX)
//	if err != nil {
//	    return err
//	}
//	// artifact.FileName == "report_52.xlsx"
//
// Exporters never modify the report they are given.
package exporter
