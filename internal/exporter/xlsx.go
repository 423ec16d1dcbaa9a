package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"coursereport/pkg/contracts/domain"
)

const (
	SheetName   = "Отчет"
	TotalsLabel = "ИТОГО"

	courseIDLabel   = "ID курса:"
	courseNameLabel = "Курс:"
	allCoursesValue = "все"

	// header row position, after title, two metadata rows and a blank row
	headerRow = 5
)

// Headers are the column titles of the region table
var Headers = []string{"Область", "Всего", "С сертификатом", "Без сертификата"}

// ExportXLSX builds a standalone workbook for report:
//
//	row 1  title (bold)
//	row 2  ID курса: <id or все>
//	row 3  Курс: <course name>
//	row 4  blank
//	row 5  column headers (bold)
//	row 6+ one row per region, then the ИТОГО totals row (bold)
func ExportXLSX(report *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	courseID := report.CourseID
	if courseID == "" {
		courseID = allCoursesValue
	}

	rows := [][]interface{}{
		{report.Title},
		{courseIDLabel, courseID},
		{courseNameLabel, report.CourseName},
		nil,
		toRow(Headers),
	}
	for _, r := range report.Regions {
		rows = append(rows, []interface{}{r.Region, r.Total, r.WithCert, r.NoCert})
	}
	rows = append(rows, []interface{}{TotalsLabel, report.Totals.Total, report.Totals.WithCert, report.Totals.NoCert})
	totalsRow := len(rows)

	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	for _, r := range []int{1, headerRow, totalsRow} {
		from := fmt.Sprintf("A%d", r)
		to := fmt.Sprintf("%s%d", lastCol, r)
		if r == 1 {
			to = from
		}
		if err := f.SetCellStyle(SheetName, from, to, bold); err != nil {
			return nil, fmt.Errorf("failed to style row %d: %w", r, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
