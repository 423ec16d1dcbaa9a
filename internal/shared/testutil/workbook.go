package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// CourseExportHeader is the header row of a course completion export
var CourseExportHeader = []string{"courses.id", "courses.name", "Область", "Дата получения сертификата"}

// CourseExportRows is a small export: course 52 has two learners in Москва
// (one certified) and one certified in Тверь; course 7 has one certified
// learner in Москва and one without a region.
var CourseExportRows = [][]string{
	CourseExportHeader,
	{"52", "Python", "Москва", "2024-01-10"},
	{"52", "Python", "Москва", ""},
	{"52", "Python", "Тверь", "2024-02-01"},
	{"7", "Go", "Москва", "2024-03-01"},
	{"7", "Go", "", ""},
}

// BuildWorkbook returns an .xlsx file whose first sheet holds rows
func BuildWorkbook(t testing.TB, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	writeRows(t, f, f.GetSheetName(0), rows)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// SaveWorkbook writes rows to a workbook at path
func SaveWorkbook(t testing.TB, path string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	writeRows(t, f, f.GetSheetName(0), rows)
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeRows(t testing.TB, f *excelize.File, sheet string, rows [][]string) {
	t.Helper()

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}
}
