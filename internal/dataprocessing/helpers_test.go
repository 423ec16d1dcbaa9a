package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows to the first sheet of a new workbook and returns
// the xlsx bytes. Every cell is stored as a string.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

var sampleHeader = []string{"courses.id", "courses.name", "Область", "Дата получения сертификата"}

func loadRows(t *testing.T, rows [][]string) *Dataset {
	t.Helper()
	ds, err := Load(buildWorkbook(t, rows), LoadOptions{})
	require.NoError(t, err)
	return ds
}
