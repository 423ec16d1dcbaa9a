package dataprocessing

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// legacy BIFF workbooks are OLE2 compound files
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// LoadOptions controls how a workbook is read
type LoadOptions struct {
	// Sheet selects a sheet by name. Empty means the first sheet.
	Sheet string
	// Columns keeps only the named columns when non-empty.
	Columns []string
}

// Load reads an .xlsx workbook into a Dataset. Cell values are taken raw,
// without number formats applied, so dates and ids stay as stored text.
// The input slice is not modified.
func Load(data []byte, opts LoadOptions) (*Dataset, error) {
	if len(data) == 0 {
		return nil, newLoadError("file is empty", nil)
	}
	if bytes.HasPrefix(data, oleMagic) {
		return nil, newLoadError("unsupported format: legacy .xls workbooks are not supported, save the file as .xlsx", nil)
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, newLoadError("unsupported format: file is not an .xlsx workbook", nil)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newLoadError("workbook is unreadable or corrupt", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newLoadError("workbook has no sheets", nil)
	}

	sheet := sheets[0]
	if opts.Sheet != "" {
		if idx, _ := f.GetSheetIndex(opts.Sheet); idx < 0 {
			return nil, newLoadError("sheet "+opts.Sheet+" not found", nil)
		}
		sheet = opts.Sheet
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newLoadError("failed to read sheet "+sheet, err)
	}

	slog.Debug("Workbook sheet read",
		slog.String("sheet_name", sheet),
		slog.Int("total_rows", len(rows)))

	// The first non-blank row is the header row
	headerRow := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, newLoadError("file is empty: no rows", nil)
	}

	headers, err := normalizeHeaders(rows[headerRow])
	if err != nil {
		return nil, err
	}

	var source []string
	for _, h := range headers {
		if h != "" {
			source = append(source, h)
		}
	}

	keep := columnMask(headers, opts.Columns)
	if keep != nil {
		headers = project(headers, keep)
	}

	records := make([][]string, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(headers) && keep == nil {
			row = row[:len(headers)]
		}
		if keep != nil {
			row = project(row, keep)
		}
		records = append(records, row)
	}
	if len(records) == 0 {
		return nil, newLoadError("file is empty: no data rows below the header", nil)
	}

	ds := newDataset(sheet, headers, records)
	ds.source = source
	return ds, nil
}

// normalizeHeaders trims every header. Blank headers stay in place but are
// not addressable; a repeated non-blank header is rejected.
func normalizeHeaders(raw []string) ([]string, error) {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	named := 0
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h != "" {
			if seen[h] {
				return nil, newLoadError("duplicate column header "+h, nil)
			}
			seen[h] = true
			named++
		}
		headers[i] = h
	}
	if named == 0 {
		return nil, newLoadError("file is empty: header row has no column names", nil)
	}
	return headers, nil
}

// columnMask returns the positions to keep, or nil when every column is kept
func columnMask(headers, wanted []string) []int {
	if len(wanted) == 0 {
		return nil
	}
	want := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		want[strings.TrimSpace(w)] = true
	}
	keep := make([]int, 0, len(wanted))
	for i, h := range headers {
		if h != "" && want[h] {
			keep = append(keep, i)
		}
	}
	return keep
}

func project(row []string, keep []int) []string {
	out := make([]string, len(keep))
	for j, i := range keep {
		if i < len(row) {
			out[j] = row[i]
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
