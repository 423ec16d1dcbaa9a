package dataprocessing

// Dataset is an in-memory table read from one sheet. All values are text.
// A Dataset is never modified after construction; derived datasets share
// the header index with their parent.
type Dataset struct {
	sheet   string
	headers []string
	index   map[string]int
	rows    [][]string
	// source lists every named column of the sheet, including the ones
	// dropped by LoadOptions.Columns
	source []string
}

func newDataset(sheet string, headers []string, rows [][]string) *Dataset {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if h != "" {
			index[h] = i
		}
	}
	return &Dataset{
		sheet:   sheet,
		headers: headers,
		index:   index,
		rows:    rows,
	}
}

// derive returns a dataset with the same columns and a new row set
func (d *Dataset) derive(rows [][]string) *Dataset {
	return &Dataset{
		sheet:   d.sheet,
		headers: d.headers,
		index:   d.index,
		rows:    rows,
		source:  d.source,
	}
}

// Sheet returns the name of the sheet the rows were read from
func (d *Dataset) Sheet() string {
	return d.sheet
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Columns returns the addressable (non-blank) column names in sheet order
func (d *Dataset) Columns() []string {
	cols := make([]string, 0, len(d.index))
	for _, h := range d.headers {
		if h != "" {
			cols = append(cols, h)
		}
	}
	return cols
}

// SourceColumns returns the named columns of the sheet as read, before any
// column pruning.
func (d *Dataset) SourceColumns() []string {
	if d.source == nil {
		return d.Columns()
	}
	return append([]string(nil), d.source...)
}

// Column returns the position of a column. The name is matched exactly.
func (d *Dataset) Column(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Value returns the raw cell text at row i, column col.
// present is false when the row is shorter than the column position.
func (d *Dataset) Value(i, col int) (value string, present bool) {
	if col < 0 || i < 0 || i >= len(d.rows) {
		return "", false
	}
	row := d.rows[i]
	if col >= len(row) {
		return "", false
	}
	return row[col], true
}
