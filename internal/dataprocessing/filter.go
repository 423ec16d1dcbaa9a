package dataprocessing

import "strings"

// UnspecifiedRegion replaces blank or missing region values
const UnspecifiedRegion = "Не указано"

// NormalizeRegions returns a dataset whose region cells are trimmed, with
// blank or missing values replaced by UnspecifiedRegion. ds is not modified.
func NormalizeRegions(ds *Dataset, schema Schema) *Dataset {
	rows := make([][]string, len(ds.rows))
	for i, src := range ds.rows {
		width := len(src)
		if schema.Region >= width {
			width = schema.Region + 1
		}
		row := make([]string, width)
		copy(row, src)

		region := strings.TrimSpace(row[schema.Region])
		if region == "" {
			region = UnspecifiedRegion
		}
		row[schema.Region] = region
		rows[i] = row
	}
	return ds.derive(rows)
}

// Filter keeps the rows whose trimmed course id equals the trimmed courseID.
// An empty courseID returns ds itself. Matching is exact string equality.
func Filter(ds *Dataset, schema Schema, courseID string) *Dataset {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return ds
	}

	rows := make([][]string, 0)
	for i, row := range ds.rows {
		v, ok := ds.Value(i, schema.CourseID)
		if ok && strings.TrimSpace(v) == courseID {
			rows = append(rows, row)
		}
	}
	return ds.derive(rows)
}
